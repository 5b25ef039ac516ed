package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tiendaonline/backend/internal/domain"
)

// PaymentRepository — PostgreSQL-реализация domain.PaymentRepository.
// Шлюз симулируется: платёж всегда одобряется на сохранённую сумму заказа,
// а заказ в той же транзакции становится Completado и порождает продажу.
type PaymentRepository struct {
	store *Store
}

var _ domain.PaymentRepository = (*PaymentRepository)(nil)

// NewPaymentRepository создаёт репозиторий платежей.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

func (r *PaymentRepository) Process(ctx context.Context, input domain.ProcessPaymentInput) (domain.PaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result domain.PaymentResult
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var (
			ownerUserID int64
			status      domain.OrderStatus
			total       float64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT id_usuario, estado_pedido, total_pedido
			FROM pedidos
			WHERE id_pedido = $1
			FOR UPDATE
		`, input.OrderID).Scan(&ownerUserID, &status, &total)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order for payment: %w", err)
		}

		if ownerUserID != input.UserID {
			return domain.ErrOrderNotFound
		}
		if status.IsTerminal() {
			return fmt.Errorf("%w: estado actual %q", domain.ErrOrderTerminal, status)
		}

		payment := domain.Payment{
			OrderID:       input.OrderID,
			Amount:        total,
			Method:        input.Method,
			Status:        domain.PaymentStatusApproved,
			TransactionID: uuid.NewString(),
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO pagos (id_pedido, monto, metodo_pago, estado_pago, transaccion_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id_pago, fecha_pago
		`, payment.OrderID, payment.Amount, payment.Method, payment.Status, payment.TransactionID).
			Scan(&payment.ID, &payment.PaidAt)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE pedidos SET estado_pedido = $2 WHERE id_pedido = $1
		`, input.OrderID, domain.OrderStatusCompleted); err != nil {
			return fmt.Errorf("complete order: %w", err)
		}

		sale, created, err := materializeSale(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}

		result = domain.PaymentResult{
			Payment:     payment,
			SaleID:      sale.ID,
			SaleCreated: created,
		}
		return nil
	})
	if err != nil {
		return domain.PaymentResult{}, err
	}
	return result, nil
}

func (r *PaymentRepository) Get(ctx context.Context, paymentID int64) (domain.PaymentDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var detail domain.PaymentDetail
	err := r.store.db.QueryRowContext(ctx, `
		SELECT pg.id_pago, pg.id_pedido, pg.fecha_pago, pg.monto, pg.metodo_pago,
			pg.estado_pago, pg.transaccion_id, pd.id_cliente, pd.id_usuario
		FROM pagos pg
		JOIN pedidos pd ON pd.id_pedido = pg.id_pedido
		WHERE pg.id_pago = $1
	`, paymentID).Scan(
		&detail.ID, &detail.OrderID, &detail.PaidAt, &detail.Amount, &detail.Method,
		&detail.Status, &detail.TransactionID, &detail.CustomerID, &detail.OwnerUserID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaymentDetail{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.PaymentDetail{}, fmt.Errorf("query payment: %w", err)
	}
	return detail, nil
}

func (r *PaymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id_pago, id_pedido, fecha_pago, monto, metodo_pago, estado_pago, transaccion_id
		FROM pagos
		ORDER BY fecha_pago DESC, id_pago DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID, &p.OrderID, &p.PaidAt, &p.Amount,
			&p.Method, &p.Status, &p.TransactionID,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p domain.Payment
	err := r.store.db.QueryRowContext(ctx, `
		UPDATE pagos SET estado_pago = $2
		WHERE id_pago = $1
		RETURNING id_pago, id_pedido, fecha_pago, monto, metodo_pago, estado_pago, transaccion_id
	`, paymentID, status).Scan(
		&p.ID, &p.OrderID, &p.PaidAt, &p.Amount,
		&p.Method, &p.Status, &p.TransactionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("update payment status: %w", err)
	}
	return p, nil
}
