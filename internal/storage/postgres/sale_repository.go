package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tiendaonline/backend/internal/domain"
)

// SaleRepository — PostgreSQL-реализация domain.SaleRepository.
type SaleRepository struct {
	store *Store
}

var _ domain.SaleRepository = (*SaleRepository)(nil)

// NewSaleRepository создаёт репозиторий продаж.
func NewSaleRepository(store *Store) *SaleRepository {
	return &SaleRepository{store: store}
}

func (r *SaleRepository) Materialize(ctx context.Context, orderID int64) (domain.Sale, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		sale    domain.Sale
		created bool
	)
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var err error
		sale, created, err = materializeSale(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return domain.Sale{}, false, err
	}
	return sale, created, nil
}

// materializeSale создаёт продажу из заказа внутри уже открытой транзакции.
// Вставка идёт через ON CONFLICT (id_pedido) DO NOTHING: при конкурентном
// повторе побеждает ровно одна вставка, остальные читают существующую запись.
func materializeSale(ctx context.Context, tx *sql.Tx, orderID int64) (domain.Sale, bool, error) {
	var existingID int64
	err := tx.QueryRowContext(ctx, `
		SELECT id_venta FROM ventas WHERE id_pedido = $1
	`, orderID).Scan(&existingID)
	if err == nil {
		sale, err := loadSale(ctx, tx, existingID)
		return sale, false, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, false, fmt.Errorf("query existing sale: %w", err)
	}

	var (
		customerID int64
		userID     int64
		total      float64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id_cliente, id_usuario, total_pedido FROM pedidos WHERE id_pedido = $1
	`, orderID).Scan(&customerID, &userID, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, false, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Sale{}, false, fmt.Errorf("query order for sale: %w", err)
	}

	var stateID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id_estado_venta FROM estados_venta WHERE nombre_estado = $1
	`, domain.SaleStateCompleted).Scan(&stateID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, false, fmt.Errorf("%w: %q", domain.ErrSaleStateMissing, domain.SaleStateCompleted)
	}
	if err != nil {
		return domain.Sale{}, false, fmt.Errorf("query sale state: %w", err)
	}

	var saleID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO ventas (id_pedido, id_cliente, id_usuario, total, id_estado_venta)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id_pedido) DO NOTHING
		RETURNING id_venta
	`, orderID, customerID, userID, total, stateID).Scan(&saleID)
	if errors.Is(err, sql.ErrNoRows) {
		// Конкурент успел раньше; читаем его запись.
		if err := tx.QueryRowContext(ctx, `
			SELECT id_venta FROM ventas WHERE id_pedido = $1
		`, orderID).Scan(&saleID); err != nil {
			return domain.Sale{}, false, fmt.Errorf("query concurrent sale: %w", err)
		}
		sale, err := loadSale(ctx, tx, saleID)
		return sale, false, err
	}
	if err != nil {
		return domain.Sale{}, false, fmt.Errorf("insert sale: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO detalles_venta (id_venta, id_producto, cantidad, precio_unitario, subtotal)
		SELECT $1, d.id_producto, d.cantidad, d.precio_unitario, d.cantidad * d.precio_unitario
		FROM detalle_pedidos d
		WHERE d.id_pedido = $2
		ORDER BY d.id_detalle_pedido
	`, saleID, orderID); err != nil {
		return domain.Sale{}, false, fmt.Errorf("insert sale lines: %w", err)
	}

	sale, err := loadSale(ctx, tx, saleID)
	return sale, true, err
}

func (r *SaleRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return querySales(ctx, r.store.db, []string{"v.id_cliente = $1"}, customerID)
}

func (r *SaleRepository) Get(ctx context.Context, saleID int64) (domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return loadSale(ctx, r.store.db, saleID)
}

func (r *SaleRepository) ListAll(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("v.id_cliente = $%d", len(args)))
	}
	if filter.StateID > 0 {
		args = append(args, filter.StateID)
		conds = append(conds, fmt.Sprintf("v.id_estado_venta = $%d", len(args)))
	}
	if !filter.DateFrom.IsZero() {
		args = append(args, filter.DateFrom)
		conds = append(conds, fmt.Sprintf("v.fecha >= $%d", len(args)))
	}
	if !filter.DateTo.IsZero() {
		args = append(args, filter.DateTo)
		conds = append(conds, fmt.Sprintf("v.fecha <= $%d", len(args)))
	}

	return querySales(ctx, r.store.db, conds, args...)
}

const saleColumns = `
	v.id_venta, COALESCE(v.id_pedido, 0), v.id_cliente, v.id_usuario, v.fecha,
	v.total, v.id_estado_venta, ev.nombre_estado, cl.nombre, u.usuario
`

const saleJoins = `
	FROM ventas v
	JOIN estados_venta ev ON ev.id_estado_venta = v.id_estado_venta
	JOIN clientes cl ON cl.id_cliente = v.id_cliente
	JOIN usuarios u ON u.id_usuario = v.id_usuario
`

func loadSale(ctx context.Context, q querier, saleID int64) (domain.Sale, error) {
	var s domain.Sale
	err := q.QueryRowContext(ctx, `
		SELECT `+saleColumns+saleJoins+`
		WHERE v.id_venta = $1
	`, saleID).Scan(
		&s.ID, &s.OrderID, &s.CustomerID, &s.UserID, &s.Date,
		&s.Total, &s.StateID, &s.StateName, &s.CustomerName, &s.CustomerEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("query sale: %w", err)
	}

	s.Lines = []domain.SaleLine{}
	rows, err := q.QueryContext(ctx, `
		SELECT dv.id_detalle_venta, dv.id_venta, dv.id_producto,
			COALESCE(p.nombre_producto, ''), dv.cantidad, dv.precio_unitario, dv.subtotal
		FROM detalles_venta dv
		LEFT JOIN productos p ON p.id_producto = dv.id_producto
		WHERE dv.id_venta = $1
		ORDER BY dv.id_detalle_venta
	`, saleID)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("query sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.SaleLine
		if err := rows.Scan(
			&line.ID, &line.SaleID, &line.ProductID, &line.ProductName,
			&line.Quantity, &line.UnitPrice, &line.Subtotal,
		); err != nil {
			return domain.Sale{}, fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Sale{}, fmt.Errorf("iterate sale lines: %w", err)
	}
	return s, nil
}

func querySales(ctx context.Context, q querier, conds []string, args ...any) ([]domain.Sale, error) {
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+saleColumns+saleJoins+`
		`+where+`
		ORDER BY v.fecha DESC, v.id_venta DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(
			&s.ID, &s.OrderID, &s.CustomerID, &s.UserID, &s.Date,
			&s.Total, &s.StateID, &s.StateName, &s.CustomerName, &s.CustomerEmail,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s.Lines = []domain.SaleLine{}
		sales = append(sales, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	lineRows, err := q.QueryContext(ctx, `
		SELECT dv.id_detalle_venta, dv.id_venta, dv.id_producto,
			COALESCE(p.nombre_producto, ''), dv.cantidad, dv.precio_unitario, dv.subtotal
		FROM detalles_venta dv
		LEFT JOIN productos p ON p.id_producto = dv.id_producto
		WHERE dv.id_venta = ANY($1)
		ORDER BY dv.id_detalle_venta
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query sale lines: %w", err)
	}
	defer lineRows.Close()

	bySale := make(map[int64]int, len(sales))
	for i, s := range sales {
		bySale[s.ID] = i
	}
	for lineRows.Next() {
		var line domain.SaleLine
		if err := lineRows.Scan(
			&line.ID, &line.SaleID, &line.ProductID, &line.ProductName,
			&line.Quantity, &line.UnitPrice, &line.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		if pos, ok := bySale[line.SaleID]; ok {
			sales[pos].Lines = append(sales[pos].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale lines: %w", err)
	}

	return sales, nil
}
