package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// OrderRepository — PostgreSQL-реализация domain.OrderRepository.
// Create держит весь пайплайн в одной транзакции и сериализует конкурентные
// заказы на общий товар блокировкой FOR UPDATE строки остатков.
type OrderRepository struct {
	store *Store
}

var _ domain.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository создаёт репозиторий заказов.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Create(ctx context.Context, input domain.CreateOrderInput) (domain.Order, error) {
	if err := input.Validate(); err != nil {
		return domain.Order{}, err
	}
	lines := mergeLines(input.Lines)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var customer domain.Customer
		err := tx.QueryRowContext(ctx, `
			SELECT id_cliente, id_usuario, nombre, direccion, ciudad, telefono
			FROM clientes
			WHERE id_usuario = $1
		`, input.UserID).Scan(
			&customer.ID, &customer.UserID, &customer.Name,
			&customer.Address, &customer.City, &customer.Phone,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCustomerProfileNotFound
		}
		if err != nil {
			return fmt.Errorf("query customer profile: %w", err)
		}

		// Позиции обрабатываются в порядке запроса; каждая блокирует строку
		// остатков до конца транзакции. Фиксированный порядок одинаковых
		// позиций в разных запросах снижает шанс взаимной блокировки.
		var (
			total      float64
			orderLines []domain.OrderLine
		)
		for _, line := range lines {
			var (
				name      string
				price     float64
				available int
			)
			err := tx.QueryRowContext(ctx, `
				SELECT p.nombre_producto, p.precio, i.cantidad_disponible
				FROM productos p
				JOIN inventarios i ON i.id_producto = p.id_producto
				WHERE p.id_producto = $1
				FOR UPDATE
			`, line.ProductID).Scan(&name, &price, &available)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: producto %d", domain.ErrProductNotFound, line.ProductID)
			}
			if err != nil {
				return fmt.Errorf("lock inventory for product %d: %w", line.ProductID, err)
			}

			if line.Quantity > available {
				return &domain.InsufficientStockError{
					ProductID:   line.ProductID,
					ProductName: name,
					Available:   available,
					Requested:   line.Quantity,
				}
			}

			total += float64(line.Quantity) * price
			orderLines = append(orderLines, domain.OrderLine{
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				UnitPrice:   price,
				ProductName: name,
			})
		}

		// Пустые адресные поля запроса замещаются профилем клиента.
		shipAddress := firstNonEmpty(input.ShipAddress, customer.Address)
		shipCity := firstNonEmpty(input.ShipCity, customer.City)
		contactPhone := firstNonEmpty(input.ContactPhone, customer.Phone)

		err = tx.QueryRowContext(ctx, `
			INSERT INTO pedidos (id_cliente, id_usuario, estado_pedido, total_pedido,
				direccion_envio, ciudad_envio, telefono_contacto)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id_pedido, fecha_pedido
		`, customer.ID, input.UserID, domain.OrderStatusPending, total,
			shipAddress, shipCity, contactPhone).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range orderLines {
			line := &orderLines[i]
			line.OrderID = order.ID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO detalle_pedidos (id_pedido, id_producto, cantidad, precio_unitario)
				VALUES ($1, $2, $3, $4)
				RETURNING id_detalle_pedido
			`, order.ID, line.ProductID, line.Quantity, line.UnitPrice).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order line for product %d: %w", line.ProductID, err)
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE inventarios
				SET cantidad_disponible = cantidad_disponible - $2
				WHERE id_producto = $1
			`, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("decrement inventory for product %d: %w", line.ProductID, err)
			}
		}

		// Корзина очищается той же транзакцией: откат заказа вернёт и её.
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM carrito WHERE id_cliente = $1
		`, customer.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order.CustomerID = customer.ID
		order.UserID = input.UserID
		order.Status = domain.OrderStatusPending
		order.Total = total
		order.ShipAddress = shipAddress
		order.ShipCity = shipCity
		order.ContactPhone = contactPhone
		order.Lines = orderLines
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return queryOrders(ctx, r.store.db, `WHERE id_cliente = $1`, customerID)
}

func (r *OrderRepository) GetForCustomer(ctx context.Context, orderID, customerID int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	orders, err := queryOrders(ctx, r.store.db, `WHERE id_pedido = $1 AND id_cliente = $2`, orderID, customerID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(orders) == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *OrderRepository) Get(ctx context.Context, orderID int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	orders, err := queryOrders(ctx, r.store.db, `WHERE id_pedido = $1`, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(orders) == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return queryOrders(ctx, r.store.db, ``)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var current domain.OrderStatus
		err := tx.QueryRowContext(ctx, `
			SELECT estado_pedido FROM pedidos WHERE id_pedido = $1 FOR UPDATE
		`, orderID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if current.IsTerminal() && current != status {
			return fmt.Errorf("%w: estado actual %q", domain.ErrOrderTerminal, current)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE pedidos SET estado_pedido = $2 WHERE id_pedido = $1
		`, orderID, status); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		// Перевод в Completado материализует продажу здесь же: заказ не
		// может стать завершённым без записи в ventas.
		if status == domain.OrderStatusCompleted {
			if _, _, err := materializeSale(ctx, tx, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return r.Get(ctx, orderID)
}

func (r *OrderRepository) Delete(ctx context.Context, orderID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Детали уходят каскадом; остатки намеренно не восстанавливаются.
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM pedidos WHERE id_pedido = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// mergeLines склеивает повторы одного товара в одну позицию, сохраняя порядок
// первого появления. Один товар блокируется и списывается ровно один раз.
func mergeLines(lines []domain.OrderLineInput) []domain.OrderLineInput {
	merged := make([]domain.OrderLineInput, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if pos, ok := index[line.ProductID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func queryOrders(ctx context.Context, q querier, where string, args ...any) ([]domain.Order, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id_pedido, id_cliente, id_usuario, fecha_pedido, estado_pedido,
			total_pedido, direccion_envio, ciudad_envio, telefono_contacto
		FROM pedidos
		`+where+`
		ORDER BY fecha_pedido DESC, id_pedido DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.UserID, &o.CreatedAt, &o.Status,
			&o.Total, &o.ShipAddress, &o.ShipCity, &o.ContactPhone,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Lines = []domain.OrderLine{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lineRows, err := q.QueryContext(ctx, `
		SELECT d.id_detalle_pedido, d.id_pedido, d.id_producto, d.cantidad,
			d.precio_unitario, COALESCE(p.nombre_producto, '')
		FROM detalle_pedidos d
		LEFT JOIN productos p ON p.id_producto = d.id_producto
		WHERE d.id_pedido = ANY($1)
		ORDER BY d.id_detalle_pedido
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer lineRows.Close()

	byOrder := make(map[int64]int, len(orders))
	for i, o := range orders {
		byOrder[o.ID] = i
	}
	for lineRows.Next() {
		var line domain.OrderLine
		if err := lineRows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.Quantity,
			&line.UnitPrice, &line.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if pos, ok := byOrder[line.OrderID]; ok {
			orders[pos].Lines = append(orders[pos].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return orders, nil
}
