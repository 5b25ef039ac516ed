package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// CartRepository — PostgreSQL-реализация domain.CartRepository.
// Проверка остатка при добавлении совещательная: гонку с другими корзинами
// она не закрывает, окончательное слово за пайплайном заказов.
type CartRepository struct {
	store *Store
}

var _ domain.CartRepository = (*CartRepository)(nil)

// NewCartRepository создаёт репозиторий корзин.
func NewCartRepository(store *Store) *CartRepository {
	return &CartRepository{store: store}
}

const cartItemColumns = `
	c.id_item_carrito, c.id_cliente, c.id_producto, c.cantidad, c.fecha_agregado,
	p.nombre_producto, p.precio, COALESCE(i.cantidad_disponible, 0)
`

const cartItemJoins = `
	FROM carrito c
	JOIN productos p ON p.id_producto = c.id_producto
	LEFT JOIN inventarios i ON i.id_producto = c.id_producto
`

func (r *CartRepository) Add(ctx context.Context, customerID, productID int64, quantity int) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var item domain.CartItem
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var (
			name      string
			price     float64
			available int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT p.nombre_producto, p.precio, COALESCE(i.cantidad_disponible, 0)
			FROM productos p
			LEFT JOIN inventarios i ON i.id_producto = p.id_producto
			WHERE p.id_producto = $1
		`, productID).Scan(&name, &price, &available)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("query product for cart: %w", err)
		}

		var existing int
		err = tx.QueryRowContext(ctx, `
			SELECT cantidad FROM carrito WHERE id_cliente = $1 AND id_producto = $2
		`, customerID, productID).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query existing cart item: %w", err)
		}

		// Проверяется суммарное количество после слияния позиций.
		total := existing + quantity
		if total > available {
			return &domain.InsufficientStockError{
				ProductID:   productID,
				ProductName: name,
				Available:   available,
				Requested:   total,
			}
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO carrito (id_cliente, id_producto, cantidad)
			VALUES ($1, $2, $3)
			ON CONFLICT (id_cliente, id_producto) DO UPDATE SET
				cantidad = carrito.cantidad + EXCLUDED.cantidad,
				fecha_agregado = NOW()
			RETURNING id_item_carrito, cantidad, fecha_agregado
		`, customerID, productID, quantity).Scan(&item.ID, &item.Quantity, &item.AddedAt)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		item.CustomerID = customerID
		item.ProductID = productID
		item.ProductName = name
		item.Price = price
		item.Stock = available
		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

func (r *CartRepository) List(ctx context.Context, customerID int64) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	items, err := r.queryItems(ctx, r.store.db, customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{CustomerID: customerID, Items: items}
	for _, item := range items {
		cart.Total += item.Subtotal()
	}
	return cart, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, customerID, productID int64, quantity int) (domain.CartItem, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		item    domain.CartItem
		removed bool
	)
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		if quantity == 0 {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM carrito WHERE id_cliente = $1 AND id_producto = $2
			`, customerID, productID)
			if err != nil {
				return fmt.Errorf("delete cart item: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("delete cart item rows affected: %w", err)
			}
			if affected == 0 {
				return domain.ErrCartItemNotFound
			}
			removed = true
			return nil
		}

		var (
			name      string
			price     float64
			available int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT p.nombre_producto, p.precio, COALESCE(i.cantidad_disponible, 0)
			FROM carrito c
			JOIN productos p ON p.id_producto = c.id_producto
			LEFT JOIN inventarios i ON i.id_producto = c.id_producto
			WHERE c.id_cliente = $1 AND c.id_producto = $2
		`, customerID, productID).Scan(&name, &price, &available)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCartItemNotFound
		}
		if err != nil {
			return fmt.Errorf("query cart item for update: %w", err)
		}

		if quantity > available {
			return &domain.InsufficientStockError{
				ProductID:   productID,
				ProductName: name,
				Available:   available,
				Requested:   quantity,
			}
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE carrito SET cantidad = $3
			WHERE id_cliente = $1 AND id_producto = $2
			RETURNING id_item_carrito, cantidad, fecha_agregado
		`, customerID, productID, quantity).Scan(&item.ID, &item.Quantity, &item.AddedAt)
		if err != nil {
			return fmt.Errorf("update cart item: %w", err)
		}

		item.CustomerID = customerID
		item.ProductID = productID
		item.ProductName = name
		item.Price = price
		item.Stock = available
		return nil
	})
	if err != nil {
		return domain.CartItem{}, false, err
	}
	return item, removed, nil
}

func (r *CartRepository) Remove(ctx context.Context, customerID, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, `
		DELETE FROM carrito WHERE id_cliente = $1 AND id_producto = $2
	`, customerID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart item rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, customerID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, `DELETE FROM carrito WHERE id_cliente = $1`, customerID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cart rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *CartRepository) ListAll(ctx context.Context) ([]domain.CustomerCart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT `+cartItemColumns+`, cl.nombre, u.usuario
		`+cartItemJoins+`
		JOIN clientes cl ON cl.id_cliente = c.id_cliente
		JOIN usuarios u ON u.id_usuario = cl.id_usuario
		ORDER BY c.id_cliente, c.id_item_carrito
	`)
	if err != nil {
		return nil, fmt.Errorf("query all carts: %w", err)
	}
	defer rows.Close()

	carts := make([]domain.CustomerCart, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			item  domain.CartItem
			name  string
			email string
		)
		if err := rows.Scan(
			&item.ID, &item.CustomerID, &item.ProductID, &item.Quantity, &item.AddedAt,
			&item.ProductName, &item.Price, &item.Stock, &name, &email,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		pos, ok := index[item.CustomerID]
		if !ok {
			carts = append(carts, domain.CustomerCart{
				CustomerID:    item.CustomerID,
				CustomerName:  name,
				CustomerEmail: email,
				Items:         []domain.CartItem{},
			})
			pos = len(carts) - 1
			index[item.CustomerID] = pos
		}
		carts[pos].Items = append(carts[pos].Items, item)
		carts[pos].Total += item.Subtotal()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate all carts: %w", err)
	}
	return carts, nil
}

func (r *CartRepository) GetByCustomer(ctx context.Context, customerID int64) (domain.CustomerCart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		name  string
		email string
	)
	err := r.store.db.QueryRowContext(ctx, `
		SELECT cl.nombre, u.usuario
		FROM clientes cl
		JOIN usuarios u ON u.id_usuario = cl.id_usuario
		WHERE cl.id_cliente = $1
	`, customerID).Scan(&name, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CustomerCart{}, domain.ErrCustomerNotFound
	}
	if err != nil {
		return domain.CustomerCart{}, fmt.Errorf("query customer: %w", err)
	}

	items, err := r.queryItems(ctx, r.store.db, customerID)
	if err != nil {
		return domain.CustomerCart{}, err
	}

	cart := domain.CustomerCart{
		CustomerID:    customerID,
		CustomerName:  name,
		CustomerEmail: email,
		Items:         items,
	}
	for _, item := range items {
		cart.Total += item.Subtotal()
	}
	return cart, nil
}

func (r *CartRepository) queryItems(ctx context.Context, q querier, customerID int64) ([]domain.CartItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+cartItemColumns+`
		`+cartItemJoins+`
		WHERE c.id_cliente = $1
		ORDER BY c.id_item_carrito
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID, &item.CustomerID, &item.ProductID, &item.Quantity, &item.AddedAt,
			&item.ProductName, &item.Price, &item.Stock,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}
