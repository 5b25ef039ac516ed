package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// ProductRepository — PostgreSQL-реализация domain.ProductRepository.
// Создание товара одновременно заводит ему запись в леджере остатков.
type ProductRepository struct {
	store *Store
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository создаёт репозиторий каталога.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.NewProduct) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var created domain.Product
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO productos (nombre_producto, descripcion, precio, unidad_medida)
			VALUES ($1, $2, $3, $4)
			RETURNING id_producto
		`, product.Name, product.Description, product.Price, product.Unit).Scan(&created.ID)
		if isUniqueViolation(err) {
			return domain.ErrProductNameTaken
		}
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventarios (id_producto, cantidad_disponible)
			VALUES ($1, $2)
		`, created.ID, product.InitialStock); err != nil {
			return fmt.Errorf("insert inventory record: %w", err)
		}

		created.Name = product.Name
		created.Description = product.Description
		created.Price = product.Price
		created.Unit = product.Unit
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return created, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		SELECT id_producto, nombre_producto, descripcion, precio, unidad_medida
		FROM productos
		WHERE id_producto = $1
	`, id)
	return scanProduct(row)
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id_producto, nombre_producto, descripcion, precio, unidad_medida
		FROM productos
		ORDER BY id_producto
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Unit); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		UPDATE productos
		SET nombre_producto = $2, descripcion = $3, precio = $4, unidad_medida = $5
		WHERE id_producto = $1
		RETURNING id_producto, nombre_producto, descripcion, precio, unidad_medida
	`, product.ID, product.Name, product.Description, product.Price, product.Unit)

	updated, err := scanProduct(row)
	if isUniqueViolation(err) {
		return domain.Product{}, domain.ErrProductNameTaken
	}
	return updated, err
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Запись inventarios уходит каскадом вместе с товаром.
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM productos WHERE id_producto = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) ListWithStock(ctx context.Context) ([]domain.ProductStock, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT p.id_producto, p.nombre_producto, COALESCE(i.cantidad_disponible, 0)
		FROM productos p
		LEFT JOIN inventarios i ON i.id_producto = p.id_producto
		ORDER BY p.id_producto
	`)
	if err != nil {
		return nil, fmt.Errorf("query products with stock: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductStock, 0)
	for rows.Next() {
		var ps domain.ProductStock
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.Stock); err != nil {
			return nil, fmt.Errorf("scan product stock: %w", err)
		}
		result = append(result, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products with stock: %w", err)
	}
	return result, nil
}

func scanProduct(row *sql.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Unit)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
