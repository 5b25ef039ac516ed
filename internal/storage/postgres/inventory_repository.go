package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// InventoryRepository — PostgreSQL-реализация domain.InventoryRepository.
// Административные корректировки идут под FOR UPDATE той же строки, что и
// пайплайн заказов, поэтому не гоняются с декрементом.
type InventoryRepository struct {
	store *Store
}

var _ domain.InventoryRepository = (*InventoryRepository)(nil)

// NewInventoryRepository создаёт репозиторий леджера остатков.
func NewInventoryRepository(store *Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

func (r *InventoryRepository) Get(ctx context.Context, productID int64) (domain.InventoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var rec domain.InventoryRecord
	err := r.store.db.QueryRowContext(ctx, `
		SELECT id_producto, cantidad_disponible
		FROM inventarios
		WHERE id_producto = $1
	`, productID).Scan(&rec.ProductID, &rec.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryRecord{}, domain.ErrInventoryNotFound
	}
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("query inventory: %w", err)
	}
	return rec, nil
}

func (r *InventoryRepository) Adjust(ctx context.Context, productID int64, delta int) (domain.InventoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var rec domain.InventoryRecord
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var available int
		err := tx.QueryRowContext(ctx, `
			SELECT cantidad_disponible
			FROM inventarios
			WHERE id_producto = $1
			FOR UPDATE
		`, productID).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInventoryNotFound
		}
		if err != nil {
			return fmt.Errorf("lock inventory row: %w", err)
		}

		next := available + delta
		if next < 0 {
			return fmt.Errorf("%w: disponible %d, ajuste %d", domain.ErrNegativeStock, available, delta)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE inventarios SET cantidad_disponible = $2 WHERE id_producto = $1
		`, productID, next); err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}

		rec = domain.InventoryRecord{ProductID: productID, Available: next}
		return nil
	})
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	return rec, nil
}
