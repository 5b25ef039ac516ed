package memory

import (
	"context"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// InventoryRepository — реализация domain.InventoryRepository в памяти.
type InventoryRepository struct {
	store *Store
}

var _ domain.InventoryRepository = (*InventoryRepository)(nil)

func (r *InventoryRepository) Get(_ context.Context, productID int64) (domain.InventoryRecord, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	available, ok := s.inventory[productID]
	if !ok {
		return domain.InventoryRecord{}, domain.ErrInventoryNotFound
	}
	return domain.InventoryRecord{ProductID: productID, Available: available}, nil
}

func (r *InventoryRepository) Adjust(_ context.Context, productID int64, delta int) (domain.InventoryRecord, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	available, ok := s.inventory[productID]
	if !ok {
		return domain.InventoryRecord{}, domain.ErrInventoryNotFound
	}

	next := available + delta
	if next < 0 {
		return domain.InventoryRecord{}, fmt.Errorf("%w: disponible %d, ajuste %d", domain.ErrNegativeStock, available, delta)
	}

	s.inventory[productID] = next
	return domain.InventoryRecord{ProductID: productID, Available: next}, nil
}
