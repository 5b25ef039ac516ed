package memory

import (
	"context"
	"sort"

	"github.com/tiendaonline/backend/internal/domain"
)

// ProductRepository — реализация domain.ProductRepository в памяти.
type ProductRepository struct {
	store *Store
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) Create(_ context.Context, product domain.NewProduct) (domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Name == product.Name {
			return domain.Product{}, domain.ErrProductNameTaken
		}
	}

	s.nextProductID++
	created := domain.Product{
		ID:          s.nextProductID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Unit:        product.Unit,
	}
	s.products[created.ID] = created
	s.inventory[created.ID] = product.InitialStock
	return created, nil
}

func (r *ProductRepository) Get(_ context.Context, id int64) (domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *ProductRepository) List(_ context.Context) ([]domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *ProductRepository) Update(_ context.Context, product domain.Product) (domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	for id, existing := range s.products {
		if id != product.ID && existing.Name == product.Name {
			return domain.Product{}, domain.ErrProductNameTaken
		}
	}

	s.products[product.ID] = product
	return product, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)
	delete(s.inventory, id)
	for itemID, item := range s.cartItems {
		if item.ProductID == id {
			delete(s.cartItems, itemID)
		}
	}
	return nil
}

func (r *ProductRepository) ListWithStock(_ context.Context) ([]domain.ProductStock, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.ProductStock, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, domain.ProductStock{
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     s.inventory[p.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductID < result[j].ProductID })
	return result, nil
}
