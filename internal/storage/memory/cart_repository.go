package memory

import (
	"context"
	"sort"

	"github.com/tiendaonline/backend/internal/domain"
)

// CartRepository — реализация domain.CartRepository в памяти.
type CartRepository struct {
	store *Store
}

var _ domain.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Add(_ context.Context, customerID, productID int64, quantity int) (domain.CartItem, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return domain.CartItem{}, domain.ErrProductNotFound
	}
	available := s.inventory[productID]

	existing, found := s.cartItemFor(customerID, productID)
	total := quantity
	if found {
		total += existing.Quantity
	}
	if total > available {
		return domain.CartItem{}, &domain.InsufficientStockError{
			ProductID:   productID,
			ProductName: product.Name,
			Available:   available,
			Requested:   total,
		}
	}

	if found {
		existing.Quantity = total
		existing.AddedAt = s.now()
		s.cartItems[existing.ID] = existing
		return s.enrichItem(existing), nil
	}

	s.nextCartItemID++
	item := cartRecord{
		ID:         s.nextCartItemID,
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
		AddedAt:    s.now(),
	}
	s.cartItems[item.ID] = item
	return s.enrichItem(item), nil
}

func (r *CartRepository) List(_ context.Context, customerID int64) (domain.Cart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.itemsFor(customerID)
	cart := domain.Cart{CustomerID: customerID, Items: items}
	for _, item := range items {
		cart.Total += item.Subtotal()
	}
	return cart, nil
}

func (r *CartRepository) SetQuantity(_ context.Context, customerID, productID int64, quantity int) (domain.CartItem, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, found := s.cartItemFor(customerID, productID)
	if !found {
		return domain.CartItem{}, false, domain.ErrCartItemNotFound
	}

	if quantity == 0 {
		delete(s.cartItems, item.ID)
		return domain.CartItem{}, true, nil
	}

	available := s.inventory[item.ProductID]
	if quantity > available {
		name := ""
		if product, ok := s.products[item.ProductID]; ok {
			name = product.Name
		}
		return domain.CartItem{}, false, &domain.InsufficientStockError{
			ProductID:   item.ProductID,
			ProductName: name,
			Available:   available,
			Requested:   quantity,
		}
	}

	item.Quantity = quantity
	s.cartItems[item.ID] = item
	return s.enrichItem(item), false, nil
}

func (r *CartRepository) Remove(_ context.Context, customerID, productID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	item, found := s.cartItemFor(customerID, productID)
	if !found {
		return domain.ErrCartItemNotFound
	}
	delete(s.cartItems, item.ID)
	return nil
}

func (r *CartRepository) Clear(_ context.Context, customerID int64) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, item := range s.cartItems {
		if item.CustomerID == customerID {
			delete(s.cartItems, id)
			removed++
		}
	}
	return removed, nil
}

func (r *CartRepository) ListAll(_ context.Context) ([]domain.CustomerCart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	customerIDs := make([]int64, 0)
	seen := make(map[int64]bool)
	for _, item := range s.cartItems {
		if !seen[item.CustomerID] {
			seen[item.CustomerID] = true
			customerIDs = append(customerIDs, item.CustomerID)
		}
	}
	sort.Slice(customerIDs, func(i, j int) bool { return customerIDs[i] < customerIDs[j] })

	carts := make([]domain.CustomerCart, 0, len(customerIDs))
	for _, customerID := range customerIDs {
		carts = append(carts, s.customerCart(customerID))
	}
	return carts, nil
}

func (r *CartRepository) GetByCustomer(_ context.Context, customerID int64) (domain.CustomerCart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return domain.CustomerCart{}, domain.ErrCustomerNotFound
	}
	return s.customerCart(customerID), nil
}

func (s *Store) customerCart(customerID int64) domain.CustomerCart {
	cart := domain.CustomerCart{
		CustomerID: customerID,
		Items:      s.itemsFor(customerID),
	}
	if customer, ok := s.customers[customerID]; ok {
		cart.CustomerName = customer.Name
		if user, found := s.users[customer.UserID]; found {
			cart.CustomerEmail = user.Email
		}
	}
	for _, item := range cart.Items {
		cart.Total += item.Subtotal()
	}
	return cart
}

func (s *Store) itemsFor(customerID int64) []domain.CartItem {
	items := make([]domain.CartItem, 0)
	for _, item := range s.cartItems {
		if item.CustomerID == customerID {
			items = append(items, s.enrichItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *Store) enrichItem(item cartRecord) domain.CartItem {
	enriched := domain.CartItem{
		ID:         item.ID,
		CustomerID: item.CustomerID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		AddedAt:    item.AddedAt,
	}
	if product, ok := s.products[item.ProductID]; ok {
		enriched.ProductName = product.Name
		enriched.Price = product.Price
		enriched.Stock = s.inventory[item.ProductID]
	}
	return enriched
}
