package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/tiendaonline/backend/internal/domain"
)

// OrderRepository — реализация domain.OrderRepository в памяти.
// Мьютекс Store делает Create атомарным: проверка остатков, вставка заказа,
// списание и очистка корзины происходят как единое целое.
type OrderRepository struct {
	store *Store
}

var _ domain.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(_ context.Context, input domain.CreateOrderInput) (domain.Order, error) {
	if err := input.Validate(); err != nil {
		return domain.Order{}, err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customerByUserID(input.UserID)
	if !ok {
		return domain.Order{}, domain.ErrCustomerProfileNotFound
	}

	// Повторы одного товара сливаются в одну позицию до проверки остатков.
	merged := make([]domain.OrderLineInput, 0, len(input.Lines))
	index := make(map[int64]int, len(input.Lines))
	for _, line := range input.Lines {
		if pos, found := index[line.ProductID]; found {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	var (
		total float64
		lines []domain.OrderLine
	)
	for _, line := range merged {
		product, found := s.products[line.ProductID]
		if !found {
			return domain.Order{}, fmt.Errorf("%w: producto %d", domain.ErrProductNotFound, line.ProductID)
		}
		available := s.inventory[line.ProductID]
		if line.Quantity > available {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Available:   available,
				Requested:   line.Quantity,
			}
		}

		total += float64(line.Quantity) * product.Price
		lines = append(lines, domain.OrderLine{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			ProductName: product.Name,
		})
	}

	// Проверки пройдены; дальше только изменения, откатывать нечего.
	s.nextOrderID++
	order := domain.Order{
		ID:           s.nextOrderID,
		CustomerID:   customer.ID,
		UserID:       input.UserID,
		CreatedAt:    s.now(),
		Status:       domain.OrderStatusPending,
		Total:        total,
		ShipAddress:  pickNonEmpty(input.ShipAddress, customer.Address),
		ShipCity:     pickNonEmpty(input.ShipCity, customer.City),
		ContactPhone: pickNonEmpty(input.ContactPhone, customer.Phone),
	}
	for i := range lines {
		s.nextLineID++
		lines[i].ID = s.nextLineID
		lines[i].OrderID = order.ID
		s.inventory[lines[i].ProductID] -= lines[i].Quantity
	}
	order.Lines = lines
	s.orders[order.ID] = orderRecord{Order: order}

	for id, item := range s.cartItems {
		if item.CustomerID == customer.ID {
			delete(s.cartItems, id)
		}
	}

	return order, nil
}

func (r *OrderRepository) ListByCustomer(_ context.Context, customerID int64) ([]domain.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			orders = append(orders, cloneOrder(o.Order))
		}
	}
	sortOrdersDesc(orders)
	return orders, nil
}

func (r *OrderRepository) GetForCustomer(_ context.Context, orderID, customerID int64) (domain.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.CustomerID != customerID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(o.Order), nil
}

func (r *OrderRepository) Get(_ context.Context, orderID int64) (domain.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(o.Order), nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]domain.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, cloneOrder(o.Order))
	}
	sortOrdersDesc(orders)
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if o.Status.IsTerminal() && o.Status != status {
		return domain.Order{}, fmt.Errorf("%w: estado actual %q", domain.ErrOrderTerminal, o.Status)
	}

	o.Status = status
	s.orders[orderID] = o

	if status == domain.OrderStatusCompleted {
		if _, _, err := s.materializeSaleLocked(orderID); err != nil {
			return domain.Order{}, err
		}
	}
	return cloneOrder(o.Order), nil
}

func (r *OrderRepository) Delete(_ context.Context, orderID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, orderID)
	// Продажа переживает удаление заказа как исторический snapshot.
	for id, sale := range s.sales {
		if sale.OrderID == orderID {
			sale.OrderID = 0
			s.sales[id] = sale
		}
	}
	return nil
}

func pickNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cloneOrder(o domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}

func sortOrdersDesc(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
