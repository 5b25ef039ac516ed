package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tiendaonline/backend/internal/domain"
)

// SaleRepository — реализация domain.SaleRepository в памяти.
type SaleRepository struct {
	store *Store
}

var _ domain.SaleRepository = (*SaleRepository)(nil)

func (r *SaleRepository) Materialize(_ context.Context, orderID int64) (domain.Sale, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materializeSaleLocked(orderID)
}

// materializeSaleLocked создаёт продажу из заказа. Вызывается только под
// мьютексом Store. Повторный вызов для того же заказа возвращает существующую
// продажу с created=false.
func (s *Store) materializeSaleLocked(orderID int64) (domain.Sale, bool, error) {
	for _, sale := range s.sales {
		if sale.OrderID == orderID {
			return s.saleView(sale), false, nil
		}
	}

	order, ok := s.orders[orderID]
	if !ok {
		return domain.Sale{}, false, domain.ErrOrderNotFound
	}

	stateID, found := s.saleStateID(domain.SaleStateCompleted)
	if !found {
		return domain.Sale{}, false, fmt.Errorf("%w: %q", domain.ErrSaleStateMissing, domain.SaleStateCompleted)
	}

	s.nextSaleID++
	sale := saleRecord{
		ID:         s.nextSaleID,
		OrderID:    orderID,
		CustomerID: order.CustomerID,
		UserID:     order.UserID,
		Date:       s.now().Truncate(24 * time.Hour),
		Total:      order.Total,
		StateID:    stateID,
	}
	for _, line := range order.Lines {
		s.nextSaleLineID++
		sale.Lines = append(sale.Lines, domain.SaleLine{
			ID:          s.nextSaleLineID,
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    float64(line.Quantity) * line.UnitPrice,
		})
	}
	s.sales[sale.ID] = sale

	return s.saleView(sale), true, nil
}

func (r *SaleRepository) ListByCustomer(_ context.Context, customerID int64) ([]domain.Sale, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sales := make([]domain.Sale, 0)
	for _, sale := range s.sales {
		if sale.CustomerID == customerID {
			sales = append(sales, s.saleView(sale))
		}
	}
	sortSalesDesc(sales)
	return sales, nil
}

func (r *SaleRepository) Get(_ context.Context, saleID int64) (domain.Sale, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[saleID]
	if !ok {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return s.saleView(sale), nil
}

func (r *SaleRepository) ListAll(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sales := make([]domain.Sale, 0)
	for _, sale := range s.sales {
		if filter.CustomerID > 0 && sale.CustomerID != filter.CustomerID {
			continue
		}
		if filter.StateID > 0 && sale.StateID != filter.StateID {
			continue
		}
		if !filter.DateFrom.IsZero() && sale.Date.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && sale.Date.After(filter.DateTo) {
			continue
		}
		sales = append(sales, s.saleView(sale))
	}
	sortSalesDesc(sales)
	return sales, nil
}

func (s *Store) saleView(sale saleRecord) domain.Sale {
	view := domain.Sale{
		ID:         sale.ID,
		OrderID:    sale.OrderID,
		CustomerID: sale.CustomerID,
		UserID:     sale.UserID,
		Date:       sale.Date,
		Total:      sale.Total,
		StateID:    sale.StateID,
		StateName:  s.saleStates[sale.StateID],
		Lines:      make([]domain.SaleLine, len(sale.Lines)),
	}
	copy(view.Lines, sale.Lines)
	if customer, ok := s.customers[sale.CustomerID]; ok {
		view.CustomerName = customer.Name
	}
	if user, ok := s.users[sale.UserID]; ok {
		view.CustomerEmail = user.Email
	}
	return view
}

func sortSalesDesc(sales []domain.Sale) {
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].Date.Equal(sales[j].Date) {
			return sales[i].Date.After(sales[j].Date)
		}
		return sales[i].ID > sales[j].ID
	})
}
