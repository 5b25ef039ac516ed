package memory

import (
	"context"

	"github.com/tiendaonline/backend/internal/domain"
)

// CustomerRepository — реализация domain.CustomerRepository в памяти.
type CustomerRepository struct {
	store *Store
}

var _ domain.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) GetByUserID(_ context.Context, userID int64) (domain.Customer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customerByUserID(userID)
	if !ok {
		return domain.Customer{}, domain.ErrCustomerProfileNotFound
	}
	return c, nil
}

func (r *CustomerRepository) Get(_ context.Context, customerID int64) (domain.Customer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (r *CustomerRepository) Upsert(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.customerByUserID(customer.UserID); ok {
		existing.Name = customer.Name
		existing.Address = customer.Address
		existing.City = customer.City
		existing.Phone = customer.Phone
		s.customers[existing.ID] = existing
		return existing, nil
	}

	s.nextCustomerID++
	customer.ID = s.nextCustomerID
	s.customers[customer.ID] = customer
	return customer, nil
}
