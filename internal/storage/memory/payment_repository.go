package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tiendaonline/backend/internal/domain"
)

// PaymentRepository — реализация domain.PaymentRepository в памяти.
type PaymentRepository struct {
	store *Store
}

var _ domain.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Process(_ context.Context, input domain.ProcessPaymentInput) (domain.PaymentResult, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[input.OrderID]
	if !ok || order.UserID != input.UserID {
		return domain.PaymentResult{}, domain.ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return domain.PaymentResult{}, fmt.Errorf("%w: estado actual %q", domain.ErrOrderTerminal, order.Status)
	}

	s.nextPaymentID++
	payment := domain.Payment{
		ID:            s.nextPaymentID,
		OrderID:       input.OrderID,
		PaidAt:        s.now(),
		Amount:        order.Total,
		Method:        input.Method,
		Status:        domain.PaymentStatusApproved,
		TransactionID: uuid.NewString(),
	}
	s.payments[payment.ID] = payment

	order.Status = domain.OrderStatusCompleted
	s.orders[input.OrderID] = order

	sale, created, err := s.materializeSaleLocked(input.OrderID)
	if err != nil {
		return domain.PaymentResult{}, err
	}

	return domain.PaymentResult{
		Payment:     payment,
		SaleID:      sale.ID,
		SaleCreated: created,
	}, nil
}

func (r *PaymentRepository) Get(_ context.Context, paymentID int64) (domain.PaymentDetail, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		return domain.PaymentDetail{}, domain.ErrPaymentNotFound
	}

	detail := domain.PaymentDetail{Payment: payment}
	if order, found := s.orders[payment.OrderID]; found {
		detail.CustomerID = order.CustomerID
		detail.OwnerUserID = order.UserID
	}
	return detail, nil
}

func (r *PaymentRepository) ListAll(_ context.Context) ([]domain.Payment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := make([]domain.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].PaidAt.After(payments[j].PaidAt)
		}
		return payments[i].ID > payments[j].ID
	})
	return payments, nil
}

func (r *PaymentRepository) UpdateStatus(_ context.Context, paymentID int64, status domain.PaymentStatus) (domain.Payment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	payment.Status = status
	s.payments[paymentID] = payment
	return payment, nil
}
