package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tiendaonline/backend/internal/domain"
)

// helper для базового заказа с двумя позициями.
func makeOrder() domain.Order {
	return domain.Order{
		ID:         1,
		CustomerID: 10,
		UserID:     100,
		CreatedAt:  time.Now().UTC(),
		Status:     domain.OrderStatusPending,
		Total:      25.0,
		Lines: []domain.OrderLine{
			{ProductID: 1, Quantity: 2, UnitPrice: 10.0},
			{ProductID: 2, Quantity: 1, UnitPrice: 5.0},
		},
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if err := order.ValidateInvariants(); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.Total = 24.0
			},
		},
		{
			name: "zero qty line",
			mut: func(o *domain.Order) {
				o.Lines[0].Quantity = 0
			},
		},
		{
			name: "negative price",
			mut: func(o *domain.Order) {
				o.Lines[1].UnitPrice = -1
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			err := order.ValidateInvariants()
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, valid := range []string{"Pendiente", "En proceso", "Completado", "Cancelado"} {
		if _, err := domain.ParseOrderStatus(valid); err != nil {
			t.Fatalf("status %q must be valid: %v", valid, err)
		}
	}
	if _, err := domain.ParseOrderStatus("Enviado"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	if domain.OrderStatusPending.IsTerminal() || domain.OrderStatusInProcess.IsTerminal() {
		t.Fatal("Pendiente/En proceso must not be terminal")
	}
	if !domain.OrderStatusCompleted.IsTerminal() || !domain.OrderStatusCancelled.IsTerminal() {
		t.Fatal("Completado/Cancelado must be terminal")
	}
}

func TestCreateOrderInputValidate(t *testing.T) {
	cases := []struct {
		name    string
		input   domain.CreateOrderInput
		wantErr bool
	}{
		{
			name:    "empty lines",
			input:   domain.CreateOrderInput{UserID: 1},
			wantErr: true,
		},
		{
			name: "bad product id",
			input: domain.CreateOrderInput{
				UserID: 1,
				Lines:  []domain.OrderLineInput{{ProductID: 0, Quantity: 1}},
			},
			wantErr: true,
		},
		{
			name: "bad quantity",
			input: domain.CreateOrderInput{
				UserID: 1,
				Lines:  []domain.OrderLineInput{{ProductID: 5, Quantity: -2}},
			},
			wantErr: true,
		},
		{
			name: "ok",
			input: domain.CreateOrderInput{
				UserID: 1,
				Lines:  []domain.OrderLineInput{{ProductID: 5, Quantity: 2}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if tc.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}
