package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tiendaonline/backend/internal/domain"
)

func TestInsufficientStockError_Is(t *testing.T) {
	var err error = &domain.InsufficientStockError{
		ProductID:   7,
		ProductName: "Huevos AA",
		Available:   5,
		Requested:   6,
	}

	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatal("typed error must match ErrInsufficientStock sentinel")
	}

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatal("errors.As must recover the typed error")
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("unexpected payload: %+v", stockErr)
	}
	if !strings.Contains(err.Error(), "Huevos AA") {
		t.Fatalf("message must name the product: %s", err.Error())
	}
}

func TestParsePaymentStatus(t *testing.T) {
	for _, valid := range []string{"Pendiente", "Aprobado", "Rechazado", "Reembolsado"} {
		if _, err := domain.ParsePaymentStatus(valid); err != nil {
			t.Fatalf("status %q must be valid: %v", valid, err)
		}
	}
	if _, err := domain.ParsePaymentStatus("Pagado"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}
