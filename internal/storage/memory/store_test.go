package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tiendaonline/backend/internal/domain"
	"github.com/tiendaonline/backend/internal/storage/memory"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	user, err := store.Users().Create(ctx, domain.NewUser{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := store.Users().Create(ctx, domain.NewUser{
		Name:         "Otra Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash2",
		Role:         domain.RoleCustomer,
	}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	byEmail, err := store.Users().GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected id %d, got %d", user.ID, byEmail.ID)
	}

	if _, err := store.Users().GetByID(ctx, 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCustomerRepository_UpsertIsIdempotentPerUser(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	user, err := store.Users().Create(ctx, domain.NewUser{
		Name: "Pedro", Email: "pedro@example.com", PasswordHash: "h", Role: domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	first, err := store.Customers().Upsert(ctx, domain.Customer{UserID: user.ID, Name: "Pedro", City: "Cali"})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := store.Customers().Upsert(ctx, domain.Customer{UserID: user.ID, Name: "Pedro", City: "Medellín"})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same customer id %d, got %d", first.ID, second.ID)
	}
	if second.City != "Medellín" {
		t.Fatalf("expected updated city, got %q", second.City)
	}

	if _, err := store.Customers().GetByUserID(ctx, 999); !errors.Is(err, domain.ErrCustomerProfileNotFound) {
		t.Fatalf("expected ErrCustomerProfileNotFound, got %v", err)
	}
}

func TestProductRepository_CreateSeedsInventory(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	product, err := store.Products().Create(ctx, domain.NewProduct{
		Name: "Té verde", Price: 4.50, Unit: "caja", InitialStock: 7,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec, err := store.Inventory().Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("inventory get failed: %v", err)
	}
	if rec.Available != 7 {
		t.Fatalf("expected stock 7, got %d", rec.Available)
	}

	if _, err := store.Products().Create(ctx, domain.NewProduct{Name: "Té verde", Price: 1}); !errors.Is(err, domain.ErrProductNameTaken) {
		t.Fatalf("expected ErrProductNameTaken, got %v", err)
	}

	listed, err := store.Products().ListWithStock(ctx)
	if err != nil {
		t.Fatalf("list with stock failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Stock != 7 {
		t.Fatalf("unexpected stock listing: %+v", listed)
	}
}

func TestInventoryAdjust(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	product, err := store.Products().Create(ctx, domain.NewProduct{
		Name: "Miel", Price: 9.00, Unit: "frasco", InitialStock: 3,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec, err := store.Inventory().Adjust(ctx, product.ID, 5)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if rec.Available != 8 {
		t.Fatalf("expected 8 after restock, got %d", rec.Available)
	}

	if _, err := store.Inventory().Adjust(ctx, product.ID, -9); !errors.Is(err, domain.ErrNegativeStock) {
		t.Fatalf("expected ErrNegativeStock, got %v", err)
	}
	rec, err = store.Inventory().Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.Available != 8 {
		t.Fatalf("failed adjust must not change stock, got %d", rec.Available)
	}

	if _, err := store.Inventory().Adjust(ctx, 999, 1); !errors.Is(err, domain.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestOrderDelete_DoesNotRestockAndKeepsSale(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	user, err := store.Users().Create(ctx, domain.NewUser{
		Name: "Rosa", Email: "rosa@example.com", PasswordHash: "h", Role: domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := store.Customers().Upsert(ctx, domain.Customer{UserID: user.ID, Name: "Rosa"}); err != nil {
		t.Fatalf("upsert customer failed: %v", err)
	}
	product, err := store.Products().Create(ctx, domain.NewProduct{
		Name: "Vino", Price: 30.00, Unit: "botella", InitialStock: 5,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	order, err := store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	sale, _, err := store.Sales().Materialize(ctx, order.ID)
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}

	if err := store.Orders().Delete(ctx, order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Остатки не возвращаются, продажа остаётся историей без заказа.
	rec, err := store.Inventory().Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("inventory get failed: %v", err)
	}
	if rec.Available != 3 {
		t.Fatalf("expected stock 3 after delete, got %d", rec.Available)
	}
	kept, err := store.Sales().Get(ctx, sale.ID)
	if err != nil {
		t.Fatalf("sale get failed: %v", err)
	}
	if kept.OrderID != 0 {
		t.Fatalf("expected detached sale, got order id %d", kept.OrderID)
	}

	if err := store.Orders().Delete(ctx, order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPaymentUpdateStatus_DoesNotTouchOrderOrStock(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	user, err := store.Users().Create(ctx, domain.NewUser{
		Name: "Luz", Email: "luz@example.com", PasswordHash: "h", Role: domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := store.Customers().Upsert(ctx, domain.Customer{UserID: user.ID, Name: "Luz"}); err != nil {
		t.Fatalf("upsert customer failed: %v", err)
	}
	product, err := store.Products().Create(ctx, domain.NewProduct{
		Name: "Jamón", Price: 12.00, Unit: "kg", InitialStock: 4,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	order, err := store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	result, err := store.Payments().Process(ctx, domain.ProcessPaymentInput{
		UserID: user.ID, OrderID: order.ID, Method: "efectivo",
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	payment, err := store.Payments().UpdateStatus(ctx, result.Payment.ID, domain.PaymentStatusRefunded)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if payment.Status != domain.PaymentStatusRefunded {
		t.Fatalf("expected Reembolsado, got %q", payment.Status)
	}

	// Возврат — только корректировка платежа: заказ и остатки не меняются.
	updated, err := store.Orders().Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected order still Completado, got %q", updated.Status)
	}
	rec, err := store.Inventory().Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("inventory get failed: %v", err)
	}
	if rec.Available != 3 {
		t.Fatalf("expected stock 3, got %d", rec.Available)
	}
}
