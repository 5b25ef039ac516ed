package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tiendaonline/backend/internal/domain"
)

func TestOrderRepository_PostgresPipeline(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	customer := seedCustomerForIntegrationTest(t, store, "pipeline@example.com")
	coffee := seedProductForIntegrationTest(t, store, "Café integración", 10.00, 5)
	sugar := seedProductForIntegrationTest(t, store, "Azúcar integración", 5.00, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	carts := NewCartRepository(store)
	if _, err := carts.Add(ctx, customer.ID, coffee.ID, 2); err != nil {
		t.Fatalf("add coffee to cart: %v", err)
	}

	orders := NewOrderRepository(store)
	order, err := orders.Create(ctx, domain.CreateOrderInput{
		UserID: customer.UserID,
		Lines: []domain.OrderLineInput{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: sugar.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Total != 25.00 {
		t.Fatalf("expected total 25.00, got %.2f", order.Total)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected status Pendiente, got %q", order.Status)
	}
	// Адресные поля взяты из профиля клиента.
	if order.ShipAddress != customer.Address || order.ShipCity != customer.City {
		t.Fatalf("expected shipping from profile, got %q / %q", order.ShipAddress, order.ShipCity)
	}

	inventory := NewInventoryRepository(store)
	rec, err := inventory.Get(ctx, coffee.ID)
	if err != nil {
		t.Fatalf("get coffee stock: %v", err)
	}
	if rec.Available != 3 {
		t.Fatalf("expected coffee stock 3, got %d", rec.Available)
	}
	rec, err = inventory.Get(ctx, sugar.ID)
	if err != nil {
		t.Fatalf("get sugar stock: %v", err)
	}
	if rec.Available != 0 {
		t.Fatalf("expected sugar stock 0, got %d", rec.Available)
	}

	// Корзина очищена той же транзакцией.
	cart, err := carts.List(ctx, customer.ID)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after order, got %d items", len(cart.Items))
	}
}

func TestOrderRepository_PostgresInsufficientStockRollsBack(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	customer := seedCustomerForIntegrationTest(t, store, "rollback@example.com")
	coffee := seedProductForIntegrationTest(t, store, "Café escaso", 10.00, 5)
	sugar := seedProductForIntegrationTest(t, store, "Azúcar escasa", 5.00, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := NewOrderRepository(store)
	_, err := orders.Create(ctx, domain.CreateOrderInput{
		UserID: customer.UserID,
		Lines: []domain.OrderLineInput{
			{ProductID: coffee.ID, Quantity: 3},
			{ProductID: sugar.ID, Quantity: 6},
		},
	})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != sugar.ID || stockErr.Available != 2 || stockErr.Requested != 6 {
		t.Fatalf("unexpected error details: %+v", stockErr)
	}

	// Первая позиция не должна была списаться.
	inventory := NewInventoryRepository(store)
	rec, err := inventory.Get(ctx, coffee.ID)
	if err != nil {
		t.Fatalf("get coffee stock: %v", err)
	}
	if rec.Available != 5 {
		t.Fatalf("expected coffee stock unchanged at 5, got %d", rec.Available)
	}

	list, err := orders.ListByCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no orders after rollback, got %d", len(list))
	}
}

func TestOrderRepository_PostgresConcurrentOrdersNeverOversell(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	first := seedCustomerForIntegrationTest(t, store, "carrera1@example.com")
	second := seedCustomerForIntegrationTest(t, store, "carrera2@example.com")
	product := seedProductForIntegrationTest(t, store, "Producto disputado", 10.00, 5)

	orders := NewOrderRepository(store)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, userID := range []int64{first.UserID, second.UserID} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, results[i] = orders.Create(ctx, domain.CreateOrderInput{
				UserID: userID,
				Lines:  []domain.OrderLineInput{{ProductID: product.ID, Quantity: 3}},
			})
		}(i, userID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrInsufficientStock):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected exactly one winner, got won=%d lost=%d", won, lost)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, err := NewInventoryRepository(store).Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if rec.Available != 2 {
		t.Fatalf("expected final stock 2, got %d", rec.Available)
	}
}

func TestOrderRepository_PostgresTerminalStatusAndDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	customer := seedCustomerForIntegrationTest(t, store, "terminal@example.com")
	product := seedProductForIntegrationTest(t, store, "Producto terminal", 4.00, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	orders := NewOrderRepository(store)
	order, err := orders.Create(ctx, domain.CreateOrderInput{
		UserID: customer.UserID,
		Lines:  []domain.OrderLineInput{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Completado материализует продажу в той же транзакции.
	updated, err := orders.UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("complete order: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected Completado, got %q", updated.Status)
	}
	sales, err := NewSaleRepository(store).ListByCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}

	// Из терминального статуса переходов нет.
	if _, err := orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPending); !errors.Is(err, domain.ErrOrderTerminal) {
		t.Fatalf("expected ErrOrderTerminal, got %v", err)
	}

	// Удаление заказа не восстанавливает остатки и не трогает продажу.
	if err := orders.Delete(ctx, order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	rec, err := NewInventoryRepository(store).Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if rec.Available != 8 {
		t.Fatalf("expected stock 8 after delete, got %d", rec.Available)
	}
	sale, err := NewSaleRepository(store).Get(ctx, sales[0].ID)
	if err != nil {
		t.Fatalf("sale should survive order delete: %v", err)
	}
	if sale.OrderID != 0 {
		t.Fatalf("expected detached sale, got order id %d", sale.OrderID)
	}

	if err := orders.Delete(ctx, order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on second delete, got %v", err)
	}
}
