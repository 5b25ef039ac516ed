package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tiendaonline/backend/internal/domain"
	"github.com/tiendaonline/backend/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	user     domain.User
	customer domain.Customer
}

// newFixture создаёт хранилище с одним клиентом и набором товаров.
func newFixture(t *testing.T, products ...domain.NewProduct) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	user, err := store.Users().Create(ctx, domain.NewUser{
		Name:         "Laura Gómez",
		Email:        "laura@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	customer, err := store.Customers().Upsert(ctx, domain.Customer{
		UserID:  user.ID,
		Name:    "Laura Gómez",
		Address: "Calle 10 #5-51",
		City:    "Bogotá",
		Phone:   "3001234567",
	})
	if err != nil {
		t.Fatalf("upsert customer failed: %v", err)
	}

	for _, p := range products {
		if _, err := store.Products().Create(ctx, p); err != nil {
			t.Fatalf("create product %q failed: %v", p.Name, err)
		}
	}

	return fixture{store: store, user: user, customer: customer}
}

func stock(t *testing.T, store *memory.Store, productID int64) int {
	t.Helper()
	rec, err := store.Inventory().Get(context.Background(), productID)
	if err != nil {
		t.Fatalf("get inventory failed: %v", err)
	}
	return rec.Available
}

func TestOrderCreate_TwoLinesCapturesPricesAndDecrements(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Café molido", Price: 10.00, Unit: "unidad", InitialStock: 5},
		domain.NewProduct{Name: "Panela", Price: 5.00, Unit: "unidad", InitialStock: 1},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines: []domain.OrderLineInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.Total != 25.00 {
		t.Fatalf("expected total 25.00, got %v", order.Total)
	}
	if err := order.ValidateInvariants(); err != nil {
		t.Fatalf("order invariants violated: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected status Pendiente, got %q", order.Status)
	}
	if got := stock(t, fx.store, 1); got != 3 {
		t.Fatalf("expected stock 3 for product 1, got %d", got)
	}
	if got := stock(t, fx.store, 2); got != 0 {
		t.Fatalf("expected stock 0 for product 2, got %d", got)
	}

	// Адрес доставки подставился из профиля клиента.
	if order.ShipAddress != fx.customer.Address || order.ShipCity != fx.customer.City {
		t.Fatalf("expected profile shipping snapshot, got %q / %q", order.ShipAddress, order.ShipCity)
	}
}

func TestOrderCreate_InsufficientStockLeavesNothingBehind(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Arroz", Price: 3.50, Unit: "kg", InitialStock: 10},
		domain.NewProduct{Name: "Lentejas", Price: 4.20, Unit: "kg", InitialStock: 2},
	)
	ctx := context.Background()

	_, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines: []domain.OrderLineInput{
			{ProductID: 1, Quantity: 5},
			{ProductID: 2, Quantity: 6},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected typed InsufficientStockError, got %T", err)
	}
	if stockErr.ProductID != 2 || stockErr.Available != 2 || stockErr.Requested != 6 {
		t.Fatalf("unexpected error details: %+v", stockErr)
	}

	// Ничего не изменилось: ни заказа, ни списания по первой позиции.
	if got := stock(t, fx.store, 1); got != 10 {
		t.Fatalf("expected stock 10 for product 1, got %d", got)
	}
	if got := stock(t, fx.store, 2); got != 2 {
		t.Fatalf("expected stock 2 for product 2, got %d", got)
	}
	orders, err := fx.store.Orders().ListByCustomer(ctx, fx.customer.ID)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestOrderCreate_ConcurrentOrdersNeverOversell(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Aceite", Price: 8.00, Unit: "unidad", InitialStock: 5},
	)
	ctx := context.Background()

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
				UserID: fx.user.ID,
				Lines:  []domain.OrderLineInput{{ProductID: 1, Quantity: 3}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected exactly one winner, got succeeded=%d rejected=%d", succeeded, rejected)
	}
	if got := stock(t, fx.store, 1); got != 2 {
		t.Fatalf("expected final stock 2, got %d", got)
	}
}

func TestOrderCreate_DuplicateLinesAreMerged(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Azúcar", Price: 2.00, Unit: "kg", InitialStock: 10},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines: []domain.OrderLineInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 1, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected single merged line, got %d", len(order.Lines))
	}
	if order.Lines[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", order.Lines[0].Quantity)
	}
	if got := stock(t, fx.store, 1); got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}
}

func TestOrderCreate_ClearsCart(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Harina", Price: 1.50, Unit: "kg", InitialStock: 8},
	)
	ctx := context.Background()

	if _, err := fx.store.Carts().Add(ctx, fx.customer.ID, 1, 3); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}

	if _, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: 1, Quantity: 3}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	cart, err := fx.store.Carts().List(ctx, fx.customer.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after order, got %d items", len(cart.Items))
	}
}

func TestOrderUpdateStatus_TerminalTransitionsRejected(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Sal", Price: 1.00, Unit: "kg", InitialStock: 5},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := fx.store.Orders().UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	_, err = fx.store.Orders().UpdateStatus(ctx, order.ID, domain.OrderStatusInProcess)
	if !errors.Is(err, domain.ErrOrderTerminal) {
		t.Fatalf("expected ErrOrderTerminal, got %v", err)
	}
}

func TestOrderUpdateStatus_CompletedMaterializesSale(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Pan", Price: 0.80, Unit: "unidad", InitialStock: 20},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: 1, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := fx.store.Orders().UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	sales, err := fx.store.Sales().ListByCustomer(ctx, fx.customer.ID)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(sales))
	}
	if sales[0].Total != order.Total {
		t.Fatalf("expected sale total %v, got %v", order.Total, sales[0].Total)
	}
}

func TestPaymentProcess_CompletesOrderAndIsIdempotentPerOrder(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Queso", Price: 21.00, Unit: "unidad", InitialStock: 4},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	result, err := fx.store.Payments().Process(ctx, domain.ProcessPaymentInput{
		UserID:  fx.user.ID,
		OrderID: order.ID,
		Method:  "tarjeta",
	})
	if err != nil {
		t.Fatalf("process payment failed: %v", err)
	}
	if result.Payment.Amount != 42.00 {
		t.Fatalf("expected charged amount 42.00, got %v", result.Payment.Amount)
	}
	if result.Payment.Status != domain.PaymentStatusApproved {
		t.Fatalf("expected Aprobado, got %q", result.Payment.Status)
	}
	if result.Payment.TransactionID == "" {
		t.Fatal("expected non-empty transaction reference")
	}
	if !result.SaleCreated {
		t.Fatal("expected sale materialized on first payment")
	}

	updated, err := fx.store.Orders().Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected Completado, got %q", updated.Status)
	}

	// Повторная оплата терминального заказа отклоняется и не создаёт платёж.
	_, err = fx.store.Payments().Process(ctx, domain.ProcessPaymentInput{
		UserID:  fx.user.ID,
		OrderID: order.ID,
		Method:  "tarjeta",
	})
	if !errors.Is(err, domain.ErrOrderTerminal) {
		t.Fatalf("expected ErrOrderTerminal, got %v", err)
	}
	payments, err := fx.store.Payments().ListAll(ctx)
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected single payment, got %d", len(payments))
	}
}

func TestPaymentProcess_ForeignOrderLooksAbsent(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Leche", Price: 2.50, Unit: "litro", InitialStock: 6},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines:  []domain.OrderLineInput{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	_, err = fx.store.Payments().Process(ctx, domain.ProcessPaymentInput{
		UserID:  fx.user.ID + 100,
		OrderID: order.ID,
		Method:  "tarjeta",
	})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}
}

func TestSaleMaterialize_RoundTripAndIdempotence(t *testing.T) {
	fx := newFixture(t,
		domain.NewProduct{Name: "Chocolate", Price: 6.00, Unit: "unidad", InitialStock: 9},
		domain.NewProduct{Name: "Galletas", Price: 3.00, Unit: "paquete", InitialStock: 9},
	)
	ctx := context.Background()

	order, err := fx.store.Orders().Create(ctx, domain.CreateOrderInput{
		UserID: fx.user.ID,
		Lines: []domain.OrderLineInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	sale, created, err := fx.store.Sales().Materialize(ctx, order.ID)
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	if !created {
		t.Fatal("expected sale to be created")
	}
	if sale.Total != order.Total {
		t.Fatalf("expected sale total %v, got %v", order.Total, sale.Total)
	}
	if len(sale.Lines) != len(order.Lines) {
		t.Fatalf("expected %d sale lines, got %d", len(order.Lines), len(sale.Lines))
	}
	for i, line := range sale.Lines {
		orderLine := order.Lines[i]
		if line.ProductID != orderLine.ProductID ||
			line.Quantity != orderLine.Quantity ||
			line.UnitPrice != orderLine.UnitPrice {
			t.Fatalf("sale line %d does not match order line: %+v vs %+v", i, line, orderLine)
		}
		if line.Subtotal != float64(line.Quantity)*line.UnitPrice {
			t.Fatalf("sale line %d subtotal mismatch: %v", i, line.Subtotal)
		}
	}

	// Повторная материализация возвращает ту же продажу.
	again, created, err := fx.store.Sales().Materialize(ctx, order.ID)
	if err != nil {
		t.Fatalf("second materialize failed: %v", err)
	}
	if created {
		t.Fatal("expected created=false on second materialize")
	}
	if again.ID != sale.ID {
		t.Fatalf("expected same sale id %d, got %d", sale.ID, again.ID)
	}
}

func TestSaleMaterialize_MissingOrder(t *testing.T) {
	fx := newFixture(t)
	_, _, err := fx.store.Sales().Materialize(context.Background(), 999)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
