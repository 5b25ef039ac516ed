// Package memory содержит хранилище в памяти с той же семантикой, что и
// PostgreSQL-реализация: один мьютекс на Store делает каждую операцию
// атомарной, включая пайплайн создания заказа.
package memory

import (
	"sync"
	"time"

	"github.com/tiendaonline/backend/internal/domain"
)

type userRecord struct {
	domain.User
}

type cartRecord struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	Quantity   int
	AddedAt    time.Time
}

type orderRecord struct {
	domain.Order
}

type saleRecord struct {
	ID         int64
	OrderID    int64
	CustomerID int64
	UserID     int64
	Date       time.Time
	Total      float64
	StateID    int64
	Lines      []domain.SaleLine
}

// Store хранит все таблицы и раздаёт репозитории поверх общего состояния.
type Store struct {
	mu sync.Mutex

	users      map[int64]userRecord
	customers  map[int64]domain.Customer
	products   map[int64]domain.Product
	inventory  map[int64]int
	cartItems  map[int64]cartRecord
	orders     map[int64]orderRecord
	payments   map[int64]domain.Payment
	sales      map[int64]saleRecord
	saleStates map[int64]string

	nextUserID     int64
	nextCustomerID int64
	nextProductID  int64
	nextCartItemID int64
	nextOrderID    int64
	nextLineID     int64
	nextPaymentID  int64
	nextSaleID     int64
	nextSaleLineID int64

	now func() time.Time
}

// NewStore создаёт пустое хранилище со справочником состояний продаж.
func NewStore() *Store {
	return &Store{
		users:     make(map[int64]userRecord),
		customers: make(map[int64]domain.Customer),
		products:  make(map[int64]domain.Product),
		inventory: make(map[int64]int),
		cartItems: make(map[int64]cartRecord),
		orders:    make(map[int64]orderRecord),
		payments:  make(map[int64]domain.Payment),
		sales:     make(map[int64]saleRecord),
		saleStates: map[int64]string{
			1: domain.SaleStatePending,
			2: domain.SaleStateCompleted,
			3: domain.SaleStateCancelled,
		},
		now: time.Now,
	}
}

// Users возвращает репозиторий пользователей.
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// Customers возвращает репозиторий клиентских профилей.
func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{store: s} }

// Products возвращает репозиторий каталога.
func (s *Store) Products() *ProductRepository { return &ProductRepository{store: s} }

// Inventory возвращает репозиторий остатков.
func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{store: s} }

// Carts возвращает репозиторий корзин.
func (s *Store) Carts() *CartRepository { return &CartRepository{store: s} }

// Orders возвращает репозиторий заказов.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{store: s} }

// Payments возвращает репозиторий платежей.
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{store: s} }

// Sales возвращает репозиторий продаж.
func (s *Store) Sales() *SaleRepository { return &SaleRepository{store: s} }

func (s *Store) saleStateID(name string) (int64, bool) {
	for id, stateName := range s.saleStates {
		if stateName == name {
			return id, true
		}
	}
	return 0, false
}

func (s *Store) customerByUserID(userID int64) (domain.Customer, bool) {
	for _, c := range s.customers {
		if c.UserID == userID {
			return c, true
		}
	}
	return domain.Customer{}, false
}

func (s *Store) cartItemFor(customerID, productID int64) (cartRecord, bool) {
	for _, item := range s.cartItems {
		if item.CustomerID == customerID && item.ProductID == productID {
			return item, true
		}
	}
	return cartRecord{}, false
}
