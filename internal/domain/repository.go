package domain

import "context"

// UserRepository описывает требования к хранилищу учётных записей.
type UserRepository interface {
	// Create сохраняет нового пользователя. Возвращает ErrEmailTaken при дубликате email.
	Create(ctx context.Context, user NewUser) (User, error)
	// GetByEmail возвращает пользователя по email или ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetByID возвращает пользователя по идентификатору или ErrUserNotFound.
	GetByID(ctx context.Context, id int64) (User, error)
}

// CustomerRepository управляет профилями клиентов.
type CustomerRepository interface {
	// GetByUserID возвращает профиль клиента пользователя или ErrCustomerProfileNotFound.
	GetByUserID(ctx context.Context, userID int64) (Customer, error)
	// Get возвращает профиль по id клиента или ErrCustomerNotFound.
	Get(ctx context.Context, customerID int64) (Customer, error)
	// Upsert создаёт профиль при первом обращении и обновляет существующий.
	Upsert(ctx context.Context, customer Customer) (Customer, error)
}

// ProductRepository управляет каталогом товаров.
type ProductRepository interface {
	// Create добавляет товар и его запись остатков. ErrProductNameTaken при дубликате имени.
	Create(ctx context.Context, product NewProduct) (Product, error)
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// List возвращает весь каталог.
	List(ctx context.Context) ([]Product, error)
	// Update перезаписывает изменяемые поля товара.
	Update(ctx context.Context, product Product) (Product, error)
	// Delete удаляет товар вместе с записью остатков.
	Delete(ctx context.Context, id int64) error
	// ListWithStock возвращает товары с текущими остатками.
	ListWithStock(ctx context.Context) ([]ProductStock, error)
}

// InventoryRepository — леджер остатков вне транзакции заказа: чтение и
// административная корректировка. Декремент под блокировкой строки живёт
// внутри OrderRepository.Create и наружу не выдаётся.
type InventoryRepository interface {
	// Get возвращает остаток товара или ErrInventoryNotFound.
	Get(ctx context.Context, productID int64) (InventoryRecord, error)
	// Adjust прибавляет delta (может быть отрицательной) к остатку.
	// ErrNegativeStock, если итог ушёл бы ниже нуля.
	Adjust(ctx context.Context, productID int64, delta int) (InventoryRecord, error)
}

// CartRepository управляет корзинами. Проверки остатков здесь совещательные:
// окончательная проверка выполняется пайплайном заказов под блокировкой.
type CartRepository interface {
	// Add добавляет товар в корзину клиента, суммируя с существующей позицией.
	Add(ctx context.Context, customerID, productID int64, quantity int) (CartItem, error)
	// List возвращает корзину клиента с подытогами.
	List(ctx context.Context, customerID int64) (Cart, error)
	// SetQuantity выставляет количество позиции; ноль удаляет её (removed=true).
	// ErrCartItemNotFound, если позиции нет, в том числе при нуле.
	SetQuantity(ctx context.Context, customerID, productID int64, quantity int) (item CartItem, removed bool, err error)
	// Remove удаляет позицию или возвращает ErrCartItemNotFound.
	Remove(ctx context.Context, customerID, productID int64) error
	// Clear опустошает корзину; пустая корзина — не ошибка. Возвращает число удалённых позиций.
	Clear(ctx context.Context, customerID int64) (int, error)
	// ListAll возвращает корзины всех клиентов (админ).
	ListAll(ctx context.Context) ([]CustomerCart, error)
	// GetByCustomer возвращает корзину конкретного клиента (админ).
	GetByCustomer(ctx context.Context, customerID int64) (CustomerCart, error)
}

// OrderRepository реализует пайплайн заказов и его чтения.
type OrderRepository interface {
	// Create выполняет весь пайплайн создания заказа в одной транзакции:
	// блокировка строк остатков в порядке позиций, фиксация цены, вставка
	// заказа и деталей, декремент остатков, очистка корзины. Любая ошибка
	// откатывает всё: ни заказа, ни деталей, ни изменения остатков.
	Create(ctx context.Context, input CreateOrderInput) (Order, error)
	// ListByCustomer возвращает заказы клиента, новые первыми.
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	// GetForCustomer возвращает заказ клиента или ErrOrderNotFound, если
	// заказа нет либо он принадлежит другому клиенту.
	GetForCustomer(ctx context.Context, orderID, customerID int64) (Order, error)
	// Get возвращает любой заказ (админ) или ErrOrderNotFound.
	Get(ctx context.Context, orderID int64) (Order, error)
	// ListAll возвращает все заказы, новые первыми (админ).
	ListAll(ctx context.Context) ([]Order, error)
	// UpdateStatus перезаписывает статус (админ). Переходы из терминальных
	// статусов запрещены (ErrOrderTerminal); переход в Completado
	// материализует продажу в той же транзакции.
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) (Order, error)
	// Delete жёстко удаляет заказ с каскадом деталей; остатки не
	// восстанавливаются — это административный обходной путь, не отмена.
	Delete(ctx context.Context, orderID int64) error
}

// PaymentRepository обрабатывает платежи и их чтения.
type PaymentRepository interface {
	// Process проводит платёж в одной транзакции: блокировка заказа,
	// проверка владельца и терминальности, вставка платежа на сумму заказа,
	// перевод заказа в Completado, материализация продажи.
	Process(ctx context.Context, input ProcessPaymentInput) (PaymentResult, error)
	// Get возвращает платёж с данными владельца или ErrPaymentNotFound.
	Get(ctx context.Context, paymentID int64) (PaymentDetail, error)
	// ListAll возвращает все платежи, новые первыми (админ).
	ListAll(ctx context.Context) ([]Payment, error)
	// UpdateStatus — админская корректировка статуса платежа. Намеренно не
	// трогает ни заказ, ни остатки (поведение исходной системы; возврат без
	// рестока зафиксирован как известный пробел).
	UpdateStatus(ctx context.Context, paymentID int64, status PaymentStatus) (Payment, error)
}

// SaleRepository — чтение продаж и явная материализация.
type SaleRepository interface {
	// Materialize создаёт продажу из завершённого заказа, если её ещё нет.
	// Повторный вызов для того же заказа возвращает существующую продажу с
	// created=false. Отсутствующий заказ — ErrOrderNotFound (вызывающая
	// сторона решает, логировать или поднимать).
	Materialize(ctx context.Context, orderID int64) (sale Sale, created bool, err error)
	// ListByCustomer возвращает продажи клиента, новые первыми.
	ListByCustomer(ctx context.Context, customerID int64) ([]Sale, error)
	// Get возвращает продажу с позициями или ErrSaleNotFound.
	Get(ctx context.Context, saleID int64) (Sale, error)
	// ListAll возвращает продажи по фильтру (админ).
	ListAll(ctx context.Context, filter SaleFilter) ([]Sale, error)
}
