package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation — общий маркер ошибок валидации входных данных (HTTP 400).
	ErrValidation = errors.New("validation failed")
	// ErrForbidden — аутентифицированный пользователь не имеет прав на ресурс (HTTP 403).
	ErrForbidden = errors.New("access forbidden")
	// ErrEmailTaken — пользователь с таким email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrCredentialsInvalid — неверная пара email/пароль при входе.
	ErrCredentialsInvalid = errors.New("invalid credentials")
	// ErrCustomerProfileNotFound — у пользователя нет профиля клиента; пайплайн заказов требует профиль.
	ErrCustomerProfileNotFound = errors.New("customer profile not found")
	// ErrCustomerNotFound — клиент с указанным идентификатором не существует.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound — товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductNameTaken — товар с таким названием уже есть.
	ErrProductNameTaken = errors.New("product name already taken")
	// ErrInventoryNotFound — у товара нет записи в леджере остатков.
	ErrInventoryNotFound = errors.New("inventory record not found")
	// ErrInsufficientStock — запрошенное количество превышает доступный остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNegativeStock — операция привела бы к отрицательному остатку.
	ErrNegativeStock = errors.New("stock cannot go negative")
	// ErrCartItemNotFound — позиция отсутствует в корзине клиента.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrOrderNotFound — заказ не найден или не принадлежит клиенту.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderTerminal — заказ в терминальном статусе, операция недопустима.
	ErrOrderTerminal = errors.New("order is in terminal state")
	// ErrPaymentNotFound — платёж не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrSaleNotFound — продажа не найдена.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrSaleStateMissing — в справочнике estados_venta нет требуемого состояния (ошибка конфигурации).
	ErrSaleStateMissing = errors.New("sale state missing from reference table")
)

// InsufficientStockError уточняет ErrInsufficientStock данными для сообщения
// клиенту: какой товар, сколько доступно и сколько запрошено.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): available %d, requested %d",
		e.ProductID, e.ProductName, e.Available, e.Requested)
}

// Is поддерживает проверку errors.Is(err, ErrInsufficientStock) для типизированной ошибки.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
