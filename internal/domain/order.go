package domain

import (
	"fmt"
	"math"
	"time"
)

// OrderStatus описывает жизненный цикл заказа. Значения хранятся как есть
// в колонке pedidos.estado_pedido.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не выполнена.
	OrderStatusPending OrderStatus = "Pendiente"
	// OrderStatusInProcess — заказ в обработке.
	OrderStatusInProcess OrderStatus = "En proceso"
	// OrderStatusCompleted — заказ оплачен и финализирован; терминальный статус.
	OrderStatusCompleted OrderStatus = "Completado"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "Cancelado"
)

// ParseOrderStatus проверяет, что строка — один из четырёх допустимых статусов.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusInProcess, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: estado de pedido desconocido %q", ErrValidation, s)
}

// IsTerminal сообщает, допускает ли статус дальнейшие переходы.
// Из Completado и Cancelado выхода нет.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderLine — позиция заказа с ценой, зафиксированной на момент оформления.
type OrderLine struct {
	ID          int64   `json:"id_detalle_pedido"`
	OrderID     int64   `json:"-"`
	ProductID   int64   `json:"id_producto"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario"`
	ProductName string  `json:"nombre_producto"`
}

// Order агрегирует заказ и его позиции. Адресные поля — snapshot на момент
// создания, после него они не меняются.
type Order struct {
	ID           int64       `json:"id_pedido"`
	CustomerID   int64       `json:"id_cliente"`
	UserID       int64       `json:"id_usuario"`
	CreatedAt    time.Time   `json:"fecha_pedido"`
	Status       OrderStatus `json:"estado_pedido"`
	Total        float64     `json:"total_pedido"`
	ShipAddress  string      `json:"direccion_envio"`
	ShipCity     string      `json:"ciudad_envio"`
	ContactPhone string      `json:"telefono_contacto"`
	Lines        []OrderLine `json:"detalles"`
}

// ValidateInvariants сверяет сумму заказа с суммой позиций: qty * price.
func (o *Order) ValidateInvariants() error {
	var calc float64
	for _, line := range o.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad inválida para el producto %d", ErrValidation, line.ProductID)
		}
		if line.UnitPrice < 0 {
			return fmt.Errorf("%w: precio negativo para el producto %d", ErrValidation, line.ProductID)
		}
		calc += float64(line.Quantity) * line.UnitPrice
	}
	if math.Abs(calc-o.Total) > 1e-9 {
		return fmt.Errorf("%w: el total del pedido no coincide con sus detalles", ErrValidation)
	}
	return nil
}

// OrderLineInput — запрошенная позиция при создании заказа.
type OrderLineInput struct {
	ProductID int64 `json:"id_producto"`
	Quantity  int   `json:"cantidad"`
}

// CreateOrderInput — запрос на создание заказа. Адресные поля опциональны:
// пустые значения заменяются данными профиля клиента.
type CreateOrderInput struct {
	UserID       int64
	Lines        []OrderLineInput
	ShipAddress  string
	ShipCity     string
	ContactPhone string
}

// Validate проверяет позиции до открытия транзакции: список непуст, каждый
// идентификатор и количество положительны. Ошибка называет виновный товар.
func (in CreateOrderInput) Validate() error {
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: la lista de productos es requerida", ErrValidation)
	}
	for _, line := range in.Lines {
		if line.ProductID <= 0 {
			return fmt.Errorf("%w: ID de producto inválido en la lista de productos", ErrValidation)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad inválida para el producto %d", ErrValidation, line.ProductID)
		}
	}
	return nil
}
