package domain

import "time"

// Справочник estados_venta заполняется миграцией; имена состояний стабильны.
const (
	SaleStatePending   = "Pendiente"
	SaleStateCompleted = "Completado"
	SaleStateCancelled = "Cancelado"
)

// SaleLine — позиция продажи. Subtotal — произведение количества на цену,
// посчитанное при материализации.
type SaleLine struct {
	ID          int64   `json:"id_detalle_venta"`
	SaleID      int64   `json:"-"`
	ProductID   int64   `json:"id_producto"`
	ProductName string  `json:"nombre_producto"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario"`
	Subtotal    float64 `json:"subtotal"`
}

// Sale — неизменяемый snapshot завершённого заказа для отчётности.
// Создаётся ровно один раз на заказ; исходный заказ продолжает жить своим
// жизненным циклом независимо.
type Sale struct {
	ID            int64      `json:"id_venta"`
	OrderID       int64      `json:"id_pedido"`
	CustomerID    int64      `json:"id_cliente"`
	UserID        int64      `json:"id_usuario"`
	Date          time.Time  `json:"fecha"`
	Total         float64    `json:"total"`
	StateID       int64      `json:"id_estado_venta"`
	StateName     string     `json:"estado_venta"`
	CustomerName  string     `json:"nombre_cliente"`
	CustomerEmail string     `json:"email_cliente"`
	Lines         []SaleLine `json:"detalles_productos"`
}

// SaleFilter — фильтры админской выборки продаж. Нулевые значения означают
// отсутствие фильтра.
type SaleFilter struct {
	CustomerID int64
	StateID    int64
	DateFrom   time.Time
	DateTo     time.Time
}
