package domain

import "time"

// CartItem — позиция корзины, обогащённая данными товара для отображения.
// Поля Price/Stock отражают актуальный каталог на момент чтения, а не snapshot:
// обязательная проверка остатка выполняется пайплайном заказов под блокировкой.
type CartItem struct {
	ID          int64     `json:"id_item_carrito"`
	CustomerID  int64     `json:"id_cliente"`
	ProductID   int64     `json:"id_producto"`
	Quantity    int       `json:"cantidad"`
	AddedAt     time.Time `json:"fecha_agregado"`
	ProductName string    `json:"nombre_producto"`
	Price       float64   `json:"precio_unitario"`
	Stock       int       `json:"stock_disponible"`
}

// Subtotal возвращает стоимость позиции по текущей цене каталога.
func (i CartItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Cart — содержимое корзины клиента с посчитанным итогом.
type Cart struct {
	CustomerID int64      `json:"id_cliente"`
	Items      []CartItem `json:"items"`
	Total      float64    `json:"total_carrito"`
}

// CustomerCart — корзина клиента в админском списке, с данными владельца.
type CustomerCart struct {
	CustomerID    int64      `json:"id_cliente"`
	CustomerName  string     `json:"nombre_cliente"`
	CustomerEmail string     `json:"email_cliente"`
	Items         []CartItem `json:"items"`
	Total         float64    `json:"total_carrito"`
}
