package domain

// Product — позиция каталога. Цена фиксируется в заказе на момент оформления,
// поэтому изменение Price не влияет на уже созданные заказы.
type Product struct {
	ID          int64   `json:"id_producto"`
	Name        string  `json:"nombre_producto"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
	Unit        string  `json:"unidad_medida"`
}

// NewProduct — данные создания товара. InitialStock задаёт стартовую запись
// в леджере остатков.
type NewProduct struct {
	Name         string
	Description  string
	Price        float64
	Unit         string
	InitialStock int
}

// ProductStock — товар вместе с текущим остатком (для витрины и админки).
type ProductStock struct {
	ProductID int64  `json:"id_producto"`
	Name      string `json:"nombre_producto"`
	Stock     int    `json:"stock"`
}
