package domain

// Customer — профиль клиента, привязанный 1:1 к пользователю. Адресные поля
// служат источником snapshot-а доставки при создании заказа.
type Customer struct {
	ID      int64  `json:"id_cliente"`
	UserID  int64  `json:"id_usuario"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	City    string `json:"ciudad"`
	Phone   string `json:"telefono"`
}
