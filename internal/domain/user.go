package domain

import "time"

// Роли пользователей. Совпадают со справочником roles в БД.
const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Empleado"
	RoleCustomer = "Cliente"
)

// User — учётная запись для аутентификации. Поле Email хранится в колонке
// usuarios.usuario (историческое имя из исходной схемы).
type User struct {
	ID           int64     `json:"id_usuario"`
	Name         string    `json:"nombre"`
	Email        string    `json:"usuario"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"telefono"`
	Role         string    `json:"rol"`
	CreatedAt    time.Time `json:"-"`
}

// NewUser — данные регистрации нового пользователя.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         string
}

// IsAdmin сообщает, обладает ли пользователь правами администратора.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanManageStock — корректировать остатки могут администраторы и сотрудники.
func (u User) CanManageStock() bool {
	return u.Role == RoleAdmin || u.Role == RoleEmployee
}
