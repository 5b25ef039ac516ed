package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// CustomerRepository — PostgreSQL-реализация domain.CustomerRepository.
type CustomerRepository struct {
	store *Store
}

var _ domain.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository создаёт репозиторий клиентских профилей.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		SELECT id_cliente, id_usuario, nombre, direccion, ciudad, telefono
		FROM clientes
		WHERE id_usuario = $1
	`, userID)
	c, err := scanCustomer(row)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return domain.Customer{}, domain.ErrCustomerProfileNotFound
	}
	return c, err
}

func (r *CustomerRepository) Get(ctx context.Context, customerID int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		SELECT id_cliente, id_usuario, nombre, direccion, ciudad, telefono
		FROM clientes
		WHERE id_cliente = $1
	`, customerID)
	return scanCustomer(row)
}

// Upsert опирается на UNIQUE (id_usuario): профиль клиента существует в одном
// экземпляре на пользователя, повторный вызов обновляет адресные поля.
func (r *CustomerRepository) Upsert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		INSERT INTO clientes (id_usuario, nombre, direccion, ciudad, telefono)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id_usuario) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			direccion = EXCLUDED.direccion,
			ciudad = EXCLUDED.ciudad,
			telefono = EXCLUDED.telefono
		RETURNING id_cliente, id_usuario, nombre, direccion, ciudad, telefono
	`, customer.UserID, customer.Name, customer.Address, customer.City, customer.Phone)

	saved, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("upsert customer: %w", err)
	}
	return saved, nil
}

func scanCustomer(row *sql.Row) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Address, &c.City, &c.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}
