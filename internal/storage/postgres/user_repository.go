package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tiendaonline/backend/internal/domain"
)

// UserRepository — PostgreSQL-реализация domain.UserRepository.
// Роль хранится через справочник roles и всегда возвращается по имени.
type UserRepository struct {
	store *Store
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

const userSelectColumns = `
	u.id_usuario, u.nombre, u.usuario, u.contrasena, u.telefono, r.nombre_rol, u.creado_en
`

func (r *UserRepository) Create(ctx context.Context, user domain.NewUser) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var created domain.User
	err := r.store.withinTx(ctx, func(tx *sql.Tx) error {
		var roleID int64
		err := tx.QueryRowContext(ctx, `
			SELECT id_rol FROM roles WHERE nombre_rol = $1
		`, user.Role).Scan(&roleID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: rol desconocido %q", domain.ErrValidation, user.Role)
		}
		if err != nil {
			return fmt.Errorf("resolve role %q: %w", user.Role, err)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO usuarios (nombre, usuario, contrasena, telefono, id_rol)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id_usuario, creado_en
		`, user.Name, user.Email, user.PasswordHash, user.Phone, roleID).
			Scan(&created.ID, &created.CreatedAt)
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		created.Name = user.Name
		created.Email = user.Email
		created.PasswordHash = user.PasswordHash
		created.Phone = user.Phone
		created.Role = user.Role
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		SELECT `+userSelectColumns+`
		FROM usuarios u
		JOIN roles r ON r.id_rol = u.id_rol
		WHERE u.usuario = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		SELECT `+userSelectColumns+`
		FROM usuarios u
		JOIN roles r ON r.id_rol = u.id_rol
		WHERE u.id_usuario = $1
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
