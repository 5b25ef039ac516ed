package memory

import (
	"context"

	"github.com/tiendaonline/backend/internal/domain"
)

// UserRepository — реализация domain.UserRepository в памяти.
type UserRepository struct {
	store *Store
}

var _ domain.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user domain.NewUser) (domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	s.nextUserID++
	created := domain.User{
		ID:           s.nextUserID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Phone:        user.Phone,
		Role:         user.Role,
		CreatedAt:    s.now(),
	}
	s.users[created.ID] = userRecord{User: created}
	return created, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u.User, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u.User, nil
}
