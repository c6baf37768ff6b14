package repository

import (
	"context"

	"github.com/spec-kit/cms-admin/internal/domain"
)

// UserRepository defines persistence access for CMS accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, opts ListOptions) ([]*domain.User, int, error)
}

type userRepository struct {
	users Store[domain.User]
}

// NewUserRepository wraps the users collection.
func NewUserRepository(users Store[domain.User]) UserRepository {
	return &userRepository{users: users}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.users.Insert(ctx, user)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.users.Update(ctx, user)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.users.Delete(ctx, id)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users.Get(ctx, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.users.FindOne(ctx, Filter{"username": username})
}

func (r *userRepository) List(ctx context.Context, opts ListOptions) ([]*domain.User, int, error) {
	users, err := r.users.Find(ctx, nil, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.users.Count(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
