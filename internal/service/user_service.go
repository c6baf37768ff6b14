package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// UserService manages CMS accounts. Returned users never carry the stored
// password value.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// NewUserInput carries the fields for a new account.
type NewUserInput struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
	Role        domain.Role
}

// UserPatch carries optional account changes.
type UserPatch struct {
	Email       *string
	DisplayName *string
	Role        *domain.Role
	Password    *string
}

// List returns one page of accounts.
func (s *UserService) List(ctx context.Context, page Pagination) (ListResult[domain.User], error) {
	page = page.Normalize()
	users, total, err := s.users.List(ctx, page.ListOptions())
	if err != nil {
		return ListResult[domain.User]{}, apperrors.NewInternalError(err)
	}
	items := make([]*domain.User, 0, len(users))
	for _, u := range users {
		clean := u.Sanitized()
		items = append(items, &clean)
	}
	return ListResult[domain.User]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// Get returns a single account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserLookup(err, id)
	}
	clean := user.Sanitized()
	return &clean, nil
}

// Create stores a new account with a scrypt password.
func (s *UserService) Create(ctx context.Context, in NewUserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, apperrors.NewValidationError("username is required", map[string]any{"field": "username"})
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": MinPasswordLength})
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": in.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		DisplayName:    in.DisplayName,
		Password:       hash,
		PasswordScheme: domain.PasswordSchemeScrypt,
		Role:           domain.ParseRole(string(in.Role)),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": in.Username})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	clean := user.Sanitized()
	return &clean, nil
}

// Update applies patch to the account.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserLookup(err, id)
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.DisplayName != nil {
		user.DisplayName = *patch.DisplayName
	}
	if patch.Role != nil {
		user.Role = domain.ParseRole(string(*patch.Role))
	}
	if patch.Password != nil {
		if len(*patch.Password) < MinPasswordLength {
			return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": MinPasswordLength})
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.Password = hash
		user.PasswordScheme = domain.PasswordSchemeScrypt
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserLookup(err, id)
	}
	clean := user.Sanitized()
	return &clean, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if actor.ID == id {
		return apperrors.NewConflict("cannot delete the signed-in account", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return mapUserLookup(err, id)
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// EnsureAdmin creates an admin account or promotes and resets an existing one.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.Create(ctx, NewUserInput{Username: username, Password: password, Role: domain.RoleAdmin})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	role := domain.RoleAdmin
	return s.Update(ctx, existing.ID, UserPatch{Role: &role, Password: &password})
}

func mapUserLookup(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}
