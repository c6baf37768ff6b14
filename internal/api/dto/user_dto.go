package dto

import (
	"time"

	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/service"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=1024"`
}

// ChangePasswordRequest payload for changing the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	Role        domain.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewUserResponse maps an account, dropping the stored password value.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        domain.ParseRole(string(u.Role)),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// LoginResponse is returned by a successful login. The credential itself
// travels only in the cookie.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// CreateUserRequest payload for new accounts.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,max=128"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"display_name" validate:"max=200"`
	Role        string `json:"role" validate:"omitempty,oneof=admin user"`
}

// Input converts the request for the user service.
func (r CreateUserRequest) Input() service.NewUserInput {
	return service.NewUserInput{
		Username:    r.Username,
		Password:    r.Password,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        domain.Role(r.Role),
	}
}

// UpdateUserRequest carries optional account changes.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=200"`
	Role        *string `json:"role" validate:"omitempty,oneof=admin user"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=1024"`
}

// Patch converts the request for the user service.
func (r UpdateUserRequest) Patch() service.UserPatch {
	patch := service.UserPatch{
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Password:    r.Password,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}
