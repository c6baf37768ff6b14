package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/api/dto"
	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/service"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// AuthHandler exposes login, logout and identity endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies auth.CookieSettings
	now     func() time.Time
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies auth.CookieSettings) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies, now: time.Now}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}

	user, session, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(h.cookies.Session(session.Token, session.ExpiresAt, h.now()))
	return data(c, http.StatusOK, dto.LoginResponse{
		User:      dto.NewUserResponse(user),
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(h.cookies.Cleared())
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return data(c, http.StatusOK, identity)
}

// ChangePassword handles POST /api/auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
