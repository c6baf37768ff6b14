package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/repository"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// MinPasswordLength applies to passwords set through the API.
const MinPasswordLength = 8

// AuthService coordinates login and credential lifecycle flows.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	passwords *auth.PasswordVerifier
	denylist  *auth.Denylist
	logger    *zap.Logger
	now       func() time.Time

	decoyOnce sync.Once
	decoy     string
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Users     repository.UserRepository
	Tokens    *auth.TokenManager
	Passwords *auth.PasswordVerifier
	// Denylist is nil when session revocation is disabled.
	Denylist *auth.Denylist
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     deps.Users,
		tokens:    deps.Tokens,
		passwords: deps.Passwords,
		denylist:  deps.Denylist,
		logger:    logger,
		now:       time.Now,
	}
}

// Login verifies username and password and mints a credential. Unknown users
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.Session{}, apperrors.NewValidationError("username and password required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.burnDecoy(password)
			s.logger.Info("login rejected", zap.String("reason", "unknown user"))
			return nil, domain.Session{}, apperrors.NewInvalidCredentials()
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}

	ok, err := s.passwords.Verify(user, password)
	if err != nil {
		s.logger.Warn("stored password value unusable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, domain.Session{}, apperrors.NewInvalidCredentials()
	}
	if !ok {
		s.logger.Info("login rejected", zap.String("reason", "password mismatch"), zap.String("user_id", user.ID))
		return nil, domain.Session{}, apperrors.NewInvalidCredentials()
	}

	session, err := s.tokens.Issue(domain.Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     domain.ParseRole(string(user.Role)),
	})
	if err != nil {
		s.logger.Error("issue credential failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}

	clean := user.Sanitized()
	return &clean, session, nil
}

// burnDecoy runs the key derivation for unknown usernames so that response
// time does not reveal whether the account exists.
func (s *AuthService) burnDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := auth.HashPassword("decoy-password")
		if err != nil {
			s.logger.Warn("decoy hash unavailable", zap.Error(err))
			return
		}
		s.decoy = hash
	})
	if s.decoy == "" {
		return
	}
	_, _ = s.passwords.Verify(&domain.User{Password: s.decoy, PasswordScheme: domain.PasswordSchemeScrypt}, password)
}

// ChangePassword verifies the current password and stores a fresh scrypt value.
// Accounts on the legacy scheme are migrated by this call.
func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewValidationError("new password too short", map[string]any{"min_length": MinPasswordLength})
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account no longer exists")
		}
		return apperrors.NewInternalError(err)
	}

	ok, err := s.passwords.Verify(user, currentPassword)
	if err != nil || !ok {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	previous := auth.SchemeOf(user)
	user.Password = hash
	user.PasswordScheme = domain.PasswordSchemeScrypt
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	if previous == domain.PasswordSchemeLegacy {
		s.logger.Info("account migrated off legacy password scheme", zap.String("user_id", user.ID))
	}
	return nil
}

// RevocationEnabled reports whether sessions can be revoked before expiry.
func (s *AuthService) RevocationEnabled() bool {
	return s.denylist != nil
}

// RevokeSessions voids every credential issued to userID so far.
func (s *AuthService) RevokeSessions(ctx context.Context, userID string) error {
	if s.denylist == nil {
		return apperrors.NewConflict("session revocation disabled", nil)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return apperrors.NewInternalError(err)
	}
	if err := s.denylist.Revoke(ctx, userID, s.now()); err != nil {
		s.logger.Error("revoke sessions failed", zap.String("user_id", userID), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("sessions revoked", zap.String("user_id", userID))
	return nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
