package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/cms-admin/internal/domain"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// Reasons a request ends up unauthenticated. They are logged, never returned to clients.
var (
	ErrNoCredential          = errors.New("no credential presented")
	ErrMalformedCredential   = errors.New("malformed credential")
	ErrInvalidSignature      = errors.New("credential signature invalid")
	ErrExpiredCredential     = errors.New("credential expired")
	ErrInvalidCredential     = errors.New("credential rejected")
	ErrRevokedCredential     = errors.New("credential revoked")
	ErrRevocationUnavailable = errors.New("revocation list unavailable")
)

// VerdictKind classifies a request.
type VerdictKind int

const (
	VerdictUnauthenticated VerdictKind = iota
	VerdictAuthenticated
	VerdictAdmin
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictAuthenticated:
		return "authenticated"
	case VerdictAdmin:
		return "admin"
	default:
		return "unauthenticated"
	}
}

// Verdict is the guard's decision for one request.
type Verdict struct {
	Kind     VerdictKind
	Identity domain.Identity
	IssuedAt time.Time
	Reason   error
}

// Authenticated reports whether any valid credential was presented.
func (v Verdict) Authenticated() bool {
	return v.Kind == VerdictAuthenticated || v.Kind == VerdictAdmin
}

// Level is the privilege a route requires.
type Level int

const (
	LevelAuthenticated Level = iota
	LevelAdmin
)

// Authorize maps the verdict onto the required level: 401 when the caller is
// unknown, 403 when the caller is known but lacks the role.
func (v Verdict) Authorize(level Level) error {
	if !v.Authenticated() {
		return apperrors.NewUnauthorized("authentication required")
	}
	switch level {
	case LevelAuthenticated:
		return nil
	case LevelAdmin:
		if v.Kind != VerdictAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return nil
	default:
		return apperrors.NewForbidden("unknown access level")
	}
}

// RevocationChecker reports the time before which a subject's credentials are void.
type RevocationChecker interface {
	InvalidatedBefore(ctx context.Context, subjectID string) (time.Time, bool, error)
}

// Guard verifies credentials presented with a request.
type Guard struct {
	tokens      *TokenManager
	revocations RevocationChecker
	logger      *zap.Logger
}

// NewGuard builds a guard. revocations may be nil, in which case verification
// is a pure function of the token and the secret.
func NewGuard(tokens *TokenManager, revocations RevocationChecker, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, revocations: revocations, logger: logger}
}

// ExtractToken prefers the cookie value and falls back to a bearer header.
func ExtractToken(cookieToken, authHeader string) (string, error) {
	if cookieToken != "" {
		return cookieToken, nil
	}
	if authHeader == "" {
		return "", ErrNoCredential
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedCredential
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedCredential
	}
	return token, nil
}

// Evaluate classifies the request credentials.
func (g *Guard) Evaluate(ctx context.Context, cookieToken, authHeader string) Verdict {
	token, err := ExtractToken(cookieToken, authHeader)
	if err != nil {
		return g.reject(err)
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return g.reject(classifyParseError(err))
	}

	identity := claims.Identity()
	issuedAt := claims.IssuedInstant()

	if g.revocations != nil {
		before, found, err := g.revocations.InvalidatedBefore(ctx, identity.ID)
		if err != nil {
			g.logger.Error("revocation lookup failed", zap.String("user_id", identity.ID), zap.Error(err))
			return g.reject(ErrRevocationUnavailable)
		}
		if found && !issuedAt.After(before) {
			return g.reject(ErrRevokedCredential)
		}
	}

	kind := VerdictAuthenticated
	if identity.IsAdmin() {
		kind = VerdictAdmin
	}
	return Verdict{Kind: kind, Identity: identity, IssuedAt: issuedAt}
}

func (g *Guard) reject(reason error) Verdict {
	if !errors.Is(reason, ErrNoCredential) {
		g.logger.Debug("credential rejected", zap.Error(reason))
	}
	return Verdict{Kind: VerdictUnauthenticated, Reason: reason}
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredCredential
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedCredential
	default:
		return errors.Join(ErrInvalidCredential, err)
	}
}
