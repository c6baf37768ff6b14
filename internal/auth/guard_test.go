package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cms-admin/internal/domain"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

func issue(t *testing.T, tm *TokenManager, identity domain.Identity) string {
	t.Helper()
	session, err := tm.Issue(identity)
	require.NoError(t, err)
	return session.Token
}

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestGuard_AdminScenario(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	guard := NewGuard(tm, nil, nil)
	token := issue(t, tm, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})

	v := guard.Evaluate(context.Background(), token, "")
	require.Equal(t, VerdictAdmin, v.Kind)
	assert.Equal(t, "alice", v.Identity.Username)
	assert.Equal(t, domain.RoleAdmin, v.Identity.Role)
	assert.NoError(t, v.Authorize(LevelAdmin))
	assert.NoError(t, v.Authorize(LevelAuthenticated))
}

func TestGuard_NonAdminIsForbiddenForAdminLevel(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	guard := NewGuard(tm, nil, nil)
	token := issue(t, tm, domain.Identity{ID: "u-2", Username: "bob", Role: domain.RoleUser})

	v := guard.Evaluate(context.Background(), "", "Bearer "+token)
	require.Equal(t, VerdictAuthenticated, v.Kind)
	assert.NoError(t, v.Authorize(LevelAuthenticated))
	assert.Equal(t, http.StatusForbidden, statusOf(v.Authorize(LevelAdmin)))
}

func TestGuard_NoCredential(t *testing.T) {
	guard := NewGuard(NewTokenManager("secret", 0), nil, nil)

	v := guard.Evaluate(context.Background(), "", "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
	assert.ErrorIs(t, v.Reason, ErrNoCredential)
	assert.Equal(t, http.StatusUnauthorized, statusOf(v.Authorize(LevelAuthenticated)))
	assert.Equal(t, http.StatusUnauthorized, statusOf(v.Authorize(LevelAdmin)))
}

func TestGuard_CookiePreferredOverHeader(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	guard := NewGuard(tm, nil, nil)
	cookieToken := issue(t, tm, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})
	headerToken := issue(t, tm, domain.Identity{ID: "u-2", Username: "bob", Role: domain.RoleUser})

	v := guard.Evaluate(context.Background(), cookieToken, "Bearer "+headerToken)
	assert.Equal(t, "alice", v.Identity.Username)
}

func TestGuard_MalformedHeader(t *testing.T) {
	guard := NewGuard(NewTokenManager("secret", 0), nil, nil)

	for _, header := range []string{"Basic abc", "Bearer", "Bearer    ", "token"} {
		v := guard.Evaluate(context.Background(), "", header)
		assert.Equal(t, VerdictUnauthenticated, v.Kind, header)
		assert.ErrorIs(t, v.Reason, ErrMalformedCredential, header)
	}
}

func TestGuard_TamperedSignature(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	guard := NewGuard(tm, nil, nil)
	token := issue(t, tm, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})

	lastDot := len(token) - 1
	for token[lastDot] != '.' {
		lastDot--
	}
	mid := lastDot + (len(token)-lastDot)/2
	replacement := byte('A')
	if token[mid] == 'A' {
		replacement = 'B'
	}
	tampered := token[:mid] + string(replacement) + token[mid+1:]

	v := guard.Evaluate(context.Background(), tampered, "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
	assert.ErrorIs(t, v.Reason, ErrInvalidSignature)
}

func TestGuard_ExpiredCredential(t *testing.T) {
	tm := NewTokenManager("secret", 0).WithClock(fixedClock(issuedAt))
	token := issue(t, tm, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})

	guard := NewGuard(tm.WithClock(fixedClock(issuedAt.Add(8*24*time.Hour))), nil, nil)
	v := guard.Evaluate(context.Background(), token, "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
	assert.ErrorIs(t, v.Reason, ErrExpiredCredential)
}

func TestGuard_ForeignSecret(t *testing.T) {
	token := issue(t, NewTokenManager("other", 0), domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})
	guard := NewGuard(NewTokenManager("secret", 0), nil, nil)

	v := guard.Evaluate(context.Background(), token, "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
}

func TestGuard_UnknownRoleIsUnprivileged(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	token := issue(t, tm, domain.Identity{ID: "u-3", Username: "carol", Role: domain.Role("superadmin")})

	v := NewGuard(tm, nil, nil).Evaluate(context.Background(), token, "")
	assert.Equal(t, VerdictAuthenticated, v.Kind)
	assert.Equal(t, domain.RoleUser, v.Identity.Role)
}

func TestGuard_Revocation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	denylist := NewDenylist(client, DefaultTokenTTL)
	ctx := context.Background()

	tm := NewTokenManager("secret", 0).WithClock(fixedClock(issuedAt))
	guard := NewGuard(tm, denylist, nil)
	token := issue(t, tm, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})

	require.Equal(t, VerdictAdmin, guard.Evaluate(ctx, token, "").Kind)

	require.NoError(t, denylist.Revoke(ctx, "u-1", issuedAt.Add(time.Minute)))
	v := guard.Evaluate(ctx, token, "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
	assert.ErrorIs(t, v.Reason, ErrRevokedCredential)

	fresh := tm.WithClock(fixedClock(issuedAt.Add(time.Hour)))
	newToken := issue(t, fresh, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})
	assert.Equal(t, VerdictAdmin, NewGuard(fresh, denylist, nil).Evaluate(ctx, newToken, "").Kind)

	other := issue(t, tm, domain.Identity{ID: "u-2", Username: "bob", Role: domain.RoleUser})
	assert.Equal(t, VerdictAuthenticated, guard.Evaluate(ctx, other, "").Kind)
}

func TestGuard_LoginAfterRevocationInSameSecond(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	denylist := NewDenylist(client, DefaultTokenTTL)
	ctx := context.Background()
	alice := domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin}

	early := NewTokenManager("secret", 0).WithClock(fixedClock(issuedAt.Add(50 * time.Millisecond)))
	stale := issue(t, early, alice)

	require.NoError(t, denylist.Revoke(ctx, "u-1", issuedAt.Add(100*time.Millisecond)))

	late := early.WithClock(fixedClock(issuedAt.Add(900 * time.Millisecond)))
	fresh := issue(t, late, alice)
	guard := NewGuard(late, denylist, nil)

	v := guard.Evaluate(ctx, fresh, "")
	assert.Equal(t, VerdictAdmin, v.Kind)
	assert.NoError(t, v.Reason)

	v = guard.Evaluate(ctx, stale, "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
	assert.ErrorIs(t, v.Reason, ErrRevokedCredential)
}

type failingRevocations struct{}

func (failingRevocations) InvalidatedBefore(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("connection refused")
}

func TestGuard_RevocationFailureFailsClosed(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	token := issue(t, tm, domain.Identity{ID: "u-1", Username: "alice", Role: domain.RoleAdmin})

	v := NewGuard(tm, failingRevocations{}, nil).Evaluate(context.Background(), token, "")
	assert.Equal(t, VerdictUnauthenticated, v.Kind)
	assert.ErrorIs(t, v.Reason, ErrRevocationUnavailable)
}
