package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/domain"
)

const verdictKey = "auth_verdict"

// Middleware evaluates request credentials and enforces access levels.
type Middleware struct {
	guard   *Guard
	cookies CookieSettings
}

// NewMiddleware constructs middleware.
func NewMiddleware(guard *Guard, cookies CookieSettings) *Middleware {
	return &Middleware{guard: guard, cookies: cookies}
}

// Authenticate records the verdict for the request without rejecting it, so
// public routes can still vary their output for signed-in callers.
func (m *Middleware) Authenticate(c *fiber.Ctx) error {
	m.verdict(c)
	return c.Next()
}

func (m *Middleware) verdict(c *fiber.Ctx) Verdict {
	if v, ok := c.Locals(verdictKey).(Verdict); ok {
		return v
	}
	v := m.guard.Evaluate(c.UserContext(), c.Cookies(m.cookies.CookieName()), c.Get(fiber.HeaderAuthorization))
	c.Locals(verdictKey, v)
	return v
}

// VerdictFromContext returns the verdict stored by the middleware.
func VerdictFromContext(c *fiber.Ctx) Verdict {
	if v, ok := c.Locals(verdictKey).(Verdict); ok {
		return v
	}
	return Verdict{Kind: VerdictUnauthenticated, Reason: ErrNoCredential}
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	v := VerdictFromContext(c)
	if !v.Authenticated() {
		return domain.Identity{}, false
	}
	return v.Identity, true
}
