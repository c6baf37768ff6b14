package auth

import "github.com/gofiber/fiber/v2"

// Require returns a handler that admits requests whose verdict meets level.
func (m *Middleware) Require(level Level) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := m.verdict(c).Authorize(level); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated admits any caller with a valid credential.
func (m *Middleware) RequireAuthenticated(c *fiber.Ctx) error {
	return m.Require(LevelAuthenticated)(c)
}

// RequireAdmin admits only callers whose credential carries the admin role.
func (m *Middleware) RequireAdmin(c *fiber.Ctx) error {
	return m.Require(LevelAdmin)(c)
}
