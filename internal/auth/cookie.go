package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName carries the credential between browser and API.
const DefaultCookieName = "auth-token"

// CookieSettings describes how the session cookie is written.
type CookieSettings struct {
	Name   string
	Secure bool
}

// CookieName returns the configured name or the default.
func (s CookieSettings) CookieName() string {
	if s.Name == "" {
		return DefaultCookieName
	}
	return s.Name
}

// Session builds the cookie that carries token until expiresAt.
func (s CookieSettings) Session(token string, expiresAt time.Time, now time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.CookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(expiresAt.Sub(now).Seconds()),
		Expires:  expiresAt,
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// Cleared builds a cookie that removes the session from the browser.
func (s CookieSettings) Cleared() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
