package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionIDKey = "session_id"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Session makes sure every request carries a session id. The id is an opaque
// UUID kept in a cookie; a missing or malformed cookie gets a new id.
func Session(cfg SessionConfig) fiber.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "organica.sid"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 4 * time.Hour
	}

	return func(c *fiber.Ctx) error {
		id := c.Cookies(cfg.CookieName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		// Refresh on every request so an active shopper keeps the session.
		c.Cookie(&fiber.Cookie{
			Name:     cfg.CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cfg.MaxAge.Seconds()),
			HTTPOnly: true,
			Secure:   cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(sessionIDKey, id)
		return c.Next()
	}
}

// SessionID returns the id set by Session.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionIDKey).(string)
	return id
}
