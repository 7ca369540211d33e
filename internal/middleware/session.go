package middleware

import (
	"errors"
	"time"

	"jurnal/internal/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const userIDLocal = "user_id"

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Set writes token into the session cookie.
func (sc SessionCookie) Set(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sc.TTL),
		HTTPOnly: true,
		Secure:   sc.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear expires the session cookie in the browser.
func (sc SessionCookie) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   sc.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Token returns the session token sent by the browser, if any.
func (sc SessionCookie) Token(c *fiber.Ctx) string {
	return c.Cookies(sc.Name)
}

// Session resolves the session cookie into the acting identity of this request.
// Requests without a valid session continue anonymously; an invalid cookie is cleared.
func Session(store services.SessionStore, cookie SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := cookie.Token(c)
		if token == "" {
			return c.Next()
		}

		userID, err := store.Resolve(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, services.ErrSessionInvalid) {
				log.WithError(err).WithField("request_id", RequestID(c)).Error("Failed to resolve session")
			}
			cookie.Clear(c)
			return c.Next()
		}

		c.Locals(userIDLocal, userID)
		return c.Next()
	}
}

// RequireIdentity redirects anonymous requests to the signin page.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return c.Redirect("/")
		}
		return c.Next()
	}
}

// UserID returns the acting identity of the request, or "" when anonymous.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(userIDLocal).(string)
	return userID
}
