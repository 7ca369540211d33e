package handlers

import (
	"errors"

	"jurnal/internal/middleware"
	"jurnal/internal/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// AuthHandler serves the signin, signup and signout pages.
type AuthHandler struct {
	accountService *services.AccountService
	sessions       services.SessionStore
	cookie         middleware.SessionCookie
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService *services.AccountService, sessions services.SessionStore, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		sessions:       sessions,
		cookie:         cookie,
	}
}

// credentialsForm is the body of the signin and signup forms.
type credentialsForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Name     string `form:"name"`
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleSigninPage)
	router.Post("/", h.HandleSignin)
	router.Get("/signup", h.HandleSignupPage)
	router.Post("/signup", h.HandleSignup)
	router.Get("/signout", h.HandleSignout)
}

// HandleSigninPage renders the signin form.
func (h *AuthHandler) HandleSigninPage(c *fiber.Ctx) error {
	return c.Render("signin", fiber.Map{
		"UserID":  middleware.UserID(c),
		"Invalid": false,
	})
}

// HandleSignin checks the submitted credentials and starts a session for the
// browser that sent them.
func (h *AuthHandler) HandleSignin(c *fiber.Ctx) error {
	var form credentialsForm
	if err := c.BodyParser(&form); err != nil {
		requestLog(c).WithError(err).Warn("Error parsing signin form")
		return h.rejectSignin(c)
	}

	user, err := h.accountService.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			requestLog(c).WithError(err).Error("Error authenticating user")
		}
		return h.rejectSignin(c)
	}

	token, err := h.sessions.Issue(c.UserContext(), user.UserID)
	if err != nil {
		requestLog(c).WithError(err).WithField("user_id", user.UserID).Error("Error issuing session")
		return c.Status(fiber.StatusInternalServerError).SendString("Error: Could not sign in.")
	}
	h.revokeCurrent(c)
	h.cookie.Set(c, token)

	requestLog(c).WithField("user_id", user.UserID).Info("User signed in")
	return c.Redirect("/home")
}

// rejectSignin drops any session the browser holds and re-renders the form
// with the invalid marker.
func (h *AuthHandler) rejectSignin(c *fiber.Ctx) error {
	h.revokeCurrent(c)
	h.cookie.Clear(c)
	return c.Status(fiber.StatusUnauthorized).Render("signin", fiber.Map{
		"UserID":  "",
		"Invalid": true,
	})
}

// HandleSignupPage ends the current session and renders the signup form.
func (h *AuthHandler) HandleSignupPage(c *fiber.Ctx) error {
	h.revokeCurrent(c)
	h.cookie.Clear(c)
	return c.Render("signup", fiber.Map{
		"UserID":  "",
		"Invalid": false,
	})
}

// HandleSignup registers a new account.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var form credentialsForm
	if err := c.BodyParser(&form); err != nil {
		requestLog(c).WithError(err).Warn("Error parsing signup form")
		return h.rejectSignup(c, fiber.StatusBadRequest)
	}

	err := h.accountService.Register(c.UserContext(), form.Username, form.Password, form.Name)
	switch {
	case err == nil:
		requestLog(c).WithField("user_id", form.Username).Info("User registered")
		return c.Redirect("/")
	case errors.Is(err, services.ErrUsernameTaken):
		return h.rejectSignup(c, fiber.StatusConflict)
	case errors.Is(err, services.ErrInvalidInput):
		return h.rejectSignup(c, fiber.StatusBadRequest)
	default:
		requestLog(c).WithError(err).WithField("user_id", form.Username).Error("Error registering user")
		return h.rejectSignup(c, fiber.StatusInternalServerError)
	}
}

func (h *AuthHandler) rejectSignup(c *fiber.Ctx, status int) error {
	return c.Status(status).Render("signup", fiber.Map{
		"UserID":  "",
		"Invalid": true,
	})
}

// HandleSignout ends the current session.
func (h *AuthHandler) HandleSignout(c *fiber.Ctx) error {
	h.revokeCurrent(c)
	h.cookie.Clear(c)
	return c.Redirect("/")
}

func (h *AuthHandler) revokeCurrent(c *fiber.Ctx) {
	token := h.cookie.Token(c)
	if token == "" {
		return
	}
	if err := h.sessions.Revoke(c.UserContext(), token); err != nil {
		requestLog(c).WithError(err).Warn("Error revoking session")
	}
}

// requestLog returns a log entry carrying the request id and path.
func requestLog(c *fiber.Ctx) *log.Entry {
	return log.WithFields(log.Fields{
		"request_id": middleware.RequestID(c),
		"path":       c.Path(),
	})
}
