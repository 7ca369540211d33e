// Package server assembles the Fiber application: views, middleware and routes.
package server

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"jurnal/internal/handlers"
	"jurnal/internal/metrics"
	"jurnal/internal/middleware"
	"jurnal/internal/services"
	"jurnal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Accounts *services.AccountService
	Blog     *services.BlogService
	Sessions services.SessionStore
	Cookie   middleware.SessionCookie
	// Ping checks the store for /health. A nil Ping reports the store as connected.
	Ping func(ctx context.Context) error
}

// New builds the Fiber app with every route registered.
func New(deps Deps) *fiber.App {
	engine := html.NewFileSystem(http.FS(web.Views()), ".html")
	// Post bodies are sanitized before they are stored.
	engine.AddFunc("safe", func(s string) template.HTML {
		return template.HTML(s)
	})

	app := fiber.New(fiber.Config{
		AppName:   "jurnal",
		Views:     engine,
		// form values outlive the request in the memory repositories
		Immutable: true,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Handler())

	app.Get("/health", healthHandler(deps.Ping))
	app.Get("/metrics", metrics.Exposer())
	app.Use("/public", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Public()),
		MaxAge: 3600,
	}))

	app.Use(middleware.Session(deps.Sessions, deps.Cookie))

	handlers.NewAuthHandler(deps.Accounts, deps.Sessions, deps.Cookie).RegisterRoutes(app)
	handlers.NewBlogHandler(deps.Blog).RegisterRoutes(app)

	return app
}

func healthHandler(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database, code := "healthy", "connected", fiber.StatusOK
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, database, code = "unhealthy", "unreachable", fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	}
}
