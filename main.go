package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"jurnal/internal/config"
	"jurnal/internal/database"
	"jurnal/internal/logging"
	"jurnal/internal/middleware"
	"jurnal/internal/models"
	"jurnal/internal/repositories"
	"jurnal/internal/server"
	"jurnal/internal/services"
	"jurnal/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logCloser, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	ctx := context.Background()
	app, resources, err := build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("addr", cfg.AppPort).Info("Starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	resources.closeAll()
	log.Info("Server gracefully stopped")
}

// closers releases process resources in reverse order of acquisition.
type closers []func() error

func (cs *closers) add(name string, fn func() error) {
	*cs = append(*cs, func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		return nil
	})
}

func (cs closers) closeAll() {
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i](); err != nil {
			log.WithError(err).Error("Error releasing resource")
		}
	}
}

// stores are the repositories selected by DB_DRIVER.
type stores struct {
	users repositories.UserRepository
	blogs repositories.BlogRepository
	ping  func(ctx context.Context) error
}

func openStores(cfg config.Config, cs *closers) (stores, error) {
	if cfg.DBDriver == "memory" {
		log.Warn("Using in-memory repositories; data is lost on exit")
		users := repositories.NewMemoryUserRepository()
		return stores{users: users, blogs: repositories.NewMemoryBlogRepository(users)}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return stores{}, err
	}
	cs.add("database", func() error { return database.Close(db) })

	if err := database.Migrate(db); err != nil {
		return stores{}, err
	}
	return stores{
		users: repositories.NewGORMUserRepository(db),
		blogs: repositories.NewGORMBlogRepository(db),
		ping:  func(ctx context.Context) error { return database.Ping(ctx, db) },
	}, nil
}

func openSessions(ctx context.Context, cfg config.Config, cs *closers) (services.SessionStore, error) {
	if cfg.SessionStore == "redis" {
		rdb, err := database.OpenRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cs.add("redis", rdb.Close)
		log.WithField("addr", cfg.RedisAddr).Info("Sessions stored in Redis")
		return services.NewRedisSessionStore(rdb, cfg.SessionTTL), nil
	}
	if cfg.SessionSecret == config.DevSessionSecret {
		log.Warn("SESSION_SECRET is the development default; set it in production")
	}
	return services.NewJWTSessionStore(cfg.SessionSecret, cfg.SessionTTL), nil
}

// openEvents connects to RabbitMQ when RABBITMQ_URL is set. A broker that
// cannot be reached disables events instead of failing startup.
func openEvents(cfg config.Config, cs *closers) services.EventPublisher {
	if cfg.RabbitMQURL == "" {
		return nil
	}
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable; blog events disabled")
		return nil
	}
	cs.add("rabbitmq", mqClient.Close)

	if err := mqClient.ConsumeBlogEvents(logBlogEvent); err != nil {
		log.WithError(err).Error("Failed to start blog event consumer")
	}
	return mqClient
}

func logBlogEvent(event models.BlogEvent) error {
	log.WithFields(log.Fields{
		"event":       event.Type,
		"blog_id":     event.BlogID,
		"creator":     event.CreatorUserID,
		"occurred_at": event.OccurredAt,
	}).Info("Received blog event")
	return nil
}

// build wires repositories, services and the HTTP app from cfg.
func build(ctx context.Context, cfg config.Config) (*fiber.App, closers, error) {
	var cs closers

	st, err := openStores(cfg, &cs)
	if err != nil {
		cs.closeAll()
		return nil, nil, err
	}

	sessions, err := openSessions(ctx, cfg, &cs)
	if err != nil {
		cs.closeAll()
		return nil, nil, err
	}

	cookie := middleware.SessionCookie{
		Name:   cfg.SessionCookie,
		Secure: cfg.CookieSecure,
		TTL:    cfg.SessionTTL,
	}
	app := server.New(server.Deps{
		Accounts: services.NewAccountService(st.users, cfg.BcryptCost),
		Blog:     services.NewBlogService(st.blogs, openEvents(cfg, &cs)),
		Sessions: sessions,
		Cookie:   cookie,
		Ping:     st.ping,
	})
	return app, cs, nil
}
