package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

// RequestID returns the id assigned to the request by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return rid
}

// RequestLogger writes one structured access log entry per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		entry := log.WithFields(log.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
			"request_id": RequestID(c),
		})
		if err != nil {
			entry.WithError(err).Warn("request completed with errors")
		} else {
			entry.Info("request completed")
		}
		return err
	}
}
