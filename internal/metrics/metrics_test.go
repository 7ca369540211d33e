package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jurnal/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_RecordsRequestsAndExposes(t *testing.T) {
	app := fiber.New()
	app.Use(metrics.Handler())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", metrics.Exposer())

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/ping", "GET", "200"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/ping", "GET", "200"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "jurnal_http_requests_total")
}
