package observability

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldops/field-report-service/internal/config"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/feed", "GET", 200, time.Millisecond)
	m.RecordRequest("/api/feed", "GET", 200, time.Millisecond)
	m.RecordError("/api/feed", "GET", "FORBIDDEN")
	m.RecordReview("complaint", "approved")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/feed|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/feed|GET|FORBIDDEN"])
	assert.Equal(t, int64(1), snap.Reviews["complaint|approved"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordReview("complaint", "approved")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, config.AppConfig{})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewLoggerNamesService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Output: path}, config.AppConfig{
		Name:    "field-report-service",
		Version: "1.2.3",
		Env:     "production",
	})
	require.NoError(t, err)
	logger.Debug("submission reviewed", zap.String("id", "c-1"))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "submission reviewed", entry["message"])
	assert.Equal(t, "field-report-service", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "c-1", entry["id"])
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/items/:id|GET|204"])
}
