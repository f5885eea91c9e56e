package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smart-faculty/auth-service/internal/config"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("chatty"))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "error"}, config.AppConfig{Name: "auth-service", Env: "production"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/login", "POST", 200, time.Millisecond)
	m.RecordError("/login", "POST", apperrors.CodeInvalidCredentials)
	m.RecordAuthEvent(EventLoginFailed)
}

func TestMetricsCountAuthEvents(t *testing.T) {
	m := NewMetrics("test")
	m.RecordAuthEvent(EventLogout)
	m.RecordAuthEvent(EventLogout)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authEvents.WithLabelValues(EventLogout)))
}

func TestRequestLoggerRecordsStatusAndRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMetrics("test")

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/denied", func(c *fiber.Ctx) error { return apperrors.ErrInvalidToken })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	for _, path := range []string{"/denied", "/boom"} {
		resp, err = app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	}

	require.Equal(t, 3, logs.Len())
	statuses := []int64{}
	for _, entry := range logs.All() {
		statuses = append(statuses, entry.ContextMap()["status"].(int64))
	}
	assert.Equal(t, []int64{200, 401, 500}, statuses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/denied", "GET", "401")))
}
