package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotapi/internal/auth"
	"shotapi/internal/service"
	serviceMocks "shotapi/internal/service/mocks"
)

func requestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/api/screenshots", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})
	return app
}

func TestRequestID(t *testing.T) {
	app := requestIDApp()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent"},
		{name: "client id kept", incoming: "ui-7f3a-0001", keep: true},
		{name: "too long", incoming: strings.Repeat("a", 200)},
		{name: "whitespace", incoming: "has space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/screenshots", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			rid := resp.Header.Get(RequestIDHeader)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, rid, string(body), "handler sees the echoed id")
			if tt.keep {
				assert.Equal(t, tt.incoming, rid)
			} else {
				assert.Len(t, rid, 36)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/api/screenshots", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/screenshots?q=login", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	_, err := app.Test(req)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/screenshots", entry["path"])
	assert.Equal(t, float64(fiber.StatusOK), entry["status"])
	assert.Contains(t, entry, "latency")
	assert.Contains(t, entry, "ts")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "request", entry["msg"])
	assert.NotContains(t, entry, "user")
}

func TestLogger_LevelAndUser(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))

	app.Get("/missing", func(c *fiber.Ctx) error {
		c.Locals(UserLocalKey, "admin")
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/missing", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "warn", logData["level"])
	assert.Equal(t, "admin", logData["user"])

	buf.Reset()
	app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "error", logData["level"])
	assert.Equal(t, float64(fiber.StatusServiceUnavailable), logData["status"])
}

func TestCORS_Preflight(t *testing.T) {
	app := fiber.New()
	app.Use(CORS())
	app.Patch("/api/screenshots/:key/metadata", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("OPTIONS", "/api/screenshots/a.png/metadata", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
	assert.ElementsMatch(t, []string{"Content-Type", "Authorization"}, headerList(resp.Header.Get("Access-Control-Allow-Headers")))
	assert.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"))
}

func rejectJSON(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": message})
}

func TestAuth(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewAuthMetrics(reg)
	require.NoError(t, err)

	authSvc := new(serviceMocks.MockAuthService)
	authSvc.On("Authenticate", "good").Return(&auth.Claims{Username: "admin"}, nil)
	authSvc.On("Authenticate", "stale").Return(nil, auth.ErrExpired)

	app := fiber.New()
	app.Use(Auth(authSvc, metrics, rejectJSON))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(UserLocalKey).(string) + "|" + service.ActorFrom(c.UserContext()))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", header: "", wantStatus: fiber.StatusUnauthorized, wantBody: MsgMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantStatus: fiber.StatusUnauthorized, wantBody: MsgMissingToken},
		{name: "expired", header: "Bearer stale", wantStatus: fiber.StatusUnauthorized, wantBody: MsgInvalidToken},
		{name: "valid", header: "Bearer good", wantStatus: fiber.StatusOK, wantBody: "admin|admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, _ := app.Test(req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := new(bytes.Buffer)
			body.ReadFrom(resp.Body)
			assert.Contains(t, body.String(), tt.wantBody)
		})
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.verifications.WithLabelValues("missing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.verifications.WithLabelValues("expired")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.verifications.WithLabelValues("ok")))
}

func headerList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
