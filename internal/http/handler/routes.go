package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shotapi/internal/http/middleware"
	"shotapi/internal/service"
	"shotapi/internal/storage"
)

// Deps are the collaborators the routes need. DB and AuthMetrics may be nil.
type Deps struct {
	Auth        service.AuthService
	Screenshots service.ScreenshotService
	Activity    service.ActivityService
	Store       storage.Storage
	DB          *sql.DB
	AuthMetrics *middleware.AuthMetrics
	Log         *zap.Logger
}

// RegisterRoutes attaches the API under prefix (e.g. "/api") plus the
// unprefixed health probes. Unknown routes fall through to a 404 envelope.
func RegisterRoutes(app *fiber.App, prefix string, d Deps) {
	log := d.Log
	if log == nil {
		log = nopLogger()
	}

	app.Get("/health", HealthCheck(d.Store, d.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group(prefix)

	api.Post("/auth/login", Login(d.Auth, log))
	api.Post("/auth/logout", Logout())

	// Auth is attached per route; group middleware matches by prefix and
	// would turn unknown paths like /screenshotsX into 401s.
	requireAuth := middleware.Auth(d.Auth, d.AuthMetrics, unauthorized)

	api.Get("/screenshots", requireAuth, ListScreenshots(d.Screenshots, log))
	api.Patch("/screenshots/:key/metadata", requireAuth, UpdateMetadata(d.Screenshots, log))
	api.Delete("/screenshots/:key/metadata", requireAuth, ClearMetadata(d.Screenshots, log))
	api.Get("/screenshots/:key", requireAuth, GetScreenshot(d.Screenshots, log))
	api.Delete("/screenshots/:key", requireAuth, DeleteScreenshot(d.Screenshots, log))

	api.Get("/activity", requireAuth, ListActivity(d.Activity, log))
}

func nopLogger() *zap.Logger { return zap.NewNop() }

// NotFound renders the 404 envelope; register it last.
func NotFound() fiber.Handler {
	return Adapt(func(c *fiber.Ctx) Result {
		return Fail(fiber.StatusNotFound, MsgNotFound, nil)
	})
}
