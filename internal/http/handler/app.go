package handler

import (
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shotapi/internal/http/middleware"
)

// AppOptions configure NewApp.
type AppOptions struct {
	// Prefix mounts the API, e.g. "/api".
	Prefix string
	// Registry receives the HTTP and auth metrics and backs /metrics.
	Registry *prometheus.Registry
	// Tracing enables the otelfiber middleware.
	Tracing bool
	// Extra runs after the API routes and before the 404 fallback.
	Extra func(app *fiber.App)
}

// NewApp builds the Fiber app with the full middleware chain:
// RequestID, Logger, Prometheus, otelfiber, CORS, then the routes.
func NewApp(opts AppOptions, d Deps) (*fiber.App, error) {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}
	if d.AuthMetrics == nil {
		if d.AuthMetrics, err = middleware.NewAuthMetrics(reg); err != nil {
			return nil, err
		}
	}
	if d.Log == nil {
		d.Log = nopLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:      "shotapi",
		ErrorHandler: ErrorHandler(d.Log),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(d.Log))
	app.Use(prom.Handler())
	if opts.Tracing {
		app.Use(otelfiber.Middleware())
	}
	app.Use(middleware.CORS())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	RegisterRoutes(app, opts.Prefix, d)
	if opts.Extra != nil {
		opts.Extra(app)
	}
	app.Use(NotFound())
	return app, nil
}
