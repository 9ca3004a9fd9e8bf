package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"shotapi/internal/storage"
)

// HealthCheck pings the object store and, when configured, the database.
// db may be nil.
func HealthCheck(store storage.Storage, db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{"storage": "ok"}
		if err := store.Ping(ctx); err != nil {
			checks["storage"] = "unavailable"
			return write(c, Fail(fiber.StatusServiceUnavailable, MsgUnavailable, checks))
		}
		if db != nil {
			checks["database"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				checks["database"] = "unavailable"
				return write(c, Fail(fiber.StatusServiceUnavailable, MsgUnavailable, checks))
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "checks": checks})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
