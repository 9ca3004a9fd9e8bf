package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMaxAge is how long browsers may cache a preflight, in seconds.
const CORSMaxAge = 86400

// CORS allows any origin with the methods and headers the browser client uses.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodPatch,
			fiber.MethodDelete,
			fiber.MethodOptions,
		}, ", "),
		AllowHeaders:  "Content-Type, Authorization",
		ExposeHeaders: RequestIDHeader,
		MaxAge:        CORSMaxAge,
	})
}
