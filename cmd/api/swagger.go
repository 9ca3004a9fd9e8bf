package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"shotapi/docs"
)

// swaggerMount serves the generated document and UI under /swagger.
// Host and schemes stay empty so the UI calls whichever host served it.
func swaggerMount(basePath string) func(*fiber.App) {
	docs.SwaggerInfo.BasePath = basePath
	return func(app *fiber.App) {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}
}
