package routes

import (
	"Backend-FaceAttend/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func settingsRoutes(app *fiber.App, h *controllers.SettingsController, auth fiber.Handler) {
	settingsRoutes := app.Group("/settings", auth)
	settingsRoutes.Get("/", h.GetSettings)
	settingsRoutes.Put("/", h.ReplaceSettings)
}
