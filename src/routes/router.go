package routes

import (
	"Backend-FaceAttend/src/controllers"
	"Backend-FaceAttend/src/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Attendance *controllers.AttendanceController
	Settings   *controllers.SettingsController
}

func InitRoutes(app *fiber.App, h Handlers, jwtSecret string) {
	auth := middleware.AuthJWT(jwtSecret)
	attendanceRoutes(app, h.Attendance, auth)
	classRoutes(app, h.Attendance, auth)
	settingsRoutes(app, h.Settings, auth)

	// health check
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}
