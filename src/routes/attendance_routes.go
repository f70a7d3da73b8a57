package routes

import (
	"Backend-FaceAttend/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func attendanceRoutes(app *fiber.App, h *controllers.AttendanceController, auth fiber.Handler) {
	attendanceRoutes := app.Group("/attendance", auth)
	attendanceRoutes.Post("/biometric", h.MarkBiometric)
	attendanceRoutes.Post("/manual", h.MarkManual)
	attendanceRoutes.Post("/finalize", h.Finalize)
	attendanceRoutes.Get("/unmarked", h.GetUnmarked)
	attendanceRoutes.Get("/today", h.GetToday)
	attendanceRoutes.Delete("/:attendanceId", h.Cancel)
}

func classRoutes(app *fiber.App, h *controllers.AttendanceController, auth fiber.Handler) {
	classRoutes := app.Group("/classes", auth)
	classRoutes.Get("/:classId/roster", h.GetRoster)
}
