// error_utils.go
package utils

import (
	"errors"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"

	"github.com/gofiber/fiber/v2"
)

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// HandleServiceError maps the engine's error taxonomy onto HTTP responses.
func HandleServiceError(c *fiber.Ctx, err error) error {
	var (
		ve  *attendance.ValidationError
		dup *attendance.DuplicateError
		nf  *attendance.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Status:  fiber.StatusBadRequest,
			Message: ve.Error(),
			Field:   ve.Field,
		})
	case errors.As(err, &dup):
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
			Status:        fiber.StatusConflict,
			Message:       dup.Error(),
			AlreadyMarked: dup.AlreadyMarked(),
		})
	case errors.As(err, &nf):
		return HandleError(c, fiber.StatusNotFound, nf.Error())
	default:
		return HandleError(c, fiber.StatusInternalServerError, "internal storage error")
	}
}
