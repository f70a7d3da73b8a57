package controllers

import (
	"Backend-FaceAttend/src/middleware"
	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"
	"Backend-FaceAttend/src/services/settings"
	"Backend-FaceAttend/src/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SettingsController struct {
	settings    *settings.Service
	coordinator *attendance.Coordinator
	validate    *validator.Validate
}

func NewSettingsController(s *settings.Service, coordinator *attendance.Coordinator) *SettingsController {
	return &SettingsController{settings: s, coordinator: coordinator, validate: newValidator()}
}

// GetSettings godoc
// @Summary      Read the caller's settings, creating defaults on first access
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.OperatorSettings
// @Failure      401  {object}  models.ErrorResponse
// @Router       /settings [get]
func (h *SettingsController) GetSettings(c *fiber.Ctx) error {
	operatorID, role := middleware.Operator(c)
	s, err := h.settings.GetOrCreate(c.UserContext(), operatorID, role)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(s)
}

// ReplaceSettings godoc
// @Summary      Replace the caller's settings
// @Description  Whole-document replacement. Identity, owner and timestamps cannot be changed.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body body models.SettingsRequest true "New settings"
// @Success      200  {object}  models.OperatorSettings
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /settings [put]
func (h *SettingsController) ReplaceSettings(c *fiber.Ctx) error {
	var req models.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return utils.HandleServiceError(c, err)
	}

	operatorID, role := middleware.Operator(c)
	s, err := h.settings.Replace(c.UserContext(), operatorID, role, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	h.coordinator.InvalidateSettings(c.UserContext(), operatorID)
	return c.JSON(s)
}
