package controllers

import (
	"strconv"

	"Backend-FaceAttend/src/models"
	"Backend-FaceAttend/src/services/attendance"
	"Backend-FaceAttend/src/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	coordinator *attendance.Coordinator
	canceller   *attendance.Canceller
	validate    *validator.Validate
}

func NewAttendanceController(coordinator *attendance.Coordinator, canceller *attendance.Canceller) *AttendanceController {
	return &AttendanceController{coordinator: coordinator, canceller: canceller, validate: newValidator()}
}

// MarkBiometric godoc
// @Summary      Mark attendance from a face match
// @Description  Records present or late by the operator's cutoff. The stored signature is refreshed in the background.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        body body models.MarkBiometricRequest true "Recognition result"
// @Success      201  {object}  models.MarkResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /attendance/biometric [post]
func (h *AttendanceController) MarkBiometric(c *fiber.Ctx) error {
	var req models.MarkBiometricRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return utils.HandleServiceError(c, err)
	}
	memberID, _ := objectID("studentId", req.StudentID)
	courseID, _ := objectID("courseId", req.CourseID)
	classID, _ := objectID("classId", req.ClassID)

	rec, err := h.coordinator.MarkBiometric(c.UserContext(), attendance.BiometricMark{
		MemberID:   memberID,
		CourseID:   courseID,
		ClassID:    classID,
		Observed:   req.FaceDescriptor,
		Confidence: req.ConfidenceScore,
	})
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.MarkResponse{Message: "Attendance marked", Attendance: rec})
}

// MarkManual godoc
// @Summary      Mark attendance by hand
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        body body models.MarkManualRequest true "Manual mark"
// @Success      201  {object}  models.MarkResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /attendance/manual [post]
func (h *AttendanceController) MarkManual(c *fiber.Ctx) error {
	var req models.MarkManualRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return utils.HandleServiceError(c, err)
	}
	memberID, _ := objectID("studentId", req.StudentID)
	courseID, _ := objectID("courseId", req.CourseID)
	classID, _ := objectID("classId", req.ClassID)

	rec, err := h.coordinator.MarkManual(c.UserContext(), attendance.ManualMark{
		MemberID: memberID,
		CourseID: courseID,
		ClassID:  classID,
		Status:   models.AttendanceStatus(req.Status),
	})
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.MarkResponse{Message: "Attendance marked", Attendance: rec})
}

// Finalize godoc
// @Summary      Close today's session
// @Description  Optionally marks every unmarked enrolled member absent. Safe to call twice.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        body body models.FinalizeRequest true "Session to close"
// @Success      200  {object}  models.FinalizeResult
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attendance/finalize [post]
func (h *AttendanceController) Finalize(c *fiber.Ctx) error {
	var req models.FinalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return utils.HandleServiceError(c, err)
	}
	classID, _ := objectID("classId", req.ClassID)
	courseID, _ := objectID("courseId", req.CourseID)

	res, err := h.coordinator.Finalize(c.UserContext(), classID, courseID, h.coordinator.Today(), req.MarkAbsent)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(res)
}

// Cancel godoc
// @Summary      Cancel a mistaken attendance
// @Tags         attendance
// @Produce      json
// @Param        attendanceId path string true "Attendance ID"
// @Success      200  {object}  models.CancelResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attendance/{attendanceId} [delete]
func (h *AttendanceController) Cancel(c *fiber.Ctx) error {
	id, err := objectID("attendanceId", c.Params("attendanceId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	rec, err := h.canceller.Cancel(c.UserContext(), id)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(models.CancelResponse{Message: "Attendance cancelled", Attendance: rec})
}

// GetUnmarked godoc
// @Summary      Members not marked yet today
// @Tags         attendance
// @Produce      json
// @Param        classId  query string true "Class ID"
// @Param        courseId query string true "Course ID"
// @Success      200  {array}   models.MemberSummary
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attendance/unmarked [get]
func (h *AttendanceController) GetUnmarked(c *fiber.Ctx) error {
	classID, err := objectID("classId", c.Query("classId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	courseID, err := objectID("courseId", c.Query("courseId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	members, err := h.coordinator.UnmarkedMembers(c.UserContext(), classID, courseID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(summaries(members))
}

// GetToday godoc
// @Summary      Today's records of a course
// @Tags         attendance
// @Produce      json
// @Param        courseId query string true  "Course ID"
// @Param        limit    query int    false "Page size (capped)"
// @Param        order    query string false "desc (default) or asc"
// @Success      200  {array}   models.TodayEntry
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attendance/today [get]
func (h *AttendanceController) GetToday(c *fiber.Ctx) error {
	courseID, err := objectID("courseId", c.Query("courseId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	entries, err := h.coordinator.TodayRecords(c.UserContext(), courseID, limit, attendance.ParseOrder(c.Query("order")))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(entries)
}

// GetRoster godoc
// @Summary      Enrolled members of a class
// @Tags         classes
// @Produce      json
// @Param        classId path string true "Class ID"
// @Success      200  {array}   models.MemberSummary
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /classes/{classId}/roster [get]
func (h *AttendanceController) GetRoster(c *fiber.Ctx) error {
	classID, err := objectID("classId", c.Params("classId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	members, err := h.coordinator.Roster(c.UserContext(), classID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(summaries(members))
}

func summaries(members []models.Member) []models.MemberSummary {
	out := make([]models.MemberSummary, 0, len(members))
	for _, m := range members {
		out = append(out, m.Summary())
	}
	return out
}
