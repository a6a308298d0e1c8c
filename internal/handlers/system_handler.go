package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/models"
	"github.com/zaruud/zaruud-backend/internal/services"
)

type SystemHandler struct {
	systemModeService *services.SystemModeService
}

func NewSystemHandler(systemModeService *services.SystemModeService) *SystemHandler {
	return &SystemHandler{systemModeService: systemModeService}
}

// Status handles GET /api/system/status. Public, so clients can show a banner
// before the user trips over a blocked action.
func (h *SystemHandler) Status(c *fiber.Ctx) error {
	status := h.systemModeService.Current()
	return c.JSON(fiber.Map{
		"mode":          status.Mode,
		"message":       status.Message,
		"enabled_at":    status.EnabledAt,
		"scheduled_end": status.ScheduledEnd,
	})
}

// CheckAction handles GET /api/system/check/:action.
func (h *SystemHandler) CheckAction(c *fiber.Ctx) error {
	action := models.UserAction(c.Params("action"))
	return c.JSON(h.systemModeService.IsActionAllowed(action))
}

// SetMode handles POST /api/admin/system/mode.
func (h *SystemHandler) SetMode(c *fiber.Ctx) error {
	var req dto.SetSystemModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	status, err := h.systemModeService.SetMode(req.Mode, req.Message, req.ScheduledEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(status)
}
