package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/models"
	"github.com/zaruud/zaruud-backend/internal/services"
)

// SystemGate blocks a route when the current system mode does not allow the
// given action. Admin endpoints are never gated.
func SystemGate(svc *services.SystemModeService, action models.UserAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		check := svc.IsActionAllowed(action)
		if !check.Allowed {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error:   true,
				Message: check.Reason,
			})
		}
		return c.Next()
	}
}
