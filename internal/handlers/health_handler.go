package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zaruud/zaruud-backend/internal/database"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/services"
)

type HealthHandler struct {
	systemModeService *services.SystemModeService
}

func NewHealthHandler(systemModeService *services.SystemModeService) *HealthHandler {
	return &HealthHandler{systemModeService: systemModeService}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Mode:      string(h.systemModeService.Current().Mode),
	})
}
