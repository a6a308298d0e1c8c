package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/services"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Moderate handles POST /api/admin/listings/:id/moderate.
func (h *ModerationHandler) Moderate(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid listing ID",
		})
	}

	var req dto.ModerateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	record, err := h.moderationService.ModerateListing(listingID, req.ViolationType, req.ModeratorNote)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetRecord handles GET /api/admin/moderation/:id.
func (h *ModerationHandler) GetRecord(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid record ID",
		})
	}

	record, err := h.moderationService.GetRecord(id)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch moderation record",
		})
	}

	return c.JSON(record)
}

// ListRecords handles GET /api/admin/moderation.
func (h *ModerationHandler) ListRecords(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	records, total, err := h.moderationService.ListRecords(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch moderation records",
		})
	}

	return c.JSON(fiber.Map{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// PreviewRefund handles POST /api/admin/refunds/preview. Pure calculation,
// nothing is booked.
func (h *ModerationHandler) PreviewRefund(c *fiber.Ctx) error {
	var req dto.RefundPreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	percent := 0
	if req.RefundPercent != nil {
		percent = *req.RefundPercent
	}
	amount := services.CalculateRefund(req.SubscriptionPrice, req.DaysUsed, req.TotalDays, req.RefundPolicy, percent)

	return c.JSON(dto.RefundPreviewResponse{Amount: amount})
}
