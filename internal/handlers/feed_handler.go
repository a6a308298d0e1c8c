package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/zaruud/zaruud-backend/internal/dto"
	"github.com/zaruud/zaruud-backend/internal/services"
)

type FeedHandler struct {
	discoveryService *services.DiscoveryService
}

func NewFeedHandler(discoveryService *services.DiscoveryService) *FeedHandler {
	return &FeedHandler{discoveryService: discoveryService}
}

// Feed handles GET /api/feed. sort=engagement gives the plain ranked list;
// the default is the blended feed with new and lottery slots.
func (h *FeedHandler) Feed(c *fiber.Ctx) error {
	var listings interface{}
	var err error

	if c.Query("sort") == "engagement" {
		listings, err = h.discoveryService.RankByEngagement()
	} else {
		listings, err = h.discoveryService.Feed()
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to build feed",
		})
	}

	return c.JSON(fiber.Map{"listings": listings})
}

// TrackEngagement handles POST /api/listings/:id/track/:counter.
func (h *FeedHandler) TrackEngagement(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid listing ID",
		})
	}

	if err := h.discoveryService.TrackEngagement(listingID, c.Params("counter")); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownCounter):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrListingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to track engagement",
		})
	}

	return c.JSON(fiber.Map{"message": "ok"})
}
