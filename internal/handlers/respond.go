package handlers

import (
	"errors"

	"vinoteca/internal/logging"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service and repository errors onto the API error
// envelope. Anything unrecognized logs with request context and surfaces
// as an opaque 500.
func respondError(c *fiber.Ctx, err error) error {
	var ve *schema.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "resource not found",
		})
	case errors.Is(err, repositories.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a resource with the same unique value already exists",
		})
	case errors.Is(err, services.ErrBadImportFile), errors.Is(err, services.ErrUnsupportedFile):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		logging.FromContext(c.UserContext()).Error("request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

// meta carries pagination bookkeeping for list responses.
type meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func newMeta(page, limit int, total int64) meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
