package handlers

import (
	"errors"

	"bounty-board-system/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps service errors onto HTTP status codes. Anything unknown is a
// 500 with the raw error hidden behind a generic message.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotPayRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotPoster),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrOwnBounty),
		errors.Is(err, services.ErrOwnPayRequest):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyAccepted),
		errors.Is(err, services.ErrNotAccepted),
		errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrNoHunters),
		errors.Is(err, services.ErrHuntersFull),
		errors.Is(err, services.ErrBountyClosed),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrAlreadyFollowing):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
