package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/TigerK9/CSCI-432-Final/internal/motion"
)

// motionError maps motion-domain errors to HTTP responses in one place.
// A closed-window rejection carries the final result and tally so the
// late voter sees the outcome.
func motionError(c *fiber.Ctx, err error) error {
	var closed *motion.VotingClosedError
	if errors.As(err, &closed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Voting period has ended",
			"result":  closed.Result,
			"votes":   closed.Votes,
		})
	}

	switch {
	case errors.Is(err, motion.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, motion.ErrAuthorization):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, motion.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, motion.ErrDuplicateVote):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You have already voted on this motion"})
	case errors.Is(err, motion.ErrInvalidState):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, motion.ErrStoreConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Meeting was updated concurrently, please retry"})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
}
