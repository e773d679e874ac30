package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
	"github.com/TigerK9/CSCI-432-Final/internal/motion"
)

// Motions is the lifecycle engine shared by the motion handlers,
// wired up in main.
var Motions *motion.Engine

func caller(c *fiber.Ctx) motion.Caller {
	return motion.Caller{
		ID:   middleware.GetUserID(c),
		Name: middleware.GetName(c),
		Role: middleware.GetRole(c),
	}
}

func parseMeetingID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("meetingId"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseMotionIndex(c *fiber.Ctx) (int, bool) {
	index, err := strconv.Atoi(c.Params("motionIndex"))
	if err != nil {
		return 0, false
	}
	return index, true
}

// ProposeMotion adds a pending motion to the end of the queue.
func ProposeMotion(c *fiber.Ctx) error {
	meetingID, ok := parseMeetingID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting ID",
		})
	}

	var req models.ProposeMotionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	created, err := Motions.Propose(meetingID, caller(c), req.Name, req.Description)
	if err != nil {
		return motionError(c, err)
	}

	LogActivity(meetingID, middleware.GetUserID(c), "motion_proposed", map[string]interface{}{
		"motion": created.Name,
	})
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ReviewMotion applies the chairman's approve/deny verdict and returns
// the full updated meeting.
func ReviewMotion(c *fiber.Ctx) error {
	meetingID, ok := parseMeetingID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting ID",
		})
	}
	index, ok := parseMotionIndex(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid motion index",
		})
	}

	var req models.ReviewMotionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	action, err := motion.ParseReviewAction(req.Action)
	if err != nil {
		return motionError(c, err)
	}

	if _, err := Motions.Review(meetingID, caller(c), index, action); err != nil {
		return motionError(c, err)
	}

	actionType := "motion_approved"
	if action == motion.ActionDeny {
		actionType = "motion_denied"
	}
	LogActivity(meetingID, middleware.GetUserID(c), actionType, map[string]interface{}{
		"motionIndex": index,
	})

	var meeting models.Meeting
	if err := database.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	}
	return c.JSON(fiber.Map{"meeting": meeting})
}

// StartVote opens the voting window on a motion.
func StartVote(c *fiber.Ctx) error {
	meetingID, ok := parseMeetingID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting ID",
		})
	}
	index, ok := parseMotionIndex(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid motion index",
		})
	}

	started, err := Motions.StartVote(meetingID, caller(c), index)
	if err != nil {
		return motionError(c, err)
	}

	LogActivity(meetingID, middleware.GetUserID(c), "vote_started", map[string]interface{}{
		"motion": started.Name,
	})
	return c.JSON(started)
}

// CastVote records one ballot. A vote landing after the window closed
// resolves the motion and reports the final outcome to the voter.
func CastVote(c *fiber.Ctx) error {
	meetingID, ok := parseMeetingID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting ID",
		})
	}
	index, ok := parseMotionIndex(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid motion index",
		})
	}

	var req models.CastVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tally, err := Motions.CastVote(meetingID, caller(c), index, motion.Choice(req.Vote))
	if err != nil {
		return motionError(c, err)
	}

	return c.JSON(models.VoteResponse{
		Votes:    tally,
		HasVoted: true,
		Message:  "Vote recorded successfully",
	})
}

// CompleteVote explicitly closes the voting window and resolves the
// motion from the current tally.
func CompleteVote(c *fiber.Ctx) error {
	meetingID, ok := parseMeetingID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting ID",
		})
	}
	index, ok := parseMotionIndex(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid motion index",
		})
	}

	resolved, err := Motions.CompleteVote(meetingID, caller(c), index)
	if err != nil {
		return motionError(c, err)
	}

	LogActivity(meetingID, middleware.GetUserID(c), "vote_completed", map[string]interface{}{
		"motion": resolved.Name,
		"result": resolved.Result,
	})

	return c.JSON(models.CompleteVoteResponse{
		Motion:  *resolved,
		Message: "Voting completed successfully",
		Result:  *resolved.Result,
		Votes:   resolved.Votes,
	})
}
