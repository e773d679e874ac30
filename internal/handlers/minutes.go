package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
)

// GetMinutes renders the meeting record: the agenda plus every reviewed
// motion with its outcome. Denied motions are retained in the queue
// precisely so they appear here.
func GetMinutes(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	meetingID, err := uuid.Parse(c.Params("meetingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting ID",
		})
	}

	var meeting models.Meeting
	if err := database.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	}

	if !canAccessMeeting(&meeting, userID, role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not authorized to access this meeting",
		})
	}

	// Settle expired windows so the minutes never show a stale open vote.
	if _, err := Motions.SyncExpired(meetingID); err != nil {
		return motionError(c, err)
	}
	if err := database.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	}

	entries := make([]models.MinutesEntry, 0, len(meeting.MotionQueue))
	for _, m := range meeting.MotionQueue {
		if m.ReviewedAt == nil {
			continue // still awaiting review
		}
		entries = append(entries, models.MinutesEntry{
			Name:        m.Name,
			Description: m.Description,
			Creator:     m.Creator,
			Status:      m.Status,
			Result:      m.Result,
			Votes:       m.Votes,
			ReviewedBy:  m.ReviewedBy,
			ReviewedAt:  m.ReviewedAt,
		})
	}

	return c.JSON(models.MinutesResponse{
		MeetingID: meeting.ID,
		Name:      meeting.Name,
		Datetime:  meeting.Datetime,
		Agenda:    meeting.Agenda,
		Ended:     meeting.Ended,
		Motions:   entries,
	})
}
