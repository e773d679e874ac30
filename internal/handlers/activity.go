package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
)

// GetMeetingActivity returns paginated audit entries for a meeting
func GetMeetingActivity(c *fiber.Ctx) error {
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

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var activities []models.Activity
	database.DB.Where("meeting_id = ?", meetingID).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities)

	var total int64
	database.DB.Model(&models.Activity{}).Where("meeting_id = ?", meetingID).Count(&total)

	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// LogActivity is a helper to create audit entries from other handlers.
// Logging is best-effort: a failed insert never fails the operation it
// describes.
func LogActivity(meetingID, userID uuid.UUID, actionType string, metadata map[string]interface{}) {
	activity := models.Activity{
		MeetingID:  meetingID,
		UserID:     userID,
		ActionType: actionType,
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			s := string(data)
			activity.Metadata = &s
		}
	}

	database.DB.Create(&activity)
}
