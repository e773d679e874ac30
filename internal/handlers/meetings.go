package handlers

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
)

// Excludes confusing characters like 0, O, 1, I
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateJoinCode() string {
	code := make([]byte, 6)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeAlphabet))))
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// uniqueJoinCode regenerates until the code is unused.
func uniqueJoinCode() string {
	for {
		code := generateJoinCode()
		var count int64
		database.DB.Model(&models.Meeting{}).Where("join_code = ?", code).Count(&count)
		if count == 0 {
			return code
		}
	}
}

// updateMeetingColumns writes only the columns a plumbing handler owns.
// The motion queue and its version column are engine territory: writing
// them back from a row read before an engine commit would erase
// concurrent votes and roll back the optimistic lock.
func updateMeetingColumns(meeting *models.Meeting, cols map[string]interface{}) error {
	return database.DB.Model(meeting).Updates(cols).Error
}

func canManageMeeting(meeting *models.Meeting, userID uuid.UUID, role string) bool {
	return role == "admin" || meeting.ChairmanID == userID
}

func canAccessMeeting(meeting *models.Meeting, userID uuid.UUID, role string) bool {
	return role == "admin" || meeting.ChairmanID == userID || meeting.Participants.Contains(userID)
}

// GetMeetings returns the meetings visible to the caller: admins see
// all, everyone else sees meetings they chair or joined.
func GetMeetings(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	var meetings []models.Meeting
	if err := database.DB.Order("created_at DESC").Find(&meetings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch meetings",
		})
	}

	if role == "admin" {
		return c.JSON(meetings)
	}

	// Participants live in a JSON column, so visibility is filtered here
	// rather than in SQL.
	visible := make([]models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.ChairmanID == userID || m.Participants.Contains(userID) {
			visible = append(visible, m)
		}
	}
	return c.JSON(visible)
}

// CreateMeeting creates a meeting with the caller as chairman and sole
// participant, seeded with the standing agenda items.
func CreateMeeting(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	meeting := models.Meeting{
		JoinCode:     uniqueJoinCode(),
		ChairmanID:   userID,
		Name:         req.Name,
		Description:  req.Description,
		Datetime:     req.Datetime,
		Agenda:       models.StringList{"Call to order", "Approval of previous minutes"},
		Participants: models.UUIDList{userID},
		MotionQueue:  models.MotionQueue{},
	}

	if err := database.DB.Create(&meeting).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create meeting",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(meeting)
}

// GetMeeting returns one meeting. Any motion whose voting window has
// passed is resolved on the way out, so polling clients observe expiry
// without a background timer.
func GetMeeting(c *fiber.Ctx) error {
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

	if _, err := Motions.SyncExpired(meetingID); err != nil {
		return motionError(c, err)
	}
	if err := database.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	}

	return c.JSON(meeting)
}

// UpdateMeeting edits meeting metadata, the agenda and the two pointers.
// The motion queue is never written through this path.
func UpdateMeeting(c *fiber.Ctx) error {
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

	if !canManageMeeting(&meeting, userID, role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Unauthorized to update this meeting",
		})
	}

	if meeting.Ended {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Meeting has ended",
		})
	}

	var req models.UpdateMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	cols := map[string]interface{}{}
	if req.Name != nil {
		meeting.Name = *req.Name
		cols["name"] = *req.Name
	}
	if req.Description != nil {
		meeting.Description = *req.Description
		cols["description"] = *req.Description
	}
	if req.Datetime != nil {
		meeting.Datetime = *req.Datetime
		cols["datetime"] = *req.Datetime
	}
	if req.Agenda != nil {
		meeting.Agenda = *req.Agenda
		cols["agenda"] = *req.Agenda
	}
	if req.CurrentAgendaIndex != nil && *req.CurrentAgendaIndex >= 0 {
		meeting.CurrentAgendaIndex = *req.CurrentAgendaIndex
		cols["current_agenda_index"] = *req.CurrentAgendaIndex
	}
	if req.CurrentMotionIndex != nil && *req.CurrentMotionIndex >= 0 {
		meeting.CurrentMotionIndex = *req.CurrentMotionIndex
		cols["current_motion_index"] = *req.CurrentMotionIndex
	}

	if len(cols) > 0 {
		if err := updateMeetingColumns(&meeting, cols); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update meeting",
			})
		}
	}

	return c.JSON(meeting)
}

// DeleteMeeting removes a meeting (chairman or admin only).
func DeleteMeeting(c *fiber.Ctx) error {
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

	if !canManageMeeting(&meeting, userID, role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Unauthorized to delete this meeting",
		})
	}

	if err := database.DB.Delete(&meeting).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete meeting",
		})
	}

	return c.JSON(fiber.Map{"message": "Meeting deleted successfully"})
}

// JoinMeeting adds the caller to a meeting via its 6-character code.
func JoinMeeting(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.JoinMeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.JoinCode) != 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid join code",
		})
	}

	var meeting models.Meeting
	code := strings.ToUpper(req.JoinCode)
	if err := database.DB.Where("join_code = ?", code).First(&meeting).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
		})
	}

	if meeting.Participants.Contains(userID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You are already a participant of this meeting",
		})
	}

	meeting.Participants = append(meeting.Participants, userID)
	if err := updateMeetingColumns(&meeting, map[string]interface{}{
		"participants": meeting.Participants,
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join meeting",
		})
	}

	LogActivity(meeting.ID, userID, "member_joined", nil)

	return c.JSON(fiber.Map{
		"message": "Successfully joined meeting",
		"meeting": meeting,
	})
}

// UpdateParticipants replaces the participant list (chairman or admin).
func UpdateParticipants(c *fiber.Ctx) error {
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

	if !canManageMeeting(&meeting, userID, role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Unauthorized to update participants",
		})
	}

	var req models.UpdateParticipantsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	meeting.Participants = req.Participants
	if err := updateMeetingColumns(&meeting, map[string]interface{}{
		"participants": meeting.Participants,
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update participants",
		})
	}

	return c.JSON(meeting)
}

// EndMeeting sets the ended flag. Ended meetings stay readable but all
// motion operations are rejected.
func EndMeeting(c *fiber.Ctx) error {
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

	if !canManageMeeting(&meeting, userID, role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the chairman or an admin can end the meeting",
		})
	}

	if meeting.Ended {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Meeting has already ended",
		})
	}

	// Settle any open voting window before closing the record.
	if _, err := Motions.SyncExpired(meetingID); err != nil {
		return motionError(c, err)
	}

	meeting.Ended = true
	if err := updateMeetingColumns(&meeting, map[string]interface{}{
		"ended": true,
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to end meeting",
		})
	}
	if err := database.DB.First(&meeting, "id = ?", meetingID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to end meeting",
		})
	}

	LogActivity(meeting.ID, userID, "meeting_ended", nil)

	return c.JSON(meeting)
}
