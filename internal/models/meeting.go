package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TigerK9/CSCI-432-Final/internal/motion"
)

type Meeting struct {
	ID                 uuid.UUID   `json:"meetingId" gorm:"type:uuid;primaryKey"`
	JoinCode           string      `json:"joinCode" gorm:"uniqueIndex;size:6"`
	ChairmanID         uuid.UUID   `json:"chairman" gorm:"type:uuid;index;not null"`
	Name               string      `json:"name" gorm:"not null"`
	Description        string      `json:"description"`
	Datetime           string      `json:"datetime"`
	Agenda             StringList  `json:"agenda" gorm:"type:text"`
	CurrentAgendaIndex int         `json:"currentAgendaIndex" gorm:"default:0"`
	CurrentMotionIndex int         `json:"currentMotionIndex" gorm:"default:0"`
	Participants       UUIDList    `json:"participants" gorm:"type:text"`
	MotionQueue        MotionQueue `json:"motionQueue" gorm:"type:text"`
	Ended              bool        `json:"ended" gorm:"default:false"`
	// Version guards the motion queue's read-modify-write cycle. Bumped
	// on every queue replace; a stale writer's UPDATE matches no rows.
	Version   int64          `json:"-" gorm:"default:0"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Meeting DTOs
type CreateMeetingRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Datetime    string `json:"datetime"`
}

type UpdateMeetingRequest struct {
	Name               *string     `json:"name"`
	Description        *string     `json:"description"`
	Datetime           *string     `json:"datetime"`
	Agenda             *StringList `json:"agenda"`
	CurrentAgendaIndex *int        `json:"currentAgendaIndex"`
	CurrentMotionIndex *int        `json:"currentMotionIndex"`
}

type JoinMeetingRequest struct {
	JoinCode string `json:"joinCode" validate:"required,len=6"`
}

type UpdateParticipantsRequest struct {
	Participants []uuid.UUID `json:"participants" validate:"required"`
}

type ProposeMotionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type ReviewMotionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve deny"`
}

type CastVoteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=aye no"`
}

type VoteResponse struct {
	Votes    motion.Tally `json:"votes"`
	HasVoted bool         `json:"hasVoted"`
	Message  string       `json:"message"`
}

type CompleteVoteResponse struct {
	Motion  motion.Motion `json:"motion"`
	Message string        `json:"message"`
	Result  motion.Status `json:"result"`
	Votes   motion.Tally  `json:"votes"`
}

// MinutesEntry is one reviewed motion as it appears in the minutes.
type MinutesEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Creator     string         `json:"creator"`
	Status      motion.Status  `json:"status"`
	Result      *motion.Status `json:"result"`
	Votes       motion.Tally   `json:"votes"`
	ReviewedBy  string         `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time     `json:"reviewedAt,omitempty"`
}

type MinutesResponse struct {
	MeetingID uuid.UUID      `json:"meetingId"`
	Name      string         `json:"name"`
	Datetime  string         `json:"datetime"`
	Agenda    StringList     `json:"agenda"`
	Ended     bool           `json:"ended"`
	Motions   []MinutesEntry `json:"motions"`
}
