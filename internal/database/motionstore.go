package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TigerK9/CSCI-432-Final/internal/models"
	"github.com/TigerK9/CSCI-432-Final/internal/motion"
)

// MotionStore adapts the meetings table to the engine's Store interface.
// The motion queue lives in one JSON column on the meeting row; Replace
// commits it with an optimistic version check so concurrent writers
// serialize per meeting without a process-level lock.
type MotionStore struct {
	db *gorm.DB
}

func NewMotionStore(db *gorm.DB) *MotionStore {
	return &MotionStore{db: db}
}

func (s *MotionStore) Load(meetingID uuid.UUID) (*motion.Record, error) {
	var meeting models.Meeting
	if err := s.db.First(&meeting, "id = ?", meetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meeting %s", motion.ErrNotFound, meetingID)
		}
		return nil, err
	}
	return &motion.Record{
		ID:           meeting.ID,
		ChairmanID:   meeting.ChairmanID,
		Participants: meeting.Participants,
		Ended:        meeting.Ended,
		Motions:      meeting.MotionQueue,
		Version:      meeting.Version,
	}, nil
}

func (s *MotionStore) Replace(meetingID uuid.UUID, version int64, motions []motion.Motion) error {
	queue := models.MotionQueue(motions)
	result := s.db.Model(&models.Meeting{}).
		Where("id = ? AND version = ?", meetingID, version).
		Updates(map[string]interface{}{
			"motion_queue": queue,
			"version":      version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the meeting vanished or another writer bumped the
		// version first. Distinguish so the engine only retries races.
		var count int64
		s.db.Model(&models.Meeting{}).Where("id = ?", meetingID).Count(&count)
		if count == 0 {
			return fmt.Errorf("%w: meeting %s", motion.ErrNotFound, meetingID)
		}
		return fmt.Errorf("%w: meeting %s version %d", motion.ErrStoreConflict, meetingID, version)
	}
	return nil
}
