package handlers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/models"
	"github.com/TigerK9/CSCI-432-Final/internal/motion"
)

// A handler that read the meeting row before an engine commit holds a
// stale queue and version. Its write must leave both columns alone.
func TestColumnScopedWritePreservesCommittedVote(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, database.Migrate())

	chairman := uuid.New()
	voter := uuid.New()
	meeting := models.Meeting{
		JoinCode:     "RACE01",
		ChairmanID:   chairman,
		Name:         "October Session",
		Participants: models.UUIDList{chairman, voter},
		MotionQueue: models.MotionQueue{{
			ID:      uuid.New(),
			Name:    "Budget",
			Creator: "Member A",
			Status:  motion.StatusVoting,
		}},
		Version: 3,
	}
	require.NoError(t, db.Create(&meeting).Error)

	// Handler reads its copy first.
	var stale models.Meeting
	require.NoError(t, db.First(&stale, "id = ?", meeting.ID).Error)

	// The engine commits a ballot behind its back.
	committed := make([]motion.Motion, len(meeting.MotionQueue))
	copy(committed, meeting.MotionQueue)
	committed[0].Votes.Aye = 1
	committed[0].VoterIDs = []uuid.UUID{voter}
	store := database.NewMotionStore(db)
	require.NoError(t, store.Replace(meeting.ID, 3, committed))

	// The stale handler now writes the column it owns.
	stale.Participants = append(stale.Participants, uuid.New())
	require.NoError(t, updateMeetingColumns(&stale, map[string]interface{}{
		"participants": stale.Participants,
	}))

	var after models.Meeting
	require.NoError(t, db.First(&after, "id = ?", meeting.ID).Error)
	require.Len(t, after.Participants, 3)
	require.Equal(t, 1, after.MotionQueue[0].Votes.Aye, "committed ballot survives")
	require.Equal(t, []uuid.UUID{voter}, after.MotionQueue[0].VoterIDs)
	require.Equal(t, int64(4), after.Version, "optimistic lock not rolled back")
}
