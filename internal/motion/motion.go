package motion

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Choice is a ballot option.
type Choice string

const (
	ChoiceAye Choice = "aye"
	ChoiceNo  Choice = "no"
)

// ParseChoice validates a raw ballot string.
func ParseChoice(s string) (Choice, error) {
	switch Choice(s) {
	case ChoiceAye, ChoiceNo:
		return Choice(s), nil
	}
	return "", fmt.Errorf("%w: vote must be %q or %q", ErrValidation, ChoiceAye, ChoiceNo)
}

// Tally is the running vote count for a motion.
type Tally struct {
	Aye int `json:"aye"`
	No  int `json:"no"`
}

// Total returns the number of ballots cast.
func (t Tally) Total() int { return t.Aye + t.No }

// Motion is one entry in a meeting's motion queue. Motions have no
// lifecycle outside their meeting; the whole queue is read and written
// as a unit.
type Motion struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Creator      string      `json:"creator"`
	Status       Status      `json:"status"`
	Result       *Status     `json:"result"`
	ProposedBy   uuid.UUID   `json:"proposedBy"`
	ProposedAt   time.Time   `json:"proposedAt"`
	Votes        Tally       `json:"votes"`
	VoterIDs     []uuid.UUID `json:"voterIds"`
	VotingEndsAt *time.Time  `json:"votingEndsAt"`
	ReviewedBy   string      `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time  `json:"reviewedAt,omitempty"`
}

// HasVoted reports whether the member already cast a ballot on this motion.
func (m *Motion) HasVoted(userID uuid.UUID) bool {
	for _, id := range m.VoterIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// resolve moves the motion into the terminal state produced by a tally.
func (m *Motion) resolve(outcome Status) {
	m.Status = outcome
	r := outcome
	m.Result = &r
	m.VotingEndsAt = nil
}

// Caller is the authenticated identity performing an operation.
type Caller struct {
	ID   uuid.UUID
	Name string
	Role string
}

// Roles understood by the engine. Meeting chairmanship is positional
// (recorded on the meeting) and independent of the account role.
const (
	RoleMember   = "member"
	RoleChairman = "chairman"
	RoleAdmin    = "admin"
)

// Record is the engine's view of a persisted meeting: the fields needed
// to authorize and apply motion operations, plus the version the store
// uses for its optimistic write check.
type Record struct {
	ID           uuid.UUID
	ChairmanID   uuid.UUID
	Participants []uuid.UUID
	Ended        bool
	Motions      []Motion
	Version      int64
}

func (r *Record) motionAt(index int) (*Motion, error) {
	if index < 0 || index >= len(r.Motions) {
		return nil, fmt.Errorf("%w: no motion at index %d", ErrNotFound, index)
	}
	return &r.Motions[index], nil
}

// isParticipant reports whether the caller may act in this meeting at all.
func (r *Record) isParticipant(c Caller) bool {
	if c.Role == RoleAdmin || c.ID == r.ChairmanID {
		return true
	}
	for _, id := range r.Participants {
		if id == c.ID {
			return true
		}
	}
	return false
}

// canModerate reports whether the caller may review motions and control
// voting: admins, chairman-role accounts, and the meeting's own chairman.
func (r *Record) canModerate(c Caller) bool {
	return c.Role == RoleAdmin || c.Role == RoleChairman || c.ID == r.ChairmanID
}

// Store persists meeting records. Load returns the current record and its
// version; Replace writes a new motion queue only if the version still
// matches, returning ErrStoreConflict otherwise. The version check is the
// sole serialization point for all motion operations.
type Store interface {
	Load(meetingID uuid.UUID) (*Record, error)
	Replace(meetingID uuid.UUID, version int64, motions []Motion) error
}

// Clock supplies the current time. Injected so voting-window expiry is
// testable without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
