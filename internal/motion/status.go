package motion

import "fmt"

// Status is the lifecycle state of a motion. The set is closed: the
// legacy schema values "active" and "completed" are not accepted.
type Status string

const (
	// StatusPending means the motion was proposed and awaits chairman review.
	StatusPending Status = "pending"
	// StatusProposed means the chairman approved the motion and it sits in
	// the queue waiting for the floor to open.
	StatusProposed Status = "proposed"
	// StatusVoting means a voting window is open on the motion.
	StatusVoting Status = "voting"

	// Terminal states.
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusFailed   Status = "failed"
	StatusTied     Status = "tied"
	StatusNoVotes  Status = "no-votes"
)

// ParseStatus validates a raw status string. Legacy values from the old
// schema ("active", "completed") are rejected rather than silently mapped.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProposed, StatusVoting,
		StatusApproved, StatusDenied, StatusFailed, StatusTied, StatusNoVotes:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown motion status %q", ErrValidation, s)
}

// IsTerminal reports whether no further transition exists out of s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusDenied, StatusFailed, StatusTied, StatusNoVotes:
		return true
	}
	return false
}

// IsResolved reports whether s was produced by tallying votes.
// Denied motions are terminal but never went to a vote.
func (s Status) IsResolved() bool {
	switch s {
	case StatusApproved, StatusFailed, StatusTied, StatusNoVotes:
		return true
	}
	return false
}
