package motion

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization marks a caller lacking the required role.
	ErrAuthorization = errors.New("not authorized")
	// ErrNotFound marks a missing meeting or motion.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation that is not legal in the motion's
	// current status, including votes arriving after the window closed.
	ErrInvalidState = errors.New("invalid motion state")
	// ErrDuplicateVote marks a member who already voted on this motion.
	ErrDuplicateVote = errors.New("already voted")
	// ErrStoreConflict marks a lost concurrent write race. The engine
	// retries once before surfacing it.
	ErrStoreConflict = errors.New("concurrent update conflict")
)

// VotingClosedError rejects a late vote while reporting the final outcome
// to the voter. It matches ErrInvalidState under errors.Is.
type VotingClosedError struct {
	Result Status
	Votes  Tally
}

func (e *VotingClosedError) Error() string { return "voting period has ended" }

func (e *VotingClosedError) Is(target error) bool { return target == ErrInvalidState }
