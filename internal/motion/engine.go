package motion

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultWindow is the voting window applied when none is configured.
const DefaultWindow = 45 * time.Second

// ReviewAction is a chairman's verdict on a pending motion.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionDeny    ReviewAction = "deny"
)

// ParseReviewAction validates a raw review action string.
func ParseReviewAction(s string) (ReviewAction, error) {
	switch ReviewAction(s) {
	case ActionApprove, ActionDeny:
		return ReviewAction(s), nil
	}
	return "", fmt.Errorf("%w: action must be %q or %q", ErrValidation, ActionApprove, ActionDeny)
}

// Engine applies motion lifecycle transitions against a Store. It holds
// no per-meeting state; every operation is a load, a validation against
// the freshly loaded record, and a version-checked replace. A lost
// version race is retried once against re-read state before surfacing.
type Engine struct {
	store  Store
	clock  Clock
	window time.Duration
}

// NewEngine builds an engine. A non-positive window falls back to
// DefaultWindow.
func NewEngine(store Store, clock Clock, window time.Duration) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Engine{store: store, clock: clock, window: window}
}

// Window returns the configured voting window duration.
func (e *Engine) Window() time.Duration { return e.window }

// apply loads the meeting, runs fn against the record, and commits the
// mutated motion queue under the loaded version. On a version conflict
// the whole load-validate-write unit runs once more, so fn's status
// guards are always evaluated against current state.
func (e *Engine) apply(meetingID uuid.UUID, fn func(*Record) error) (*Record, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		rec, err := e.store.Load(meetingID)
		if err != nil {
			return nil, err
		}
		if err := fn(rec); err != nil {
			return nil, err
		}
		if err := e.store.Replace(rec.ID, rec.Version, rec.Motions); err != nil {
			if errors.Is(err, ErrStoreConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return rec, nil
	}
	return nil, lastErr
}

// Propose creates a pending motion at the end of the queue. Any meeting
// participant may propose; name and description are required.
func (e *Engine) Propose(meetingID uuid.UUID, caller Caller, name, description string) (*Motion, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrValidation)
	}

	var created Motion
	_, err := e.apply(meetingID, func(rec *Record) error {
		if rec.Ended {
			return fmt.Errorf("%w: meeting has ended", ErrInvalidState)
		}
		if !rec.isParticipant(caller) {
			return fmt.Errorf("%w: not a participant of this meeting", ErrAuthorization)
		}
		created = Motion{
			ID:          uuid.New(),
			Name:        name,
			Description: description,
			Creator:     caller.Name,
			Status:      StatusPending,
			ProposedBy:  caller.ID,
			ProposedAt:  e.clock.Now(),
			VoterIDs:    []uuid.UUID{},
		}
		rec.Motions = append(rec.Motions, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Review applies a chairman's verdict to a pending motion. Approval
// moves the motion to the end of the queue with status proposed so the
// queue preserves approval order; denial keeps it in place as a terminal
// denied record for the minutes. A motion that is no longer pending
// (a second reviewer losing the race) is rejected.
func (e *Engine) Review(meetingID uuid.UUID, caller Caller, index int, action ReviewAction) (*Record, error) {
	return e.apply(meetingID, func(rec *Record) error {
		if rec.Ended {
			return fmt.Errorf("%w: meeting has ended", ErrInvalidState)
		}
		if !rec.canModerate(caller) {
			return fmt.Errorf("%w: only the chairman or an admin can review motions", ErrAuthorization)
		}
		m, err := rec.motionAt(index)
		if err != nil {
			return err
		}
		if m.Status != StatusPending {
			return fmt.Errorf("%w: motion is not pending review", ErrInvalidState)
		}

		now := e.clock.Now()
		m.ReviewedBy = caller.Name
		m.ReviewedAt = &now

		if action == ActionDeny {
			denied := StatusDenied
			m.Status = StatusDenied
			m.Result = &denied
			return nil
		}

		m.Status = StatusProposed
		approved := *m
		rec.Motions = append(rec.Motions[:index], rec.Motions[index+1:]...)
		rec.Motions = append(rec.Motions, approved)
		return nil
	})
}

// StartVote opens the voting window on an approved motion. The tally,
// voter set and result are always reset; opening a vote discards any
// earlier count.
func (e *Engine) StartVote(meetingID uuid.UUID, caller Caller, index int) (*Motion, error) {
	var started Motion
	_, err := e.apply(meetingID, func(rec *Record) error {
		if rec.Ended {
			return fmt.Errorf("%w: meeting has ended", ErrInvalidState)
		}
		if !rec.canModerate(caller) {
			return fmt.Errorf("%w: only the chairman or an admin can start a vote", ErrAuthorization)
		}
		m, err := rec.motionAt(index)
		if err != nil {
			return err
		}
		if m.Status != StatusProposed {
			return fmt.Errorf("%w: motion is not open for voting", ErrInvalidState)
		}
		endsAt := e.clock.Now().Add(e.window)
		m.Status = StatusVoting
		m.VotingEndsAt = &endsAt
		m.Votes = Tally{}
		m.VoterIDs = []uuid.UUID{}
		m.Result = nil
		started = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &started, nil
}

// CastVote records one ballot from a member. Each member votes at most
// once per motion instance. A vote arriving after the window closed is
// rejected and, if the motion is still unresolved, triggers the expiry
// resolution itself: the first observer past the deadline settles the
// outcome from the tally as it stands. The rejection carries the final
// result and tally back to the late voter.
func (e *Engine) CastVote(meetingID uuid.UUID, caller Caller, index int, choice Choice) (Tally, error) {
	if _, err := ParseChoice(string(choice)); err != nil {
		return Tally{}, err
	}

	var (
		tally  Tally
		closed *VotingClosedError
	)
	_, err := e.apply(meetingID, func(rec *Record) error {
		closed = nil
		if rec.Ended {
			return fmt.Errorf("%w: meeting has ended", ErrInvalidState)
		}
		if !rec.isParticipant(caller) {
			return fmt.Errorf("%w: not a participant of this meeting", ErrAuthorization)
		}
		m, err := rec.motionAt(index)
		if err != nil {
			return err
		}
		if m.Status != StatusVoting {
			// Another observer may already have resolved an expired
			// window; report the settled outcome instead of a bare
			// state error.
			if m.Status.IsResolved() {
				return &VotingClosedError{Result: m.Status, Votes: m.Votes}
			}
			return fmt.Errorf("%w: motion is not currently accepting votes", ErrInvalidState)
		}
		if m.VotingEndsAt != nil && e.clock.Now().After(*m.VotingEndsAt) {
			outcome := Resolve(m.Votes)
			m.resolve(outcome)
			closed = &VotingClosedError{Result: outcome, Votes: m.Votes}
			tally = m.Votes
			return nil
		}
		if m.HasVoted(caller.ID) {
			return fmt.Errorf("%w: you have already voted on this motion", ErrDuplicateVote)
		}
		m.VoterIDs = append(m.VoterIDs, caller.ID)
		switch choice {
		case ChoiceAye:
			m.Votes.Aye++
		case ChoiceNo:
			m.Votes.No++
		}
		tally = m.Votes
		return nil
	})
	if err != nil {
		var vc *VotingClosedError
		if errors.As(err, &vc) {
			return vc.Votes, vc
		}
		return Tally{}, err
	}
	if closed != nil {
		return tally, closed
	}
	return tally, nil
}

// CompleteVote explicitly closes the voting window and resolves the
// motion from the current tally. Only a motion in voting status can be
// completed, which makes the operation idempotence-safe: a second close,
// or a close racing an expiry resolution, observes a non-voting status
// and fails without re-tallying.
func (e *Engine) CompleteVote(meetingID uuid.UUID, caller Caller, index int) (*Motion, error) {
	var resolved Motion
	_, err := e.apply(meetingID, func(rec *Record) error {
		if rec.Ended {
			return fmt.Errorf("%w: meeting has ended", ErrInvalidState)
		}
		if !rec.canModerate(caller) {
			return fmt.Errorf("%w: only the chairman or an admin can complete voting", ErrAuthorization)
		}
		m, err := rec.motionAt(index)
		if err != nil {
			return err
		}
		if m.Status != StatusVoting {
			return fmt.Errorf("%w: motion is not currently in voting state", ErrInvalidState)
		}
		m.resolve(Resolve(m.Votes))
		resolved = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// SyncExpired resolves every motion whose voting window has passed.
// Called on the read path so expiry needs no background timer: the
// first reader past a deadline settles the outcome. Losing the write
// race to a concurrent resolver is success, not an error; the re-read
// on retry simply finds nothing left to resolve.
func (e *Engine) SyncExpired(meetingID uuid.UUID) (*Record, error) {
	rec, err := e.store.Load(meetingID)
	if err != nil {
		return nil, err
	}
	if !e.expireDue(rec) {
		return rec, nil
	}
	if err := e.store.Replace(rec.ID, rec.Version, rec.Motions); err != nil {
		if !errors.Is(err, ErrStoreConflict) {
			return nil, err
		}
		rec, err = e.store.Load(meetingID)
		if err != nil {
			return nil, err
		}
		if e.expireDue(rec) {
			if err := e.store.Replace(rec.ID, rec.Version, rec.Motions); err != nil {
				return nil, err
			}
		}
	}
	return rec, nil
}

// expireDue resolves expired voting windows in place and reports whether
// anything changed.
func (e *Engine) expireDue(rec *Record) bool {
	now := e.clock.Now()
	changed := false
	for i := range rec.Motions {
		m := &rec.Motions[i]
		if m.Status == StatusVoting && m.VotingEndsAt != nil && now.After(*m.VotingEndsAt) {
			m.resolve(Resolve(m.Votes))
			changed = true
		}
	}
	return changed
}
