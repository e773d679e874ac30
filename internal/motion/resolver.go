package motion

// Resolve computes the outcome of a vote from its tally alone:
// no ballots → no-votes, even split → tied, otherwise majority wins.
func Resolve(t Tally) Status {
	switch {
	case t.Total() == 0:
		return StatusNoVotes
	case t.Aye == t.No:
		return StatusTied
	case t.Aye > t.No:
		return StatusApproved
	default:
		return StatusFailed
	}
}
