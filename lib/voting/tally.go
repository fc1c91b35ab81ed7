package voting

import (
	"fmt"

	"boscoin.io/gasmanager/lib/common"
)

// Tally is the open vote on one (action, target) pair. An inactive tally
// has no votes and a zero start height.
type Tally struct {
	Action      ActionType       `json:"action"`
	Target      common.Target    `json:"target"`
	TotalVotes  uint64           `json:"total_votes"`
	StartHeight uint64           `json:"start_height"`
	Voters      []common.Address `json:"voters"`
}

func NewTally(action ActionType, target common.Target) *Tally {
	return &Tally{
		Action: action,
		Target: target,
		Voters: []common.Address{},
	}
}

func (t *Tally) IsActive() bool {
	return t.StartHeight != 0
}

// ExpirationHeight is the last height at which the tally still counts.
func (t *Tally) ExpirationHeight(window uint64) uint64 {
	if !t.IsActive() {
		return 0
	}

	return t.StartHeight + window
}

func (t *Tally) IsExpired(height, window uint64) bool {
	return t.IsActive() && height > t.ExpirationHeight(window)
}

// Record appends `voter`; the first vote opens the tally at `height`. It
// returns true when the tally was opened by this vote.
func (t *Tally) Record(voter common.Address, height uint64) (opened bool) {
	if !t.IsActive() {
		if height == 0 {
			height = 1
		}
		t.StartHeight = height
		opened = true
	}

	t.Voters = append(t.Voters, voter)
	t.TotalVotes++

	return
}

func (t *Tally) Reset() {
	t.TotalVotes = 0
	t.StartHeight = 0
	t.Voters = []common.Address{}
}

func (t *Tally) Invariant() error {
	if uint64(len(t.Voters)) != t.TotalVotes {
		return fmt.Errorf("tally %s: %d voters but %d votes", t.Action, len(t.Voters), t.TotalVotes)
	}
	if (t.StartHeight == 0) != (t.TotalVotes == 0) {
		return fmt.Errorf("tally %s: start height %d with %d votes", t.Action, t.StartHeight, t.TotalVotes)
	}

	return nil
}

func (t *Tally) Clone() *Tally {
	n := *t
	n.Voters = append([]common.Address{}, t.Voters...)

	return &n
}

func (t Tally) String() string {
	return fmt.Sprintf("%s/%s votes=%d start=%d", t.Action, t.Target.Hex(), t.TotalVotes, t.StartHeight)
}
