package round

import (
	"fmt"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

// Progress counts the rounds a player has spun. Created on the first spin.
type Progress struct {
	Owner  ledger.Identity `json:"owner"`
	Rounds uint64          `json:"rounds"`
}

// Advance records one more round for owner and returns the new round number.
// A zero Progress is claimed by owner on first use.
func (p *Progress) Advance(owner ledger.Identity) (uint64, error) {
	if p.Owner == "" {
		p.Owner = owner
	}
	if p.Owner != owner {
		return 0, fmt.Errorf("%w: progress of %s used by %s", ErrWrongOwner, p.Owner, owner)
	}
	p.Rounds++
	return p.Rounds, nil
}
