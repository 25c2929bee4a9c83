package round

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

// MaxRecentPlays is the capacity of the recent-plays feed.
const MaxRecentPlays = 10

// Play summarises one spin for display.
type Play struct {
	ID     uuid.UUID          `json:"id"`
	Player ledger.Identity    `json:"player"`
	Paid   uint64             `json:"paid"`
	Won    uint64             `json:"won"`
	Asset  ledger.AssetID     `json:"asset,omitempty"`
	Kind   gamemath.TokenKind `json:"kind"`
	At     time.Time          `json:"at"`
}

// RecentPlays is a fixed-size feed, most recent first.
type RecentPlays struct {
	Entries [MaxRecentPlays]Play `json:"entries"`
	Count   int                  `json:"count"`
}

// Push inserts p at the front, evicting the oldest entry when full.
func (r *RecentPlays) Push(p Play) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	n := r.Count
	if n == MaxRecentPlays {
		n--
	}
	copy(r.Entries[1:n+1], r.Entries[:n])
	r.Entries[0] = p
	r.Count = n + 1
}

// List returns the entries, most recent first.
func (r *RecentPlays) List() []Play {
	out := make([]Play, r.Count)
	copy(out, r.Entries[:r.Count])
	return out
}
