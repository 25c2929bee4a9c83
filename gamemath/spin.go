package gamemath

import (
	"fmt"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

// MaxDrawAttempts bounds the anti-drain redraw loop.
const MaxDrawAttempts = 256

// Outcome is the resolved result of one spin.
type Outcome struct {
	Index  int            `json:"index"`
	Amount uint64         `json:"amount"`
	Kind   TokenKind      `json:"kind"`
	Asset  ledger.AssetID `json:"asset,omitempty"`
	// Display is the tier's first listed asset, shown in the recent-plays feed.
	Display  ledger.AssetID `json:"display,omitempty"`
	Seed     uint64         `json:"seed"`
	Attempts int            `json:"attempts"`
}

// Spin draws a tier for seed. A draw paying at least half of poolBalance is
// rejected and redrawn with seed+1. The drawn tier hands out its last live
// asset; fungible tiers consume it.
func (c *Catalog) Spin(seed, poolBalance uint64) (Outcome, error) {
	limit := poolBalance / 2
	if !c.hasTierUnder(limit) {
		return Outcome{}, fmt.Errorf("%w: pool=%d", ErrNoEligibleTier, poolBalance)
	}
	for attempt := 1; attempt <= MaxDrawAttempts; attempt++ {
		idx, ok := c.PickTier(uint32(seed))
		if !ok {
			return Outcome{}, ErrNoEligibleTier
		}
		c.LastIndex = idx
		tier := &c.Tiers[idx]
		if tier.Amount >= limit {
			seed++
			continue
		}
		out := Outcome{Index: idx, Amount: tier.Amount, Kind: tier.Kind, Seed: seed, Attempts: attempt}
		if tier.Live > 0 {
			out.Asset = tier.Assets[tier.Live-1]
			out.Display = tier.Assets[0]
			if tier.Kind == TokenFungible {
				tier.Live--
			}
		}
		return out, nil
	}
	return Outcome{}, fmt.Errorf("%w: %d draws rejected", ErrNoEligibleTier, MaxDrawAttempts)
}

func (c *Catalog) hasTierUnder(limit uint64) bool {
	for i := 0; i < c.Count; i++ {
		if c.Tiers[i].Weight > 0 && c.Tiers[i].Amount < limit {
			return true
		}
	}
	return false
}
