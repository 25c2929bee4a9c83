package round

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

const (
	// MaxClaimLines bounds the asset lines of one pending claim.
	MaxClaimLines = gamemath.MaxTiers * gamemath.MaxAssetsPerTier
	// RewardAssetDecimals is the extra precision at which non-primary
	// reward assets are stored on claim lines.
	RewardAssetDecimals = 5
)

var decimalScale = uint64(math.Pow10(RewardAssetDecimals))

var (
	ErrInvalidReward   = errors.New("round: invalid reward")
	ErrClaimLinesFull  = errors.New("round: claim lines full")
	ErrClaimUnsettled  = errors.New("round: claim still holds unsettled rewards")
	ErrWrongOwner      = errors.New("round: record belongs to another player")
	ErrAlreadyClaimed  = errors.New("round: line already claimed")
	ErrLineOutOfBounds = errors.New("round: claim line out of range")
)

// ClaimStatus is where a pending claim sits in its lifecycle.
type ClaimStatus uint8

const (
	ClaimCreated ClaimStatus = iota
	ClaimPartiallySettled
	ClaimSettled
)

func (s ClaimStatus) String() string {
	switch s {
	case ClaimCreated:
		return "created"
	case ClaimPartiallySettled:
		return "partially_settled"
	case ClaimSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// ClaimLine is one asset payout owed to the player.
type ClaimLine struct {
	Asset   ledger.AssetID `json:"asset"`
	Amount  uint64         `json:"amount"`
	Claimed bool           `json:"claimed"`
}

// PendingClaim holds what one spin owes its player until they collect it.
type PendingClaim struct {
	Owner         ledger.Identity `json:"owner"`
	RoundID       uint64          `json:"roundId"`
	Round         uint64          `json:"round"`
	Native        bool            `json:"native"`
	NativeAmount  uint64          `json:"nativeAmount"`
	NativeClaimed bool            `json:"nativeClaimed"`
	Lines         []ClaimLine     `json:"lines"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NewPendingClaim records out as owed to owner. A native outcome is owed only
// from the native vault; only fungible outcomes carry an asset line.
func NewPendingClaim(owner ledger.Identity, roundID, round uint64, out gamemath.Outcome, now time.Time) (*PendingClaim, error) {
	c := &PendingClaim{
		Owner:     owner,
		RoundID:   roundID,
		Round:     round,
		Native:    out.Kind == gamemath.TokenNative,
		CreatedAt: now,
	}
	if c.Native {
		c.NativeAmount = out.Amount
	}
	if out.Kind == gamemath.TokenFungible && out.Asset != "" {
		if err := c.AddLine(out.Asset, out.Amount); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddLine appends an unclaimed asset line.
func (c *PendingClaim) AddLine(asset ledger.AssetID, amount uint64) error {
	if len(c.Lines) >= MaxClaimLines {
		return ErrClaimLinesFull
	}
	c.Lines = append(c.Lines, ClaimLine{Asset: asset, Amount: amount})
	return nil
}

// ClaimNative consumes the native payout. It succeeds once, and only for the
// exact recorded amount.
func (c *PendingClaim) ClaimNative(amount uint64) error {
	if !c.Native || c.NativeClaimed || amount != c.NativeAmount {
		return fmt.Errorf("%w: native claim of %d", ErrInvalidReward, amount)
	}
	c.NativeClaimed = true
	return nil
}

// MatchAsset finds the first unclaimed line for asset whose stored amount
// corresponds to amount. Lines for the primary asset store plain amounts; any
// other asset is stored scaled by 10^RewardAssetDecimals. Returns -1 if
// nothing matches.
func (c *PendingClaim) MatchAsset(asset, primary ledger.AssetID, amount uint64) int {
	want := amount
	if asset != primary {
		if amount > math.MaxUint64/decimalScale {
			return -1
		}
		want = amount * decimalScale
	}
	for i, line := range c.Lines {
		if line.Claimed || line.Asset != asset {
			continue
		}
		if line.Amount == want {
			return i
		}
	}
	return -1
}

// MarkClaimed flips line i to claimed, failing if it already was.
func (c *PendingClaim) MarkClaimed(i int) error {
	if i < 0 || i >= len(c.Lines) {
		return fmt.Errorf("%w: %d", ErrLineOutOfBounds, i)
	}
	if c.Lines[i].Claimed {
		return fmt.Errorf("%w: %d", ErrAlreadyClaimed, i)
	}
	c.Lines[i].Claimed = true
	return nil
}

// Status derives the lifecycle state from the native flag and the lines.
func (c *PendingClaim) Status() ClaimStatus {
	owed, paid := 0, 0
	if c.Native {
		owed++
		if c.NativeClaimed {
			paid++
		}
	}
	for _, line := range c.Lines {
		owed++
		if line.Claimed {
			paid++
		}
	}
	switch {
	case paid == owed:
		return ClaimSettled
	case paid == 0:
		return ClaimCreated
	default:
		return ClaimPartiallySettled
	}
}

// Unsettled reports whether anything of value is still owed. Zero-amount
// lines and payouts do not count.
func (c *PendingClaim) Unsettled() bool {
	if c.Native && !c.NativeClaimed && c.NativeAmount > 0 {
		return true
	}
	for _, line := range c.Lines {
		if !line.Claimed && line.Amount > 0 {
			return true
		}
	}
	return false
}
