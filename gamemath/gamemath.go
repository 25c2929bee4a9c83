package gamemath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

const (
	// MaxTiers is the number of wheel slots.
	MaxTiers = 15
	// MaxAssetsPerTier bounds the consumable reward assets of one tier.
	MaxAssetsPerTier = 10
)

var (
	ErrCatalogFull      = errors.New("gamemath: catalog full")
	ErrIndexOutOfRange  = errors.New("gamemath: tier index out of range")
	ErrInvalidTokenKind = errors.New("gamemath: invalid token kind")
	ErrTooManyAssets    = errors.New("gamemath: live asset count exceeds tier capacity")
	ErrNoEligibleTier   = errors.New("gamemath: no tier pays under half the prize pool")
)

// TokenKind is what a tier pays out in.
type TokenKind uint8

const (
	TokenFungible TokenKind = 1 // designated reward asset (or a tier's own assets)
	TokenNative   TokenKind = 2 // native currency from the native vault
)

func (k TokenKind) Valid() bool {
	return k == TokenFungible || k == TokenNative
}

func (k TokenKind) String() string {
	switch k {
	case TokenFungible:
		return "fungible"
	case TokenNative:
		return "native"
	default:
		return "unknown"
	}
}

// ParseTokenKind accepts "fungible" or "native", case-insensitively.
func ParseTokenKind(s string) (TokenKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fungible":
		return TokenFungible, nil
	case "native":
		return TokenNative, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTokenKind, s)
}

// Tier is one wheel slot. Weight is relative to the other active tiers.
// Assets[0:Live] are the reward assets still available to hand out.
type Tier struct {
	Weight uint32                           `json:"weight"`
	Kind   TokenKind                        `json:"kind"`
	Amount uint64                           `json:"amount"`
	Assets [MaxAssetsPerTier]ledger.AssetID `json:"assets"`
	Live   uint8                            `json:"live"`
}

// NewTier builds a tier from a variable-length asset list. live defaults to
// len(assets) when negative.
func NewTier(weight uint32, kind TokenKind, amount uint64, assets []ledger.AssetID, live int) (Tier, error) {
	if len(assets) > MaxAssetsPerTier {
		return Tier{}, fmt.Errorf("%w: %d assets", ErrTooManyAssets, len(assets))
	}
	if live < 0 {
		live = len(assets)
	}
	t := Tier{Weight: weight, Kind: kind, Amount: amount, Live: uint8(min(live, 255))}
	copy(t.Assets[:], assets)
	return t, t.validate()
}

func (t Tier) validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTokenKind, t.Kind)
	}
	if int(t.Live) > MaxAssetsPerTier {
		return fmt.Errorf("%w: live=%d", ErrTooManyAssets, t.Live)
	}
	return nil
}

// LiveAssets returns the assets not yet handed out.
func (t Tier) LiveAssets() []ledger.AssetID {
	out := make([]ledger.AssetID, t.Live)
	copy(out, t.Assets[:t.Live])
	return out
}

// Catalog is the wheel: Tiers[0:Count] are active. It never shrinks; a slot
// is retired by overwriting it or by lowering Count through SetTier.
type Catalog struct {
	Tiers     [MaxTiers]Tier `json:"tiers"`
	Count     int            `json:"count"`
	LastIndex int            `json:"lastIndex"`
}

// AddTier appends t to the active region.
func (c *Catalog) AddTier(t Tier) error {
	if c.Count >= MaxTiers {
		return ErrCatalogFull
	}
	if err := t.validate(); err != nil {
		return err
	}
	c.Tiers[c.Count] = t
	c.Count++
	return nil
}

// SetTier overwrites slot index and resizes the active region to count.
func (c *Catalog) SetTier(index int, t Tier, count int) error {
	if index < 0 || index >= MaxTiers {
		return fmt.Errorf("%w: index %d", ErrIndexOutOfRange, index)
	}
	if count < 0 || count > MaxTiers {
		return fmt.Errorf("%w: active count %d", ErrIndexOutOfRange, count)
	}
	if err := t.validate(); err != nil {
		return err
	}
	c.Tiers[index] = t
	c.Count = count
	return nil
}

// Active returns a copy of the active tiers.
func (c *Catalog) Active() []Tier {
	out := make([]Tier, c.Count)
	copy(out, c.Tiers[:c.Count])
	return out
}

// TotalWeight sums the weights of the active tiers.
func (c *Catalog) TotalWeight() uint64 {
	var total uint64
	for i := 0; i < c.Count; i++ {
		total += uint64(c.Tiers[i].Weight)
	}
	return total
}

// PickTier maps seed onto the cumulative weight distribution of the active
// tiers and returns the first tier whose cumulative weight exceeds
// seed mod total. Returns false if no active tier has weight.
func (c *Catalog) PickTier(seed uint32) (int, bool) {
	total := c.TotalWeight()
	if total == 0 {
		return 0, false
	}
	idx := uint64(seed) % total
	var cum uint64
	for i := 0; i < c.Count; i++ {
		cum += uint64(c.Tiers[i].Weight)
		if idx < cum {
			return i, true
		}
	}
	return c.Count - 1, true
}
