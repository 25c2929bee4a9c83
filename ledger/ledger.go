package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Identity names an account holder: a player, an admin, a fee wallet or a
// vault owned by the engine.
type Identity string

// AssetID names a fungible asset. Native is the chain's own currency.
type AssetID string

// Native is the asset id used for native-currency balances.
const Native AssetID = "native"

var (
	ErrInsufficientFunds    = errors.New("ledger: insufficient funds")
	ErrArithmeticOverflow   = errors.New("ledger: balance overflow")
	ErrUnauthorizedTransfer = errors.New("ledger: authority does not own source holding")
	ErrInvalidTransfer      = errors.New("ledger: invalid transfer")
)

// Holding is one balance: the amount of Asset held by Owner.
type Holding struct {
	Owner Identity `json:"owner"`
	Asset AssetID  `json:"asset"`
}

func (h Holding) String() string {
	return fmt.Sprintf("%s/%s", h.Owner, h.Asset)
}

// Transfer moves Amount of From.Asset from From to To. Authority must be the
// owner of From.
type Transfer struct {
	From      Holding  `json:"from"`
	To        Holding  `json:"to"`
	Authority Identity `json:"authority"`
	Amount    uint64   `json:"amount"`
}

// Reverse returns the compensating transfer, authorised by the receiver.
func (t Transfer) Reverse() Transfer {
	return Transfer{From: t.To, To: t.From, Authority: t.To.Owner, Amount: t.Amount}
}

func (t Transfer) validate() error {
	if t.From.Asset == "" || t.From.Asset != t.To.Asset {
		return fmt.Errorf("%w: asset mismatch %q -> %q", ErrInvalidTransfer, t.From.Asset, t.To.Asset)
	}
	if t.Authority != t.From.Owner {
		return fmt.Errorf("%w: %s cannot spend %s", ErrUnauthorizedTransfer, t.Authority, t.From)
	}
	return nil
}

// Executor moves fungible value between holdings. Execute applies the whole
// batch or nothing.
type Executor interface {
	Balance(ctx context.Context, h Holding) (uint64, error)
	Execute(ctx context.Context, transfers []Transfer) error
}

// ReverseAll returns the compensating batch for transfers, in reverse order.
func ReverseAll(transfers []Transfer) []Transfer {
	out := make([]Transfer, 0, len(transfers))
	for i := len(transfers) - 1; i >= 0; i-- {
		out = append(out, transfers[i].Reverse())
	}
	return out
}
