package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/round"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/store"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

// SpinResult is what a player gets back from a spin.
type SpinResult struct {
	Round   uint64              `json:"round"`
	RoundID uint64              `json:"roundId"`
	Paid    uint64              `json:"paid"`
	Shares  treasury.Shares     `json:"shares"`
	Outcome gamemath.Outcome    `json:"outcome"`
	Claim   *round.PendingClaim `json:"claim"`
}

// Spin charges player the current price, draws a reward and records it as a
// pending claim at (player, roundID). rand is mixed with the price feed to
// seed the draw.
func (e *Engine) Spin(ctx context.Context, player ledger.Identity, rand uint32, roundID uint64) (res *SpinResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("spin", player, err) }()

	if player == "" {
		return nil, fmt.Errorf("%w: empty player", treasury.ErrUnauthorized)
	}
	s, err := e.loadState(ctx)
	if err != nil {
		return nil, err
	}
	claimKey := store.ClaimKey(player, roundID)
	if _, err := e.store.Get(ctx, claimKey); err == nil {
		return nil, fmt.Errorf("%w: %s round %d", ErrClaimExists, player, roundID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// The draw is capped against the pool as it stood before this payment.
	pool := e.prizePool()
	poolBalance, err := e.ledger.Balance(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("engine: read prize pool: %w", err)
	}

	price := s.treasury.Price
	shares, err := treasury.ComputeShares(s.treasury, price)
	if err != nil {
		return nil, err
	}
	transfers := e.paymentTransfers(player, s.treasury, shares)

	progress := &round.Progress{}
	progressKey := store.ProgressKey(player)
	if _, err := store.Load(ctx, e.store, progressKey, progress); err != nil {
		return nil, err
	}
	roundNum, err := progress.Advance(player)
	if err != nil {
		return nil, err
	}

	feedPrice, err := e.feed.Price(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: read price feed: %w", err)
	}
	outcome, err := s.catalog.Spin(feedPrice+uint64(rand), poolBalance)
	if err != nil {
		return nil, err
	}

	now := e.opts.Now()
	claim, err := round.NewPendingClaim(player, roundID, roundNum, outcome, now)
	if err != nil {
		return nil, err
	}
	s.recent.Push(round.Play{
		Player: player,
		Paid:   price,
		Won:    outcome.Amount,
		Asset:  outcome.Display,
		Kind:   outcome.Kind,
		At:     now,
	})

	batch := &store.Batch{}
	for key, v := range map[store.Key]any{
		progressKey: progress,
		catalogKey:  s.catalog,
		claimKey:    claim,
		recentKey:   s.recent,
	} {
		if err := batch.Put(key, v); err != nil {
			return nil, err
		}
	}
	if err := e.commit(ctx, "spin", transfers, batch); err != nil {
		return nil, err
	}

	e.metrics.ObserveSpin(outcome.Kind.String(), outcome.Attempts-1, poolBalance)
	e.metrics.ObserveFees(shares.Dev, shares.Burn, shares.Pool)
	e.log.Info("spin resolved",
		zap.String("player", string(player)),
		zap.Uint64("round", roundNum),
		zap.Uint64("roundId", roundID),
		zap.Int("tier", outcome.Index),
		zap.Uint64("amount", outcome.Amount),
		zap.Stringer("kind", outcome.Kind),
		zap.Int("attempts", outcome.Attempts),
	)
	return &SpinResult{
		Round:   roundNum,
		RoundID: roundID,
		Paid:    price,
		Shares:  shares,
		Outcome: outcome,
		Claim:   claim,
	}, nil
}

// paymentTransfers routes the three shares of price out of the player's
// primary-asset holding. Zero shares are skipped.
func (e *Engine) paymentTransfers(player ledger.Identity, cfg *treasury.Config, shares treasury.Shares) []ledger.Transfer {
	from := ledger.Holding{Owner: player, Asset: e.opts.PrimaryAsset}
	var out []ledger.Transfer
	for _, leg := range []struct {
		to     ledger.Identity
		amount uint64
	}{
		{cfg.DevWallet, shares.Dev},
		{cfg.BurnWallet, shares.Burn},
		{e.escrow, shares.Pool},
	} {
		if leg.amount == 0 {
			continue
		}
		out = append(out, ledger.Transfer{
			From:      from,
			To:        ledger.Holding{Owner: leg.to, Asset: e.opts.PrimaryAsset},
			Authority: player,
			Amount:    leg.amount,
		})
	}
	return out
}
