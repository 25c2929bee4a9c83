package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/round"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/store"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

// ClaimRequest collects one payout of a pending claim. Asset selects the
// line for non-native claims and defaults to the primary asset.
type ClaimRequest struct {
	RoundID uint64         `json:"roundId"`
	Amount  uint64         `json:"amount"`
	Native  bool           `json:"native"`
	Asset   ledger.AssetID `json:"asset,omitempty"`
}

// ClaimResult reports whether value moved and where the claim now stands.
type ClaimResult struct {
	Paid   bool                `json:"paid"`
	Status round.ClaimStatus   `json:"status"`
	Claim  *round.PendingClaim `json:"claim"`
}

// Claim settles part of caller's pending claim for req.RoundID.
func (e *Engine) Claim(ctx context.Context, caller ledger.Identity, req ClaimRequest) (res *ClaimResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("claim", caller, err) }()

	pc, key, err := e.loadClaim(ctx, caller, req.RoundID)
	if err != nil {
		return nil, err
	}
	if req.Native {
		res, err = e.claimNative(ctx, caller, pc, key, req)
		e.metrics.ObserveClaim("native", claimResult(res, err))
		return res, err
	}
	res, err = e.claimAsset(ctx, caller, pc, key, req)
	e.metrics.ObserveClaim("asset", claimResult(res, err))
	return res, err
}

func claimResult(res *ClaimResult, err error) string {
	switch {
	case err != nil:
		return "rejected"
	case res.Paid:
		return "paid"
	default:
		return "noop"
	}
}

func (e *Engine) loadClaim(ctx context.Context, caller ledger.Identity, roundID uint64) (*round.PendingClaim, store.Key, error) {
	key := store.ClaimKey(caller, roundID)
	pc := &round.PendingClaim{}
	ok, err := store.Load(ctx, e.store, key, pc)
	if err != nil {
		return nil, key, err
	}
	if !ok {
		return nil, key, fmt.Errorf("%w: %s round %d", ErrClaimNotFound, caller, roundID)
	}
	if pc.Owner != caller {
		return nil, key, fmt.Errorf("%w: claim belongs to %s", treasury.ErrUnauthorized, pc.Owner)
	}
	return pc, key, nil
}

func (e *Engine) claimNative(ctx context.Context, caller ledger.Identity, pc *round.PendingClaim, key store.Key, req ClaimRequest) (*ClaimResult, error) {
	if err := pc.ClaimNative(req.Amount); err != nil {
		return nil, err
	}
	transfer := ledger.Transfer{
		From:      ledger.Holding{Owner: e.nativeVault, Asset: ledger.Native},
		To:        ledger.Holding{Owner: caller, Asset: ledger.Native},
		Authority: e.nativeVault,
		Amount:    req.Amount,
	}
	if err := e.settle(ctx, pc, key, transfer); err != nil {
		return nil, err
	}
	e.log.Info("native reward claimed", zap.String("owner", string(caller)), zap.Uint64("roundId", req.RoundID), zap.Uint64("amount", req.Amount))
	return &ClaimResult{Paid: true, Status: pc.Status(), Claim: pc}, nil
}

func (e *Engine) claimAsset(ctx context.Context, caller ledger.Identity, pc *round.PendingClaim, key store.Key, req ClaimRequest) (*ClaimResult, error) {
	asset := req.Asset
	if asset == "" {
		asset = e.opts.PrimaryAsset
	}
	i := pc.MatchAsset(asset, e.opts.PrimaryAsset, req.Amount)
	if i < 0 {
		if e.opts.LegacyClaims {
			return &ClaimResult{Status: pc.Status(), Claim: pc}, nil
		}
		return nil, fmt.Errorf("%w: no unclaimed %s line for %d", round.ErrInvalidReward, asset, req.Amount)
	}
	source := ledger.Holding{Owner: e.escrow, Asset: asset}
	balance, err := e.ledger.Balance(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("engine: read escrow: %w", err)
	}
	if balance == 0 {
		e.log.Warn("escrow empty, claim left pending", zap.String("owner", string(caller)), zap.String("asset", string(asset)))
		return &ClaimResult{Status: pc.Status(), Claim: pc}, nil
	}
	if err := pc.MarkClaimed(i); err != nil {
		return nil, err
	}
	transfer := ledger.Transfer{
		From:      source,
		To:        ledger.Holding{Owner: caller, Asset: asset},
		Authority: e.escrow,
		Amount:    req.Amount,
	}
	if err := e.settle(ctx, pc, key, transfer); err != nil {
		return nil, err
	}
	e.log.Info("asset reward claimed", zap.String("owner", string(caller)), zap.String("asset", string(asset)), zap.Uint64("amount", req.Amount))
	return &ClaimResult{Paid: true, Status: pc.Status(), Claim: pc}, nil
}

func (e *Engine) settle(ctx context.Context, pc *round.PendingClaim, key store.Key, t ledger.Transfer) error {
	batch := &store.Batch{}
	if err := batch.Put(key, pc); err != nil {
		return err
	}
	var transfers []ledger.Transfer
	if t.Amount > 0 {
		transfers = append(transfers, t)
	}
	return e.commit(ctx, "claim", transfers, batch)
}

// ClosePendingClaim deletes caller's claim record for roundID. Unless legacy
// claim semantics are enabled, a claim still owing value cannot be closed.
func (e *Engine) ClosePendingClaim(ctx context.Context, caller ledger.Identity, roundID uint64) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("close_pending_claim", caller, err) }()

	pc, key, err := e.loadClaim(ctx, caller, roundID)
	if err != nil {
		return err
	}
	if !e.opts.LegacyClaims && pc.Unsettled() {
		return fmt.Errorf("%w: %s round %d is %s", round.ErrClaimUnsettled, caller, roundID, pc.Status())
	}
	batch := &store.Batch{}
	batch.Delete(key)
	if err := e.commit(ctx, "close_pending_claim", nil, batch); err != nil {
		return err
	}
	e.log.Info("pending claim closed", zap.String("owner", string(caller)), zap.Uint64("roundId", roundID))
	return nil
}
