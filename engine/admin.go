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

// Initialize bootstraps the singleton records with superAdmin in charge.
func (e *Engine) Initialize(ctx context.Context, initializer, superAdmin ledger.Identity) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("initialize", initializer, err) }()

	if e.opts.Initializer != "" && initializer != e.opts.Initializer {
		return fmt.Errorf("%w: %s may not initialize", treasury.ErrUnauthorized, initializer)
	}
	if superAdmin == "" {
		return fmt.Errorf("%w: empty super-admin", treasury.ErrUnauthorized)
	}
	if _, err := e.loadState(ctx); err == nil {
		return ErrAlreadyInitialized
	} else if !errors.Is(err, ErrNotInitialized) {
		return err
	}

	// The bootstrap dev fee is never routed to an empty wallet.
	devWallet := e.opts.DefaultDevWallet
	if devWallet == "" {
		devWallet = superAdmin
	}
	batch := &store.Batch{}
	for key, v := range map[store.Key]any{
		treasuryKey: treasury.New(superAdmin, devWallet),
		adminsKey:   &treasury.AdminRegistry{},
		catalogKey:  &gamemath.Catalog{},
		recentKey:   &round.RecentPlays{},
	} {
		if err := batch.Put(key, v); err != nil {
			return err
		}
	}
	var transfers []ledger.Transfer
	if e.opts.VaultSeedDeposit > 0 {
		transfers = append(transfers, ledger.Transfer{
			From:      ledger.Holding{Owner: initializer, Asset: ledger.Native},
			To:        ledger.Holding{Owner: e.nativeVault, Asset: ledger.Native},
			Authority: initializer,
			Amount:    e.opts.VaultSeedDeposit,
		})
	}
	if err := e.commit(ctx, "initialize", transfers, batch); err != nil {
		return err
	}
	e.log.Info("wheel initialized", zap.String("superAdmin", string(superAdmin)))
	return nil
}

// SetPayInfo changes the spin price; the super-admin may also reroute fees.
func (e *Engine) SetPayInfo(ctx context.Context, caller ledger.Identity, info treasury.PayInfo) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("set_pay_info", caller, err) }()

	s, err := e.loadState(ctx)
	if err != nil {
		return err
	}
	if err := s.treasury.SetPayInfo(caller, s.admins, info); err != nil {
		return err
	}
	batch := &store.Batch{}
	if err := batch.Put(treasuryKey, s.treasury); err != nil {
		return err
	}
	if err := e.commit(ctx, "set_pay_info", nil, batch); err != nil {
		return err
	}
	e.log.Info("pay info updated", zap.String("caller", string(caller)), zap.Uint64("price", s.treasury.Price))
	return nil
}

// AddTier appends a tier to the catalog.
func (e *Engine) AddTier(ctx context.Context, caller ledger.Identity, tier gamemath.Tier) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("add_tier", caller, err) }()

	return e.mutateCatalog(ctx, "add_tier", caller, func(c *gamemath.Catalog) error {
		return c.AddTier(tier)
	})
}

// SetTier overwrites slot index and sets the active tier count.
func (e *Engine) SetTier(ctx context.Context, caller ledger.Identity, index int, tier gamemath.Tier, count int) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("set_tier", caller, err) }()

	return e.mutateCatalog(ctx, "set_tier", caller, func(c *gamemath.Catalog) error {
		return c.SetTier(index, tier, count)
	})
}

func (e *Engine) mutateCatalog(ctx context.Context, op string, caller ledger.Identity, fn func(*gamemath.Catalog) error) error {
	s, err := e.loadState(ctx)
	if err != nil {
		return err
	}
	if err := s.treasury.Authorize(caller, s.admins); err != nil {
		return err
	}
	if err := fn(s.catalog); err != nil {
		return err
	}
	batch := &store.Batch{}
	if err := batch.Put(catalogKey, s.catalog); err != nil {
		return err
	}
	if err := e.commit(ctx, op, nil, batch); err != nil {
		return err
	}
	e.log.Info("catalog updated", zap.String("op", op), zap.String("caller", string(caller)), zap.Int("tiers", s.catalog.Count))
	return nil
}

func (e *Engine) AddAdmin(ctx context.Context, caller, admin ledger.Identity) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("add_admin", caller, err) }()

	return e.mutateAdmins(ctx, "add_admin", func(s *wheelState) error {
		return s.admins.Add(s.treasury, caller, admin)
	})
}

func (e *Engine) DeleteAdmin(ctx context.Context, caller, admin ledger.Identity) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish("delete_admin", caller, err) }()

	return e.mutateAdmins(ctx, "delete_admin", func(s *wheelState) error {
		return s.admins.Delete(s.treasury, caller, admin)
	})
}

func (e *Engine) mutateAdmins(ctx context.Context, op string, fn func(*wheelState) error) error {
	s, err := e.loadState(ctx)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	batch := &store.Batch{}
	if err := batch.Put(adminsKey, s.admins); err != nil {
		return err
	}
	return e.commit(ctx, op, nil, batch)
}

// WithdrawEscrowedTokens moves amount of asset out of the escrow vault to dest.
func (e *Engine) WithdrawEscrowedTokens(ctx context.Context, caller ledger.Identity, asset ledger.AssetID, dest ledger.Identity, amount uint64) (err error) {
	if asset == "" {
		asset = e.opts.PrimaryAsset
	}
	return e.withdraw(ctx, "withdraw_tokens", caller, ledger.Transfer{
		From:      ledger.Holding{Owner: e.escrow, Asset: asset},
		To:        ledger.Holding{Owner: dest, Asset: asset},
		Authority: e.escrow,
		Amount:    amount,
	})
}

// WithdrawEscrowedNative moves amount of native currency out of the native vault to dest.
func (e *Engine) WithdrawEscrowedNative(ctx context.Context, caller, dest ledger.Identity, amount uint64) (err error) {
	return e.withdraw(ctx, "withdraw_native", caller, ledger.Transfer{
		From:      ledger.Holding{Owner: e.nativeVault, Asset: ledger.Native},
		To:        ledger.Holding{Owner: dest, Asset: ledger.Native},
		Authority: e.nativeVault,
		Amount:    amount,
	})
}

func (e *Engine) withdraw(ctx context.Context, op string, caller ledger.Identity, t ledger.Transfer) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.finish(op, caller, err) }()

	s, err := e.loadState(ctx)
	if err != nil {
		return err
	}
	if err := s.treasury.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if t.To.Owner == "" {
		return fmt.Errorf("%w: empty destination", ledger.ErrInvalidTransfer)
	}
	if err := e.commit(ctx, op, []ledger.Transfer{t}, &store.Batch{}); err != nil {
		return err
	}
	e.log.Info("escrow withdrawn", zap.String("op", op), zap.Stringer("to", t.To), zap.Uint64("amount", t.Amount))
	return nil
}
