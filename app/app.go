// Package app wires configured backends into a wheel engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/config"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/engine"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/logging"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/metrics"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/oracle"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/platform"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/store"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

// OpenStore opens the record store selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreLevelDB:
		return store.OpenLevelDB(filepath.Join(cfg.DataDir, "wheel.ldb"))
	case config.StorePostgres:
		return store.OpenPostgres(ctx)
	case config.StoreMemory, "":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("app: unknown store backend %q", cfg.Store)
}

// Executor returns the remote platform ledger when one is configured and an
// in-process ledger otherwise.
func Executor(cfg *config.Config) ledger.Executor {
	if cfg.PlatformURL != "" {
		return platform.NewClient(cfg.PlatformURL, cfg.PlatformToken)
	}
	return ledger.NewMemory()
}

func Feed(cfg *config.Config) oracle.Feed {
	if cfg.FeedEndpoint != "" {
		return oracle.NewClient(cfg.FeedEndpoint, cfg.FeedSecret, cfg.FeedID)
	}
	return oracle.Static(cfg.StaticPrice)
}

// NewEngine builds an engine over the configured backends. The caller owns
// the returned store and must close it.
func NewEngine(ctx context.Context, cfg *config.Config, log *zap.Logger) (*engine.Engine, store.Store, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	eng := engine.New(st, Executor(cfg), Feed(cfg), engine.Options{
		PrimaryAsset:     ledger.AssetID(cfg.PrimaryAsset),
		Initializer:      ledger.Identity(cfg.Initializer),
		DefaultDevWallet: ledger.Identity(cfg.DevWallet),
		VaultSeedDeposit: cfg.VaultSeedDeposit,
		LegacyClaims:     cfg.LegacyClaims,
		Logger:           log,
		Metrics:          metrics.Wheel(),
	})
	return eng, st, nil
}

type crediter interface {
	Credit(h ledger.Holding, amount uint64) error
}

// FundBalances credits the bootstrap balances when eng settles through an
// in-process ledger, so a development wheel can take spins without a
// platform. Each call adds the balances again. Remote ledgers are left alone.
func FundBalances(eng *engine.Engine, b *config.Bootstrap, log *zap.Logger) error {
	log = logging.OrNop(log)
	if len(b.Balances) == 0 {
		return nil
	}
	c, ok := eng.Ledger().(crediter)
	if !ok {
		log.Warn("bootstrap balances ignored by remote ledger", zap.Int("balances", len(b.Balances)))
		return nil
	}
	vaults := eng.Vaults()
	for _, entry := range b.Balances {
		h := ledger.Holding{Owner: ledger.Identity(entry.Owner), Asset: ledger.AssetID(entry.Asset)}
		switch entry.Owner {
		case config.EscrowAlias:
			h.Owner = vaults.Escrow
		case config.NativeVaultAlias:
			h.Owner = vaults.NativeVault
		}
		if h.Asset == "" {
			h.Asset = eng.PrimaryAsset()
		}
		if err := c.Credit(h, entry.Amount); err != nil {
			return fmt.Errorf("fund %s %s: %w", entry.Owner, h.Asset, err)
		}
	}
	log.Info("bootstrap balances funded", zap.Int("balances", len(b.Balances)))
	return nil
}

// ApplyBootstrap brings eng in line with b. It initialises the wheel if
// needed, then applies the treasury, admins and tiers as the super-admin.
// Re-applying the same file is harmless.
func ApplyBootstrap(ctx context.Context, eng *engine.Engine, b *config.Bootstrap, log *zap.Logger) error {
	log = logging.OrNop(log)
	superAdmin := ledger.Identity(b.SuperAdmin)
	initializer := ledger.Identity(b.Initializer)
	if initializer == "" {
		initializer = superAdmin
	}
	switch err := eng.Initialize(ctx, initializer, superAdmin); {
	case err == nil:
		log.Info("bootstrap initialized wheel", zap.String("superAdmin", b.SuperAdmin))
	case errors.Is(err, engine.ErrAlreadyInitialized):
	default:
		return err
	}

	cfg, err := eng.Treasury(ctx)
	if err != nil {
		return err
	}
	// Later changes go through the current super-admin.
	superAdmin = cfg.SuperAdmin

	if info, ok := b.PayInfo(); ok {
		if err := eng.SetPayInfo(ctx, superAdmin, info); err != nil {
			return fmt.Errorf("apply treasury: %w", err)
		}
	}
	for _, admin := range b.AdminIDs() {
		if err := eng.AddAdmin(ctx, superAdmin, admin); err != nil && !errors.Is(err, treasury.ErrDuplicateAdmin) {
			return fmt.Errorf("add admin %s: %w", admin, err)
		}
	}
	tiers, err := b.CatalogTiers()
	if err != nil {
		return err
	}
	for i, t := range tiers {
		if err := eng.SetTier(ctx, superAdmin, i, t, len(tiers)); err != nil {
			return fmt.Errorf("apply tier %d: %w", i, err)
		}
	}
	log.Info("bootstrap applied", zap.Int("tiers", len(tiers)), zap.Int("admins", len(b.Admins)))
	return nil
}
