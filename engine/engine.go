// Package engine runs the wheel's operations. Each operation reads the
// records it needs, stages every write in one batch, executes its transfers
// as one atomic ledger batch and then commits the records. Operations are
// serialised, so two calls never interleave against the same records.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/logging"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/metrics"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/oracle"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/round"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/store"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

var (
	ErrNotInitialized     = errors.New("engine: wheel not initialized")
	ErrAlreadyInitialized = errors.New("engine: wheel already initialized")
	ErrClaimExists        = errors.New("engine: pending claim already exists for round")
	ErrClaimNotFound      = errors.New("engine: pending claim not found")
)

// DefaultPrimaryAsset is the reward asset spins are paid in when none is configured.
const DefaultPrimaryAsset ledger.AssetID = "FRONK"

// Options tunes an Engine. Zero values are usable.
type Options struct {
	// PrimaryAsset is the asset spins are paid in and the prize pool holds.
	PrimaryAsset ledger.AssetID
	// Initializer, when set, is the only identity allowed to bootstrap.
	Initializer ledger.Identity
	// DefaultDevWallet receives dev fees until the super-admin changes it.
	// Empty routes them to the super-admin.
	DefaultDevWallet ledger.Identity
	// VaultSeedDeposit is moved from the initializer into the native vault
	// at bootstrap.
	VaultSeedDeposit uint64
	// LegacyClaims keeps the original claim semantics: asset claims that
	// match no line are silent no-ops and claims close with value unpaid.
	LegacyClaims bool

	Logger  *zap.Logger
	Metrics *metrics.WheelMetrics
	Now     func() time.Time
}

type Engine struct {
	mu sync.Mutex

	store   store.Store
	ledger  ledger.Executor
	feed    oracle.Feed
	opts    Options
	log     *zap.Logger
	metrics *metrics.WheelMetrics

	escrow      ledger.Identity
	nativeVault ledger.Identity
}

func New(st store.Store, ex ledger.Executor, feed oracle.Feed, opts Options) *Engine {
	if opts.PrimaryAsset == "" {
		opts.PrimaryAsset = DefaultPrimaryAsset
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		store:       st,
		ledger:      ex,
		feed:        feed,
		opts:        opts,
		log:         logging.OrNop(opts.Logger),
		metrics:     opts.Metrics,
		escrow:      store.VaultIdentity(store.SeedEscrowVault),
		nativeVault: store.VaultIdentity(store.SeedNativeVault),
	}
}

// Vaults are the program-held holdings the engine pays out of.
type Vaults struct {
	Escrow      ledger.Identity `json:"escrow"`
	NativeVault ledger.Identity `json:"nativeVault"`
	PrizePool   ledger.Holding  `json:"prizePool"`
}

// Ledger returns the executor spins and claims settle through.
func (e *Engine) Ledger() ledger.Executor { return e.ledger }

func (e *Engine) Vaults() Vaults {
	return Vaults{
		Escrow:      e.escrow,
		NativeVault: e.nativeVault,
		PrizePool:   e.prizePool(),
	}
}

func (e *Engine) PrimaryAsset() ledger.AssetID { return e.opts.PrimaryAsset }

func (e *Engine) prizePool() ledger.Holding {
	return ledger.Holding{Owner: e.escrow, Asset: e.opts.PrimaryAsset}
}

// wheelState is the set of singleton records.
type wheelState struct {
	treasury *treasury.Config
	admins   *treasury.AdminRegistry
	catalog  *gamemath.Catalog
	recent   *round.RecentPlays
}

var (
	treasuryKey = store.SingletonKey(store.SeedTreasury)
	adminsKey   = store.SingletonKey(store.SeedAdmins)
	catalogKey  = store.SingletonKey(store.SeedCatalog)
	recentKey   = store.SingletonKey(store.SeedRecentPlays)
)

func (e *Engine) loadState(ctx context.Context) (*wheelState, error) {
	s := &wheelState{
		treasury: &treasury.Config{},
		admins:   &treasury.AdminRegistry{},
		catalog:  &gamemath.Catalog{},
		recent:   &round.RecentPlays{},
	}
	ok, err := store.Load(ctx, e.store, treasuryKey, s.treasury)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	for key, v := range map[store.Key]any{adminsKey: s.admins, catalogKey: s.catalog, recentKey: s.recent} {
		if _, err := store.Load(ctx, e.store, key, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// commit executes transfers, then writes batch. If the write fails the
// transfers are reversed.
func (e *Engine) commit(ctx context.Context, op string, transfers []ledger.Transfer, batch *store.Batch) error {
	if len(transfers) > 0 {
		if err := e.ledger.Execute(ctx, transfers); err != nil {
			return fmt.Errorf("engine: %s transfers: %w", op, err)
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := e.store.Commit(ctx, batch); err != nil {
		if len(transfers) > 0 {
			if rerr := e.ledger.Execute(context.WithoutCancel(ctx), ledger.ReverseAll(transfers)); rerr != nil {
				e.log.Error("compensating transfers failed",
					zap.String("op", op), zap.Int("transfers", len(transfers)), zap.Error(rerr))
			}
		}
		return fmt.Errorf("engine: %s commit: %w", op, err)
	}
	return nil
}

func (e *Engine) finish(op string, caller ledger.Identity, err error) {
	e.metrics.ObserveOperation(op, err)
	if err != nil {
		e.log.Warn("operation rejected", zap.String("op", op), zap.String("caller", string(caller)), zap.Error(err))
	}
}

// Treasury returns the current treasury config.
func (e *Engine) Treasury(ctx context.Context) (*treasury.Config, error) {
	s, err := e.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return s.treasury, nil
}

func (e *Engine) Admins(ctx context.Context) ([]ledger.Identity, error) {
	s, err := e.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return s.admins.List(), nil
}

func (e *Engine) Catalog(ctx context.Context) (*gamemath.Catalog, error) {
	s, err := e.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog, nil
}

func (e *Engine) RecentPlays(ctx context.Context) ([]round.Play, error) {
	s, err := e.loadState(ctx)
	if err != nil {
		return nil, err
	}
	return s.recent.List(), nil
}

// Progress returns owner's round counter; zero if they never spun.
func (e *Engine) Progress(ctx context.Context, owner ledger.Identity) (*round.Progress, error) {
	p := &round.Progress{}
	if _, err := store.Load(ctx, e.store, store.ProgressKey(owner), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (e *Engine) PendingClaim(ctx context.Context, owner ledger.Identity, roundID uint64) (*round.PendingClaim, error) {
	pc := &round.PendingClaim{}
	ok, err := store.Load(ctx, e.store, store.ClaimKey(owner, roundID), pc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s round %d", ErrClaimNotFound, owner, roundID)
	}
	return pc, nil
}
