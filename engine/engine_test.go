package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/oracle"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/round"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/store"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

const (
	deployer ledger.Identity = "deployer"
	boss     ledger.Identity = "boss"
	alice    ledger.Identity = "alice"
	bob      ledger.Identity = "bob"
	devW     ledger.Identity = "dev-wallet"
	burnW    ledger.Identity = "burn-wallet"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// flakyStore fails Commit while fail is set.
type flakyStore struct {
	*store.Memory
	fail atomic.Bool
}

func (f *flakyStore) Commit(ctx context.Context, b *store.Batch) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.Memory.Commit(ctx, b)
}

type fixture struct {
	eng    *Engine
	ledger *ledger.Memory
	store  *flakyStore
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{ledger: ledger.NewMemory(), store: &flakyStore{Memory: store.NewMemory()}}
	if opts.Initializer == "" {
		opts.Initializer = deployer
	}
	opts.Now = func() time.Time { return testNow }
	f.eng = New(f.store, f.ledger, oracle.Static(0), opts)

	ctx := context.Background()
	require.NoError(t, f.eng.Initialize(ctx, deployer, boss))
	require.NoError(t, f.eng.SetPayInfo(ctx, boss, treasury.PayInfo{
		Price:       1_000,
		DevFeeRate:  3_000,
		DevWallet:   devW,
		BurnFeeRate: 2_000,
		BurnWallet:  burnW,
	}))
	return f
}

func (f *fixture) credit(t *testing.T, owner ledger.Identity, asset ledger.AssetID, amount uint64) {
	t.Helper()
	require.NoError(t, f.ledger.Credit(ledger.Holding{Owner: owner, Asset: asset}, amount))
}

func (f *fixture) balance(t *testing.T, owner ledger.Identity, asset ledger.AssetID) uint64 {
	t.Helper()
	v, err := f.ledger.Balance(context.Background(), ledger.Holding{Owner: owner, Asset: asset})
	require.NoError(t, err)
	return v
}

func (f *fixture) addTier(t *testing.T, weight uint32, kind gamemath.TokenKind, amount uint64, assets ...ledger.AssetID) {
	t.Helper()
	tier, err := gamemath.NewTier(weight, kind, amount, assets, -1)
	require.NoError(t, err)
	require.NoError(t, f.eng.AddTier(context.Background(), boss, tier))
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	eng := New(store.NewMemory(), ledger.NewMemory(), oracle.Static(0), Options{Initializer: deployer, DefaultDevWallet: devW})

	_, err := eng.Treasury(ctx)
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = eng.Spin(ctx, alice, 1, 1)
	require.ErrorIs(t, err, ErrNotInitialized)

	require.ErrorIs(t, eng.Initialize(ctx, alice, alice), treasury.ErrUnauthorized)
	require.NoError(t, eng.Initialize(ctx, deployer, boss))
	require.ErrorIs(t, eng.Initialize(ctx, deployer, boss), ErrAlreadyInitialized)

	cfg, err := eng.Treasury(ctx)
	require.NoError(t, err)
	require.Equal(t, boss, cfg.SuperAdmin)
	require.Equal(t, devW, cfg.DevWallet)
	require.Equal(t, uint64(treasury.DefaultDevFeeRate), cfg.DevFeeRate)
	require.Zero(t, cfg.Price)

	admins, err := eng.Admins(ctx)
	require.NoError(t, err)
	require.Empty(t, admins)
}

func TestInitialize_DevWalletDefaultsToSuperAdmin(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewMemory()
	eng := New(store.NewMemory(), led, oracle.Static(0), Options{})
	require.NoError(t, eng.Initialize(ctx, deployer, boss))

	cfg, err := eng.Treasury(ctx)
	require.NoError(t, err)
	require.Equal(t, boss, cfg.DevWallet)

	err = eng.SetPayInfo(ctx, boss, treasury.PayInfo{Price: 100, BurnFeeRate: 1_000})
	require.ErrorIs(t, err, treasury.ErrInvalidFee)
	cfg, err = eng.Treasury(ctx)
	require.NoError(t, err)
	require.Zero(t, cfg.Price)
	require.Zero(t, cfg.BurnFeeRate)
}

func TestInitialize_SeedsNativeVault(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewMemory()
	require.NoError(t, led.Credit(ledger.Holding{Owner: deployer, Asset: ledger.Native}, 500))
	eng := New(store.NewMemory(), led, oracle.Static(0), Options{VaultSeedDeposit: 200})

	require.NoError(t, eng.Initialize(ctx, deployer, boss))
	got, err := led.Balance(ctx, ledger.Holding{Owner: eng.Vaults().NativeVault, Asset: ledger.Native})
	require.NoError(t, err)
	require.Equal(t, uint64(200), got)
}

func TestSpin_SplitsPaymentAndRecordsClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	escrow := f.eng.Vaults().Escrow
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenFungible, 400, DefaultPrimaryAsset)

	res, err := f.eng.Spin(ctx, alice, 7, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.Round)
	require.Equal(t, treasury.Shares{Dev: 30, Burn: 20, Pool: 950}, res.Shares)
	require.Equal(t, uint64(400), res.Outcome.Amount)
	require.Equal(t, DefaultPrimaryAsset, res.Outcome.Asset)
	require.Equal(t, uint64(7), res.Outcome.Seed)

	require.Equal(t, uint64(4_000), f.balance(t, alice, DefaultPrimaryAsset))
	require.Equal(t, uint64(30), f.balance(t, devW, DefaultPrimaryAsset))
	require.Equal(t, uint64(20), f.balance(t, burnW, DefaultPrimaryAsset))
	require.Equal(t, uint64(100_950), f.balance(t, escrow, DefaultPrimaryAsset))

	pc, err := f.eng.PendingClaim(ctx, alice, 42)
	require.NoError(t, err)
	require.Equal(t, alice, pc.Owner)
	require.Equal(t, round.ClaimCreated, pc.Status())
	require.Len(t, pc.Lines, 1)
	require.Equal(t, testNow, pc.CreatedAt)

	cat, err := f.eng.Catalog(ctx)
	require.NoError(t, err)
	require.Zero(t, cat.Tiers[0].Live)

	plays, err := f.eng.RecentPlays(ctx)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	require.Equal(t, alice, plays[0].Player)
	require.Equal(t, uint64(1_000), plays[0].Paid)
	require.Equal(t, uint64(400), plays[0].Won)

	claim, err := f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 42, Amount: 400})
	require.NoError(t, err)
	require.True(t, claim.Paid)
	require.Equal(t, round.ClaimSettled, claim.Status)
	require.Equal(t, uint64(4_400), f.balance(t, alice, DefaultPrimaryAsset))
	require.Equal(t, uint64(100_550), f.balance(t, escrow, DefaultPrimaryAsset))

	_, err = f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 42, Amount: 400})
	require.ErrorIs(t, err, round.ErrInvalidReward)

	require.NoError(t, f.eng.ClosePendingClaim(ctx, alice, 42))
	_, err = f.eng.PendingClaim(ctx, alice, 42)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestSpin_RoundIDIsSingleUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, f.eng.Vaults().Escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenFungible, 10)

	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.NoError(t, err)
	_, err = f.eng.Spin(ctx, alice, 0, 1)
	require.ErrorIs(t, err, ErrClaimExists)
	require.Equal(t, uint64(4_000), f.balance(t, alice, DefaultPrimaryAsset))

	// Another player may reuse the same round id.
	f.credit(t, bob, DefaultPrimaryAsset, 1_000)
	_, err = f.eng.Spin(ctx, bob, 0, 1)
	require.NoError(t, err)

	res, err := f.eng.Spin(ctx, alice, 0, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), res.Round)
	p, err := f.eng.Progress(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(2), p.Rounds)
}

func TestSpin_RejectedSpinChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	escrow := f.eng.Vaults().Escrow
	f.credit(t, escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenFungible, 10)

	f.credit(t, alice, DefaultPrimaryAsset, 999)
	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	require.Equal(t, uint64(999), f.balance(t, alice, DefaultPrimaryAsset))
	p, err := f.eng.Progress(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, p.Rounds)
	_, err = f.eng.PendingClaim(ctx, alice, 1)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestSpin_PoolTooSmall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, f.eng.Vaults().Escrow, DefaultPrimaryAsset, 800)
	f.addTier(t, 1, gamemath.TokenFungible, 400)

	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.ErrorIs(t, err, gamemath.ErrNoEligibleTier)
	require.Equal(t, uint64(5_000), f.balance(t, alice, DefaultPrimaryAsset))
}

func TestSpin_CommitFailureReversesPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	escrow := f.eng.Vaults().Escrow
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenFungible, 10)

	f.store.fail.Store(true)
	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.Error(t, err)
	f.store.fail.Store(false)

	require.Equal(t, uint64(5_000), f.balance(t, alice, DefaultPrimaryAsset))
	require.Equal(t, uint64(100_000), f.balance(t, escrow, DefaultPrimaryAsset))
	require.Zero(t, f.balance(t, devW, DefaultPrimaryAsset))
	_, err = f.eng.PendingClaim(ctx, alice, 1)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestClaim_Native(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	vaults := f.eng.Vaults()
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, vaults.Escrow, DefaultPrimaryAsset, 100_000)
	f.credit(t, vaults.NativeVault, ledger.Native, 10_000)
	f.addTier(t, 1, gamemath.TokenNative, 250)

	res, err := f.eng.Spin(ctx, alice, 0, 9)
	require.NoError(t, err)
	require.Equal(t, gamemath.TokenNative, res.Outcome.Kind)
	require.True(t, res.Claim.Native)

	require.ErrorIs(t, f.eng.ClosePendingClaim(ctx, alice, 9), round.ErrClaimUnsettled)

	_, err = f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 9, Amount: 249, Native: true})
	require.ErrorIs(t, err, round.ErrInvalidReward)

	out, err := f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 9, Amount: 250, Native: true})
	require.NoError(t, err)
	require.True(t, out.Paid)
	require.Equal(t, uint64(250), f.balance(t, alice, ledger.Native))
	require.Equal(t, uint64(9_750), f.balance(t, vaults.NativeVault, ledger.Native))

	_, err = f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 9, Amount: 250, Native: true})
	require.ErrorIs(t, err, round.ErrInvalidReward)
	require.Equal(t, uint64(250), f.balance(t, alice, ledger.Native))

	require.NoError(t, f.eng.ClosePendingClaim(ctx, alice, 9))
}

func TestClaim_NativeTierAssetsPayOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	vaults := f.eng.Vaults()
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, vaults.Escrow, DefaultPrimaryAsset, 100_000)
	f.credit(t, vaults.NativeVault, ledger.Native, 10_000)
	f.addTier(t, 1, gamemath.TokenNative, 250, DefaultPrimaryAsset)

	res, err := f.eng.Spin(ctx, alice, 0, 3)
	require.NoError(t, err)
	require.Equal(t, DefaultPrimaryAsset, res.Outcome.Asset)
	require.True(t, res.Claim.Native)
	require.Empty(t, res.Claim.Lines)

	_, err = f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 3, Amount: 250})
	require.ErrorIs(t, err, round.ErrInvalidReward)
	require.Equal(t, uint64(4_000), f.balance(t, alice, DefaultPrimaryAsset))
	require.Equal(t, uint64(100_950), f.balance(t, vaults.Escrow, DefaultPrimaryAsset))

	out, err := f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 3, Amount: 250, Native: true})
	require.NoError(t, err)
	require.True(t, out.Paid)
	require.Equal(t, round.ClaimSettled, out.Status)
	require.Equal(t, uint64(250), f.balance(t, alice, ledger.Native))
	require.NoError(t, f.eng.ClosePendingClaim(ctx, alice, 3))
}

func TestClaim_ConcurrentCallersPayOnce(t *testing.T) {
	const callers = 16
	ctx := context.Background()

	race := func(t *testing.T, f *fixture, req ClaimRequest) int {
		t.Helper()
		var wg sync.WaitGroup
		var paid atomic.Int32
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := f.eng.Claim(ctx, alice, req)
				if err != nil {
					errs <- err
					return
				}
				if out.Paid {
					paid.Add(1)
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.ErrorIs(t, err, round.ErrInvalidReward)
		}
		return int(paid.Load())
	}

	t.Run("asset line", func(t *testing.T) {
		f := newFixture(t, Options{})
		escrow := f.eng.Vaults().Escrow
		f.credit(t, alice, DefaultPrimaryAsset, 5_000)
		f.credit(t, escrow, DefaultPrimaryAsset, 100_000)
		f.addTier(t, 1, gamemath.TokenFungible, 400, DefaultPrimaryAsset)
		_, err := f.eng.Spin(ctx, alice, 0, 1)
		require.NoError(t, err)

		require.Equal(t, 1, race(t, f, ClaimRequest{RoundID: 1, Amount: 400}))
		require.Equal(t, uint64(4_400), f.balance(t, alice, DefaultPrimaryAsset))
		require.Equal(t, uint64(100_550), f.balance(t, escrow, DefaultPrimaryAsset))
	})

	t.Run("native payout", func(t *testing.T) {
		f := newFixture(t, Options{})
		vaults := f.eng.Vaults()
		f.credit(t, alice, DefaultPrimaryAsset, 5_000)
		f.credit(t, vaults.Escrow, DefaultPrimaryAsset, 100_000)
		f.credit(t, vaults.NativeVault, ledger.Native, 10_000)
		f.addTier(t, 1, gamemath.TokenNative, 250)
		_, err := f.eng.Spin(ctx, alice, 0, 1)
		require.NoError(t, err)

		require.Equal(t, 1, race(t, f, ClaimRequest{RoundID: 1, Amount: 250, Native: true}))
		require.Equal(t, uint64(250), f.balance(t, alice, ledger.Native))
		require.Equal(t, uint64(9_750), f.balance(t, vaults.NativeVault, ledger.Native))
	})
}

func TestClaim_NativeVaultShortReverts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, f.eng.Vaults().Escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenNative, 250)

	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.NoError(t, err)
	_, err = f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 1, Amount: 250, Native: true})
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	pc, err := f.eng.PendingClaim(ctx, alice, 1)
	require.NoError(t, err)
	require.False(t, pc.NativeClaimed)
}

func TestClaim_ScaledAssetAndEmptyEscrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	escrow := f.eng.Vaults().Escrow
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, escrow, DefaultPrimaryAsset, 1_000_000)
	// 3 GEM stored with five extra decimals.
	f.addTier(t, 1, gamemath.TokenFungible, 300_000, "GEM")

	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.NoError(t, err)

	out, err := f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 1, Amount: 3, Asset: "GEM"})
	require.NoError(t, err)
	require.False(t, out.Paid)
	require.Equal(t, round.ClaimCreated, out.Status)

	f.credit(t, escrow, "GEM", 10)
	out, err = f.eng.Claim(ctx, alice, ClaimRequest{RoundID: 1, Amount: 3, Asset: "GEM"})
	require.NoError(t, err)
	require.True(t, out.Paid)
	require.Equal(t, uint64(3), f.balance(t, alice, "GEM"))
	require.Equal(t, uint64(7), f.balance(t, escrow, "GEM"))
}

func TestClaim_UnmatchedAsset(t *testing.T) {
	ctx := context.Background()
	setup := func(legacy bool) *fixture {
		f := newFixture(t, Options{LegacyClaims: legacy})
		f.credit(t, alice, DefaultPrimaryAsset, 5_000)
		f.credit(t, f.eng.Vaults().Escrow, DefaultPrimaryAsset, 100_000)
		f.addTier(t, 1, gamemath.TokenFungible, 400, DefaultPrimaryAsset)
		_, err := f.eng.Spin(ctx, alice, 0, 1)
		require.NoError(t, err)
		return f
	}

	strict := setup(false)
	_, err := strict.eng.Claim(ctx, alice, ClaimRequest{RoundID: 1, Amount: 401})
	require.ErrorIs(t, err, round.ErrInvalidReward)
	require.ErrorIs(t, strict.eng.ClosePendingClaim(ctx, alice, 1), round.ErrClaimUnsettled)

	legacy := setup(true)
	out, err := legacy.eng.Claim(ctx, alice, ClaimRequest{RoundID: 1, Amount: 401})
	require.NoError(t, err)
	require.False(t, out.Paid)
	require.Equal(t, uint64(4_000), legacy.balance(t, alice, DefaultPrimaryAsset))
	require.NoError(t, legacy.eng.ClosePendingClaim(ctx, alice, 1))
}

func TestClaim_OtherPlayersClaimIsInvisible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.credit(t, alice, DefaultPrimaryAsset, 5_000)
	f.credit(t, f.eng.Vaults().Escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenFungible, 400, DefaultPrimaryAsset)
	_, err := f.eng.Spin(ctx, alice, 0, 1)
	require.NoError(t, err)

	_, err = f.eng.Claim(ctx, bob, ClaimRequest{RoundID: 1, Amount: 400})
	require.ErrorIs(t, err, ErrClaimNotFound)
	require.ErrorIs(t, f.eng.ClosePendingClaim(ctx, bob, 1), ErrClaimNotFound)
}

func TestAdmins_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	tier, err := gamemath.NewTier(1, gamemath.TokenFungible, 5, nil, 0)
	require.NoError(t, err)

	require.ErrorIs(t, f.eng.AddTier(ctx, alice, tier), treasury.ErrUnauthorized)
	require.ErrorIs(t, f.eng.AddAdmin(ctx, alice, bob), treasury.ErrUnauthorized)

	require.NoError(t, f.eng.AddAdmin(ctx, boss, alice))
	require.ErrorIs(t, f.eng.AddAdmin(ctx, boss, alice), treasury.ErrDuplicateAdmin)
	require.NoError(t, f.eng.AddTier(ctx, alice, tier))
	require.NoError(t, f.eng.SetTier(ctx, alice, 0, tier, 1))

	// An admin changes the price but not the fee routing.
	require.NoError(t, f.eng.SetPayInfo(ctx, alice, treasury.PayInfo{Price: 77, DevWallet: alice, DevFeeRate: 1}))
	cfg, err := f.eng.Treasury(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(77), cfg.Price)
	require.Equal(t, devW, cfg.DevWallet)
	require.Equal(t, uint64(3_000), cfg.DevFeeRate)

	require.ErrorIs(t, f.eng.SetPayInfo(ctx, boss, treasury.PayInfo{Price: 1, DevFeeRate: 60_000, BurnFeeRate: 40_000}), treasury.ErrInvalidFee)

	require.NoError(t, f.eng.DeleteAdmin(ctx, boss, alice))
	require.ErrorIs(t, f.eng.AddTier(ctx, alice, tier), treasury.ErrUnauthorized)

	cat, err := f.eng.Catalog(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cat.Count)
	require.ErrorIs(t, f.eng.SetTier(ctx, boss, gamemath.MaxTiers, tier, 1), gamemath.ErrIndexOutOfRange)
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	vaults := f.eng.Vaults()
	f.credit(t, vaults.Escrow, DefaultPrimaryAsset, 1_000)
	f.credit(t, vaults.Escrow, "GEM", 50)
	f.credit(t, vaults.NativeVault, ledger.Native, 300)
	require.NoError(t, f.eng.AddAdmin(ctx, boss, alice))

	require.ErrorIs(t, f.eng.WithdrawEscrowedTokens(ctx, alice, "", alice, 10), treasury.ErrUnauthorized)
	require.ErrorIs(t, f.eng.WithdrawEscrowedNative(ctx, alice, alice, 10), treasury.ErrUnauthorized)

	require.NoError(t, f.eng.WithdrawEscrowedTokens(ctx, boss, "", boss, 600))
	require.NoError(t, f.eng.WithdrawEscrowedTokens(ctx, boss, "GEM", boss, 50))
	require.NoError(t, f.eng.WithdrawEscrowedNative(ctx, boss, boss, 300))
	require.Equal(t, uint64(600), f.balance(t, boss, DefaultPrimaryAsset))
	require.Equal(t, uint64(50), f.balance(t, boss, "GEM"))
	require.Equal(t, uint64(300), f.balance(t, boss, ledger.Native))

	require.ErrorIs(t, f.eng.WithdrawEscrowedTokens(ctx, boss, "", boss, 401), ledger.ErrInsufficientFunds)
	require.ErrorIs(t, f.eng.WithdrawEscrowedNative(ctx, boss, "", 1), ledger.ErrInvalidTransfer)
}

func TestRecentPlays_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.credit(t, alice, DefaultPrimaryAsset, 100_000)
	f.credit(t, f.eng.Vaults().Escrow, DefaultPrimaryAsset, 100_000)
	f.addTier(t, 1, gamemath.TokenFungible, 5)

	for i := uint64(1); i <= round.MaxRecentPlays+2; i++ {
		_, err := f.eng.Spin(ctx, alice, 0, i)
		require.NoError(t, err)
	}
	plays, err := f.eng.RecentPlays(ctx)
	require.NoError(t, err)
	require.Len(t, plays, round.MaxRecentPlays)
	require.NotEqual(t, plays[0].ID, plays[1].ID)
	for _, p := range plays {
		require.Equal(t, alice, p.Player)
	}
}
