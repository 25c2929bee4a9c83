package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/gamemath"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/treasury"
)

// Bootstrap is the TOML file that brings up a fresh wheel:
//
//	SuperAdmin = "ops"
//	Initializer = "deployer"
//
//	[Treasury]
//	Price = 1000
//	DevFeeRate = 3000
//	DevWallet = "dev"
//
//	[[Tiers]]
//	Weight = 50
//	Kind = "fungible"
//	Amount = 400
//	Assets = ["FRONK"]
//
//	[[Balances]]
//	Owner = "@escrow"
//	Amount = 1000000
type Bootstrap struct {
	SuperAdmin  string         `toml:"SuperAdmin"`
	Initializer string         `toml:"Initializer"`
	Admins      []string       `toml:"Admins"`
	Treasury    *TreasuryEntry `toml:"Treasury"`
	Tiers       []TierEntry    `toml:"Tiers"`
	// Balances fund an in-process ledger for development; a remote ledger
	// ignores them.
	Balances []BalanceEntry `toml:"Balances"`
}

type TreasuryEntry struct {
	Price       uint64 `toml:"Price"`
	DevFeeRate  uint64 `toml:"DevFeeRate"`
	DevWallet   string `toml:"DevWallet"`
	BurnFeeRate uint64 `toml:"BurnFeeRate"`
	BurnWallet  string `toml:"BurnWallet"`
}

type TierEntry struct {
	Weight uint32   `toml:"Weight"`
	Kind   string   `toml:"Kind"`
	Amount uint64   `toml:"Amount"`
	Assets []string `toml:"Assets"`
}

// Owner aliases for the wheel's own vaults in a BalanceEntry.
const (
	EscrowAlias      = "@escrow"
	NativeVaultAlias = "@native"
)

// BalanceEntry credits Amount to Owner. An empty Asset is the primary asset.
type BalanceEntry struct {
	Owner  string `toml:"Owner"`
	Asset  string `toml:"Asset"`
	Amount uint64 `toml:"Amount"`
}

// LoadBootstrap decodes and validates the bootstrap file at path.
func LoadBootstrap(path string) (*Bootstrap, error) {
	b := &Bootstrap{}
	meta, err := toml.DecodeFile(path, b)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: %s: unknown key %s", path, undecoded[0])
	}
	if b.SuperAdmin == "" {
		return nil, fmt.Errorf("config: %s: SuperAdmin is required", path)
	}
	if b.Treasury != nil {
		if err := treasury.ValidateRates(b.Treasury.DevFeeRate, b.Treasury.BurnFeeRate); err != nil {
			return nil, err
		}
		info, _ := b.PayInfo()
		if err := treasury.ValidateWallets(info); err != nil {
			return nil, err
		}
	}
	for i, e := range b.Balances {
		if e.Owner == "" {
			return nil, fmt.Errorf("config: %s: balance %d has no owner", path, i)
		}
	}
	if len(b.Tiers) > gamemath.MaxTiers {
		return nil, fmt.Errorf("%w: %d tiers", gamemath.ErrCatalogFull, len(b.Tiers))
	}
	if _, err := b.CatalogTiers(); err != nil {
		return nil, err
	}
	return b, nil
}

// PayInfo converts the treasury section. ok is false when the file has none.
func (b *Bootstrap) PayInfo() (info treasury.PayInfo, ok bool) {
	if b.Treasury == nil {
		return treasury.PayInfo{}, false
	}
	return treasury.PayInfo{
		Price:       b.Treasury.Price,
		DevFeeRate:  b.Treasury.DevFeeRate,
		DevWallet:   ledger.Identity(b.Treasury.DevWallet),
		BurnFeeRate: b.Treasury.BurnFeeRate,
		BurnWallet:  ledger.Identity(b.Treasury.BurnWallet),
	}, true
}

// CatalogTiers converts the tier entries; every listed asset starts live.
func (b *Bootstrap) CatalogTiers() ([]gamemath.Tier, error) {
	out := make([]gamemath.Tier, 0, len(b.Tiers))
	for i, e := range b.Tiers {
		kind, err := gamemath.ParseTokenKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		assets := make([]ledger.AssetID, len(e.Assets))
		for j, a := range e.Assets {
			assets[j] = ledger.AssetID(a)
		}
		t, err := gamemath.NewTier(e.Weight, kind, e.Amount, assets, -1)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *Bootstrap) AdminIDs() []ledger.Identity {
	out := make([]ledger.Identity, len(b.Admins))
	for i, a := range b.Admins {
		out[i] = ledger.Identity(a)
	}
	return out
}
