package treasury

import (
	"fmt"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

// PercentMultiplier scales fee rates: a rate r is r/PercentMultiplier percent.
const PercentMultiplier = 1000

// MaxFeeRate is 100% in scaled units. dev+burn must stay strictly below it.
const MaxFeeRate = 100 * PercentMultiplier

// DefaultDevFeeRate is applied at bootstrap (3%).
const DefaultDevFeeRate = 3 * PercentMultiplier

// Config is the treasury singleton: who runs the wheel, what a spin costs and
// where the fee shares go.
type Config struct {
	SuperAdmin  ledger.Identity `json:"superAdmin"`
	DevWallet   ledger.Identity `json:"devWallet"`
	DevFeeRate  uint64          `json:"devFeeRate"`
	BurnWallet  ledger.Identity `json:"burnWallet"`
	BurnFeeRate uint64          `json:"burnFeeRate"`
	Price       uint64          `json:"price"`
}

// PayInfo is the payload of a setPayInfo call.
type PayInfo struct {
	Price       uint64          `json:"price"`
	DevFeeRate  uint64          `json:"devFeeRate"`
	DevWallet   ledger.Identity `json:"devWallet"`
	BurnFeeRate uint64          `json:"burnFeeRate"`
	BurnWallet  ledger.Identity `json:"burnWallet"`
}

// New returns the bootstrap configuration.
func New(superAdmin, devWallet ledger.Identity) *Config {
	return &Config{
		SuperAdmin: superAdmin,
		DevWallet:  devWallet,
		DevFeeRate: DefaultDevFeeRate,
	}
}

func (c *Config) IsSuperAdmin(id ledger.Identity) bool {
	return c != nil && id != "" && c.SuperAdmin == id
}

// RequireSuperAdmin fails with ErrUnauthorized unless caller is the super-admin.
func (c *Config) RequireSuperAdmin(caller ledger.Identity) error {
	if !c.IsSuperAdmin(caller) {
		return fmt.Errorf("%w: %s is not the super-admin", ErrUnauthorized, caller)
	}
	return nil
}

// Authorize admits the super-admin and any registered admin.
func (c *Config) Authorize(caller ledger.Identity, admins *AdminRegistry) error {
	if c.IsSuperAdmin(caller) || admins.Contains(caller) {
		return nil
	}
	return fmt.Errorf("%w: %s is neither super-admin nor admin", ErrUnauthorized, caller)
}

// SetPayInfo updates the price for any authorised caller. Fee rates and fee
// wallets change only when the caller is the super-admin.
func (c *Config) SetPayInfo(caller ledger.Identity, admins *AdminRegistry, info PayInfo) error {
	if err := c.Authorize(caller, admins); err != nil {
		return err
	}
	if err := ValidateRates(info.DevFeeRate, info.BurnFeeRate); err != nil {
		return err
	}
	isSuper := c.IsSuperAdmin(caller)
	if isSuper {
		if err := ValidateWallets(info); err != nil {
			return err
		}
	}
	c.Price = info.Price
	if isSuper {
		c.DevFeeRate = info.DevFeeRate
		c.DevWallet = info.DevWallet
		c.BurnFeeRate = info.BurnFeeRate
		c.BurnWallet = info.BurnWallet
	}
	return nil
}

// ValidateRates enforces dev+burn < 100%.
func ValidateRates(devRate, burnRate uint64) error {
	if devRate >= MaxFeeRate || burnRate >= MaxFeeRate || devRate+burnRate >= MaxFeeRate {
		return fmt.Errorf("%w: dev=%d burn=%d", ErrInvalidFee, devRate, burnRate)
	}
	return nil
}

// ValidateWallets rejects a non-zero fee rate routed to no wallet.
func ValidateWallets(info PayInfo) error {
	if info.DevFeeRate > 0 && info.DevWallet == "" {
		return fmt.Errorf("%w: dev fee %d has no wallet", ErrInvalidFee, info.DevFeeRate)
	}
	if info.BurnFeeRate > 0 && info.BurnWallet == "" {
		return fmt.Errorf("%w: burn fee %d has no wallet", ErrInvalidFee, info.BurnFeeRate)
	}
	return nil
}
