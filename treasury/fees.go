package treasury

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Shares is the split of one spin payment.
type Shares struct {
	Dev  uint64 `json:"dev"`
	Burn uint64 `json:"burn"`
	Pool uint64 `json:"pool"`
}

// ComputeShares splits price by the configured dev and burn rates; the
// remainder goes to the prize pool. Intermediates are 256-bit.
func ComputeShares(cfg *Config, price uint64) (Shares, error) {
	dev, err := feeShare(price, cfg.DevFeeRate)
	if err != nil {
		return Shares{}, err
	}
	burn, err := feeShare(price, cfg.BurnFeeRate)
	if err != nil {
		return Shares{}, err
	}
	if dev > price || burn > price-dev {
		return Shares{}, fmt.Errorf("%w: dev=%d burn=%d exceed price %d", ErrArithmeticOverflow, dev, burn, price)
	}
	return Shares{Dev: dev, Burn: burn, Pool: price - dev - burn}, nil
}

var feeDivisor = uint256.NewInt(100 * PercentMultiplier)

func feeShare(price, rate uint64) (uint64, error) {
	v := new(uint256.Int).Mul(uint256.NewInt(price), uint256.NewInt(rate))
	v.Div(v, feeDivisor)
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: price=%d rate=%d", ErrArithmeticOverflow, price, rate)
	}
	return v.Uint64(), nil
}
