package treasury

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeShares_Example(t *testing.T) {
	cfg := &Config{DevFeeRate: 3000}
	got, err := ComputeShares(cfg, 1000)
	require.NoError(t, err)
	require.Equal(t, Shares{Dev: 30, Burn: 0, Pool: 970}, got)
}

func TestComputeShares_SumsToPrice(t *testing.T) {
	prices := []uint64{0, 1, 7, 999, 1000, 123_456_789, math.MaxUint64 / 3, math.MaxUint64}
	rates := []uint64{0, 1, 999, 3000, 12_345, 49_999, 50_000, 99_999}
	for _, price := range prices {
		for _, dev := range rates {
			for _, burn := range rates {
				if dev+burn >= MaxFeeRate {
					continue
				}
				cfg := &Config{DevFeeRate: dev, BurnFeeRate: burn}
				s, err := ComputeShares(cfg, price)
				require.NoError(t, err, "price=%d dev=%d burn=%d", price, dev, burn)
				require.Equal(t, price, s.Dev+s.Burn+s.Pool, "price=%d dev=%d burn=%d", price, dev, burn)
			}
		}
	}
}

func TestComputeShares_WideIntermediate(t *testing.T) {
	// price*rate overflows 64 bits here.
	cfg := &Config{DevFeeRate: 50_000, BurnFeeRate: 25_000}
	s, err := ComputeShares(cfg, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64/2), s.Dev)
	require.Equal(t, uint64(math.MaxUint64/4), s.Burn)
}

func TestComputeShares_RejectsOverspentRates(t *testing.T) {
	cfg := &Config{DevFeeRate: 80_000, BurnFeeRate: 80_000}
	_, err := ComputeShares(cfg, 1000)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}
