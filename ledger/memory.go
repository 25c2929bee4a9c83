package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// Memory is an in-process Executor. It backs local development and tests.
type Memory struct {
	mu       sync.Mutex
	balances map[Holding]uint64
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[Holding]uint64)}
}

// Credit mints amount into h.
func (m *Memory) Credit(h Holding, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := add(m.balances[h], amount)
	if err != nil {
		return err
	}
	m.balances[h] = next
	return nil
}

func (m *Memory) Balance(_ context.Context, h Holding) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[h], nil
}

// Execute applies transfers in order against a staged copy of the touched
// balances and publishes the copy only if every transfer succeeds.
func (m *Memory) Execute(ctx context.Context, transfers []Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := make(map[Holding]uint64, len(transfers)*2)
	get := func(h Holding) uint64 {
		if v, ok := staged[h]; ok {
			return v
		}
		return m.balances[h]
	}
	for i, t := range transfers {
		if err := t.validate(); err != nil {
			return fmt.Errorf("transfer %d: %w", i, err)
		}
		src := get(t.From)
		if src < t.Amount {
			return fmt.Errorf("transfer %d: %w: %s holds %d, needs %d", i, ErrInsufficientFunds, t.From, src, t.Amount)
		}
		staged[t.From] = src - t.Amount
		dst, err := add(get(t.To), t.Amount)
		if err != nil {
			return fmt.Errorf("transfer %d: %w", i, err)
		}
		staged[t.To] = dst
	}
	for h, v := range staged {
		m.balances[h] = v
	}
	return nil
}

func add(a, b uint64) (uint64, error) {
	sum, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !sum.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return sum.Uint64(), nil
}
