package store

import (
	"context"
	"sync"
)

// Memory keeps records in process. Used by tests and the default dev setup.
type Memory struct {
	mu      sync.RWMutex
	records map[Key][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[Key][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Commit(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range b.ops {
		if o.delete {
			delete(m.records, o.key)
			continue
		}
		m.records[o.key] = o.value
	}
	return nil
}

func (m *Memory) Close() error { return nil }
