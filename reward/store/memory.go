package store

import (
	"context"
	"sync"
)

// Memory keeps encoded ledgers in memory. Data does not survive the process
// but goes through the same encoding as the persistent backends.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, world string) (map[string]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	b, ok := m.data[world]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	data, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (m *Memory) Save(ctx context.Context, world string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encode(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[world] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
