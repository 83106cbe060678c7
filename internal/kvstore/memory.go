package kvstore

import (
	"context"
	"sync"
)

// compile-time check that *Memory implements Backend
var _ Backend = (*Memory)(nil)

// Memory is a Backend held entirely in process memory. Contents are lost on
// Close. It is what tests and throwaway runs use.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Get(ctx context.Context, key string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return Record{}, ErrNotExist
	}
	return rec, nil
}

func (m *Memory) Put(ctx context.Context, key, value string, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.records[key].Version
	if expected != AnyVersion && expected != current {
		return 0, ErrVersionMismatch
	}
	next := current + 1
	m.records[key] = Record{Value: value, Version: next}
	return next, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]Record)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]Record)
	return nil
}
