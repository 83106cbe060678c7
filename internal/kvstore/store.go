package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Store reads and writes JSON values through a Backend.
//
// FAIL-SOFT LOADS:
// Load treats a value that cannot be decoded exactly like a missing key: it
// reports ok=false and logs a warning. Only backend failures come back as
// errors. Save, Remove and Clear return backend failures to the caller.
//
// SINGLE WRITER PER KEY:
// Every write to a key (Save, Remove, Update) holds that key's lock, so inside
// one process the read-modify-write in Update cannot interleave with another
// write to the same key. Writers in other processes are caught by the version
// check instead. Clear waits for in-flight writes and blocks new ones until
// it is done, so no Update can write a collection back after a Clear.
type Store struct {
	backend Backend
	logger  *slog.Logger

	// writers is held shared by every write and exclusively by Clear.
	writers sync.RWMutex

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wraps backend. The Store does not own the backend; close it separately.
// A nil logger falls back to slog.Default().
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex serializing writes to key.
func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Save serializes value and stores it under key, overwriting any existing
// value. A nil value is stored as JSON null.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: encoding %q: %w", key, err)
	}

	s.writers.RLock()
	defer s.writers.RUnlock()
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if _, err := s.backend.Put(ctx, key, string(raw), AnyVersion); err != nil {
		return fmt.Errorf("kvstore: saving %q: %w", key, err)
	}
	return nil
}

// Load decodes the value stored under key into dst.
//
// Returns (false, nil) if the key is absent or its value is not valid JSON
// for dst.
func (s *Store) Load(ctx context.Context, key string, dst any) (bool, error) {
	rec, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("kvstore: loading %q: %w", key, err)
	}
	return s.decode(key, rec.Value, dst), nil
}

// decode unmarshals raw into dst, logging and reporting false when the value
// is corrupt. Syntax is checked before anything is written into dst.
func (s *Store) decode(key, raw string, dst any) bool {
	if !json.Valid([]byte(raw)) {
		s.logger.Warn("ignoring malformed stored value", slog.String("key", key))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("ignoring malformed stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.writers.RLock()
	defer s.writers.RUnlock()
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("kvstore: removing %q: %w", key, err)
	}
	return nil
}

// Clear deletes every key in the backend once the writes already in progress
// have finished.
func (s *Store) Clear(ctx context.Context) error {
	s.writers.Lock()
	defer s.writers.Unlock()

	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("kvstore: clearing: %w", err)
	}
	return nil
}

// Update runs a read-modify-write cycle on the collection stored under key.
//
// The current value is decoded into a T (the zero T if the key is absent or
// corrupt), passed to mutate, and written back only if nobody else wrote the
// key in between. If mutate returns an error nothing is written and that
// error is returned unchanged. A concurrent write from another process makes
// Update fail with ErrVersionMismatch; it is not retried.
//
//	err := kvstore.Update(ctx, store, "contacts", func(list *[]model.Contact) error {
//	    *list = append(*list, c)
//	    return nil
//	})
func Update[T any](ctx context.Context, s *Store, key string, mutate func(*T) error) error {
	s.writers.RLock()
	defer s.writers.RUnlock()
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	var current T
	version := int64(0)

	rec, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		version = rec.Version
		var decoded T
		if s.decode(key, rec.Value, &decoded) {
			current = decoded
		}
	case errors.Is(err, ErrNotExist):
	default:
		return fmt.Errorf("kvstore: loading %q: %w", key, err)
	}

	if err := mutate(&current); err != nil {
		return err
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("kvstore: encoding %q: %w", key, err)
	}

	if _, err := s.backend.Put(ctx, key, string(raw), version); err != nil {
		return fmt.Errorf("kvstore: writing %q at version %d: %w", key, version, err)
	}
	return nil
}
