// Package kvstore is the persisted key-value store every higher layer reads
// and writes through.
//
// TWO LEVELS:
//
//	Backend: raw string values under string keys, each with a version
//	Store:   JSON values on top of a Backend (Save / Load / Remove / Clear)
//
// Backends live in sub-packages (sqlite, postgres) plus the in-memory one in
// this package. The Store never assumes the backend is local: every call takes
// a context and may block on real I/O.
//
// VERSIONS:
// A key that does not exist has version 0. Every successful Put bumps the
// version by one. Put with an expected version fails with ErrVersionMismatch
// if the stored version differs; AnyVersion skips the check. Update builds its
// read-modify-write on this so that two writers can never silently overwrite
// each other.
//
// Deleting a key resets it to version 0. A writer in another process that read
// the key before a Remove and a re-create can therefore still pass the check
// if the new value happens to reach the version it read. Within one process
// the Store's locks rule this out.
package kvstore

import (
	"context"
	"errors"
)

// AnyVersion makes Put write unconditionally.
const AnyVersion int64 = -1

var (
	// ErrNotExist is returned by Backend.Get for a missing key.
	ErrNotExist = errors.New("kvstore: key does not exist")

	// ErrVersionMismatch is returned by Backend.Put when the stored version is
	// not the expected one.
	ErrVersionMismatch = errors.New("kvstore: version mismatch")
)

// Record is a stored value plus its version.
type Record struct {
	Value   string
	Version int64
}

// Backend is a durable string-keyed store.
type Backend interface {
	// Get returns the record for key, or ErrNotExist.
	Get(ctx context.Context, key string) (Record, error)

	// Put stores value under key and returns the new version. When expected is
	// not AnyVersion the write only happens if the current version equals
	// expected (0 meaning "key must not exist").
	Put(ctx context.Context, key, value string, expected int64) (int64, error)

	// Delete removes key, resetting its version to 0. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key this backend manages.
	Clear(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
