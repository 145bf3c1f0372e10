package remotestore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no record exists at the path.
	ErrNotFound = errors.New("record not found")

	// ErrAbort is returned from an UpdateFunc to abort the transaction
	// without writing. AtomicUpdate reports committed=false and no error.
	ErrAbort = errors.New("transaction aborted")

	// ErrUnreachable wraps transport-level failures talking to the store.
	ErrUnreachable = errors.New("store unreachable")
)

// UpdateFunc computes the new value for a record from the current one.
// The current value is nil when no record exists at the path. Returning
// ErrAbort cancels the write; any other error fails the transaction.
type UpdateFunc func(current any) (any, error)

// Store is a remote keyed store with an optimistic conditional-write
// primitive. Values are loosely typed: implementations may hand back
// strings, integers or nil, and callers are expected to coerce.
type Store interface {
	Get(ctx context.Context, path string) (any, error)
	Set(ctx context.Context, path string, value any) error

	// AtomicUpdate runs fn against a fresh read of the record and writes
	// the result as a single conditional transaction. If a concurrent
	// writer modifies the record between the read and the write, the
	// whole cycle is retried against a fresh read. The returned value is
	// the written value on commit, or the last observed value on abort.
	AtomicUpdate(ctx context.Context, path string, fn UpdateFunc) (committed bool, result any, err error)
}
