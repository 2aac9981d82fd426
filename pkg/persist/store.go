package persist

import (
	"context"

	sparkerrors "github.com/vango-dev/sparkle/internal/errors"
)

// Store holds persisted records by key. Implementations must be safe for
// concurrent use.
type Store interface {
	// Load returns the record at key.
	// Returns (nil, nil) if nothing is stored there.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the record at key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes the record at key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

var (
	// ErrUnreadable is logged when a stored record cannot be decoded.
	ErrUnreadable = sparkerrors.New("E201")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = sparkerrors.New("E202")
)
