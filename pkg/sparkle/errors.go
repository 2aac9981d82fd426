package sparkle

import (
	"errors"

	sparkerrors "github.com/vango-dev/sparkle/internal/errors"
)

var (
	// ErrInvalidUpdateResult is returned when an update function returns nil.
	ErrInvalidUpdateResult = sparkerrors.New("E101")

	// ErrInvalidWireResult is returned when a wired handler returns a value
	// that is neither nil, a partial, nor a slice of partials.
	ErrInvalidWireResult = sparkerrors.New("E102")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = sparkerrors.New("E109")

	// ErrNotBound is returned when firing an event nothing is wired to.
	ErrNotBound = errors.New("sparkle: no handler bound")
)
