package bead

import (
	sparkerrors "github.com/vango-dev/sparkle/internal/errors"
)

var (
	// KeyCollision is the advisory code logged when a bead overwrites a key.
	// It is never returned.
	KeyCollision = sparkerrors.New("E103")

	// ErrInterfaceValidation aborts a pass when a validating bead rejects
	// the decorated state.
	ErrInterfaceValidation = sparkerrors.New("E104")

	// ErrRedecorateDepth aborts a pass when redecoration recurses too deep.
	ErrRedecorateDepth = sparkerrors.New("E105")

	// ErrUndeclaredKey aborts a pass when a bead returns a key outside its
	// declared outputs.
	ErrUndeclaredKey = sparkerrors.New("E107")

	// ErrActionNotFound is returned by State.Do for a missing action.
	ErrActionNotFound = sparkerrors.New("E108")
)
