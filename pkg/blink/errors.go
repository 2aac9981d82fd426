package blink

import (
	sparkerrors "github.com/vango-dev/sparkle/internal/errors"
)

// ErrEffectDepth is the panic value raised when nested effect runs exceed
// the runtime's max depth. It almost always means an effect writes a signal
// it also reads.
var ErrEffectDepth = sparkerrors.New("E106")
