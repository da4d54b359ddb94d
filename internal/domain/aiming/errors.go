package aiming

import "errors"

// Sentinel errors for this package.
var (
	ErrUnknownVariant = errors.New("unknown aiming variant")
)
