package piecetable

import "errors"

// Errors returned by piece table operations.
var (
	// ErrOutOfBounds indicates an offset, range bound or line number beyond
	// the current document.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrInvalidRange indicates a range whose start exceeds its end.
	ErrInvalidRange = errors.New("invalid range")

	// ErrFrozenBlock indicates an append to the immutable original block.
	ErrFrozenBlock = errors.New("block is frozen")
)
