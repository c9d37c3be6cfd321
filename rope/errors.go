package rope

import "errors"

// Errors returned by rope operations.
var (
	// ErrInvalidUTF8 indicates the input is not well-formed UTF-8.
	// The rope is left unchanged.
	ErrInvalidUTF8 = errors.New("rope: invalid utf-8")

	// ErrOutOfMemory indicates the allocator refused a request.
	// The rope is left unchanged.
	ErrOutOfMemory = errors.New("rope: out of memory")

	// ErrInvalidConfig indicates a tunable is outside its allowed range.
	ErrInvalidConfig = errors.New("rope: invalid configuration")

	// ErrClosed indicates the rope has been released with Close.
	ErrClosed = errors.New("rope: closed")
)

// ErrCorrupt is returned by Check when a structural invariant is broken.
var ErrCorrupt = errors.New("rope: corrupt structure")
