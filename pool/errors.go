package pool

import "github.com/pkg/errors"

var (
	// ErrOutOfSpace indicates that no free block large enough for the
	// request was found.
	ErrOutOfSpace = errors.New("pool: no free block large enough")

	// ErrCorruption indicates a block record whose tag or digest failed
	// verification.
	ErrCorruption = errors.New("pool: corrupted block record")

	// ErrDoubleRelease indicates a release of a block that is already free.
	ErrDoubleRelease = errors.New("pool: block already released")

	// ErrBadHandle indicates a handle that cannot address a payload inside
	// this pool.
	ErrBadHandle = errors.New("pool: bad payload handle")
)
