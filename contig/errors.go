package contig

import "errors"

var (
	// ErrPermissionDenied indicates physical frame numbers cannot be read by
	// this process. The whole allocation attempt is abandoned.
	ErrPermissionDenied = errors.New("contig: frame inspection unavailable")

	// ErrBackendBroken indicates the raw allocation or pin call failed.
	// No further trials are made after it.
	ErrBackendBroken = errors.New("contig: allocation backend failed")

	// ErrNoCandidate indicates no trial produced a cache-compatible block.
	ErrNoCandidate = errors.New("contig: no cache-compatible block found")

	// ErrFrameMapClose indicates the frame map handle could not be closed.
	// It is unrecoverable; see IsFatal.
	ErrFrameMapClose = errors.New("contig: frame map close failed")

	// ErrRelease indicates unpinning or freeing a block failed.
	ErrRelease = errors.New("contig: release failed")

	// ErrReleased indicates a block was already released.
	ErrReleased = errors.New("contig: block already released")

	// ErrInvalidSize indicates a negative or unrepresentable request size.
	ErrInvalidSize = errors.New("contig: invalid allocation size")

	// ErrInvalidOptions indicates Options failed validation.
	ErrInvalidOptions = errors.New("contig: invalid options")
)

// IsFatal reports whether err leaves the process in a state the allocator
// cannot vouch for. Callers are expected to terminate when it returns true.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFrameMapClose)
}
