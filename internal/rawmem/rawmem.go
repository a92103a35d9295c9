// Package rawmem wraps the operating system primitives used to obtain,
// pin and release raw memory blocks.
package rawmem

import (
	"errors"
	"unsafe"
)

var (
	// ErrUnsupported indicates the primitive is not available on this platform.
	ErrUnsupported = errors.New("rawmem: not supported on this platform")

	// ErrUnknownBlock indicates a release of memory this package did not hand out.
	ErrUnknownBlock = errors.New("rawmem: unknown block")
)

// Addr returns the virtual address of the first byte of b, or 0 for an empty slice.
func Addr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
