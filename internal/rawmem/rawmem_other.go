//go:build !linux

package rawmem

import "os"

// MapAnon is only implemented on Linux.
func MapAnon(size int) ([]byte, error) {
	return nil, ErrUnsupported
}

// Unmap is only implemented on Linux.
func Unmap(b []byte) error {
	return ErrUnsupported
}

// Lock is only implemented on Linux.
func Lock(b []byte) error {
	return ErrUnsupported
}

// Unlock is only implemented on Linux.
func Unlock(b []byte) error {
	return ErrUnsupported
}

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}

// AvailablePages is only implemented on Linux.
func AvailablePages() (uint64, error) {
	return 0, ErrUnsupported
}
