//go:build linux

package rawmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MapFlags are the flags used for anonymous blocks: private, locked at fault
// time, populated up front and not charged against overcommit accounting.
const MapFlags = unix.MAP_PRIVATE | unix.MAP_ANONYMOUS | unix.MAP_LOCKED | unix.MAP_NORESERVE | unix.MAP_POPULATE

// MapAnon maps size bytes of anonymous read/write memory.
func MapAnon(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("rawmem: invalid mapping size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, MapFlags)
	if err != nil {
		return nil, fmt.Errorf("rawmem: mmap %d bytes: %w", size, err)
	}
	return data, nil
}

// Unmap releases a mapping returned by MapAnon. It must be passed the same
// slice (not a derived slice) that MapAnon returned.
func Unmap(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("rawmem: munmap: %w", err)
	}
	return nil
}

// Lock pins b in physical memory.
func Lock(b []byte) error {
	if err := unix.Mlock(b); err != nil {
		return fmt.Errorf("rawmem: mlock %d bytes: %w", len(b), err)
	}
	return nil
}

// Unlock unpins b.
func Unlock(b []byte) error {
	if err := unix.Munlock(b); err != nil {
		return fmt.Errorf("rawmem: munlock %d bytes: %w", len(b), err)
	}
	return nil
}

// PageSize returns the system page size.
func PageSize() int {
	return unix.Getpagesize()
}

// AvailablePages returns the number of currently free physical pages, the
// same figure glibc reports for _SC_AVPHYS_PAGES.
func AvailablePages() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("rawmem: sysinfo: %w", err)
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Freeram) * unit / uint64(PageSize()), nil
}
