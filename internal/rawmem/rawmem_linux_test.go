//go:build linux

package rawmem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPageSize(t *testing.T) {
	ps := PageSize()
	require.Positive(t, ps)
	assert.Zero(t, ps&(ps-1), "page size %d should be a power of two", ps)
}

func TestAvailablePages(t *testing.T) {
	n, err := AvailablePages()
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestMapAnonLockUnlock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	size := 4 * PageSize()

	b, err := MapAnon(size)
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM) || errors.Is(err, unix.EPERM) {
		t.Skipf("locked mappings not permitted here: %v", err)
	}
	require.NoError(t, err)
	defer func() {
		require.NoError(t, Unmap(b))
	}()

	require.Len(t, b, size)
	assert.Zero(t, Addr(b)%uintptr(PageSize()))

	b[0] = 0xAA
	b[size-1] = 0x55

	if err := Lock(b); err != nil {
		t.Skipf("mlock not permitted here: %v", err)
	}
	require.NoError(t, Unlock(b))
}

func TestMapAnonInvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	require.Error(t, err)
}
