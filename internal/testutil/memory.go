package testutil

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrInjected is returned by Memory when a failure is injected.
var ErrInjected = errors.New("testutil: injected failure")

// Memory is a fake raw allocation backend and pinner. Blocks are real,
// page-aligned Go heap slices; each allocation registers its planned frames
// in Frames so the frame map reports them back.
type Memory struct {
	PageSize int
	Frames   *FrameMap

	// Plan returns the frames for the n-th allocation (0-based) of pages pages.
	// Nil plans give every block its own contiguous run.
	Plan func(n, pages int) []uint32

	// FailAlloc and FailLock fail the n-th call (1-based); zero disables.
	FailAlloc int
	FailLock  int

	// UnlockErr and FreeErr are returned by every Unlock and Free when set.
	UnlockErr error
	FreeErr   error

	allocs  int
	locks   int
	frees   int
	unlocks int
	live    map[uintptr][]byte
	pinned  map[uintptr]bool
}

// NewMemory returns a fake backend wired to frames.
func NewMemory(pageSize int, frames *FrameMap) *Memory {
	return &Memory{
		PageSize: pageSize,
		Frames:   frames,
		live:     make(map[uintptr][]byte),
		pinned:   make(map[uintptr]bool),
	}
}

func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// Name identifies the fake backend.
func (m *Memory) Name() string { return "fake" }

// Alloc returns a page-aligned block of size bytes.
func (m *Memory) Alloc(size int) ([]byte, error) {
	n := m.allocs
	m.allocs++
	if m.FailAlloc == m.allocs {
		return nil, fmt.Errorf("alloc %d: %w", n, ErrInjected)
	}

	raw := make([]byte, size+m.PageSize)
	pad := (m.PageSize - int(addrOf(raw)%uintptr(m.PageSize))) % m.PageSize
	b := raw[pad : pad+size : pad+size]
	addr := addrOf(b)
	m.live[addr] = raw

	pages := size / m.PageSize
	var frames []uint32
	if m.Plan != nil {
		frames = m.Plan(n, pages)
	} else {
		frames = Contiguous(uint32(0x100000+n*pages*2), pages)
	}
	if m.Frames != nil {
		m.Frames.Map(addr, frames)
	}
	return b, nil
}

// Free drops a block returned by Alloc.
func (m *Memory) Free(b []byte) error {
	addr := addrOf(b)
	if _, ok := m.live[addr]; !ok {
		return fmt.Errorf("testutil: free of unknown block 0x%x", addr)
	}
	delete(m.live, addr)
	if m.Frames != nil {
		m.Frames.Unmap(addr)
	}
	m.frees++
	return m.FreeErr
}

// Lock pins a block.
func (m *Memory) Lock(b []byte) error {
	m.locks++
	if m.FailLock == m.locks {
		return fmt.Errorf("lock %d: %w", m.locks, ErrInjected)
	}
	m.pinned[addrOf(b)] = true
	return nil
}

// Unlock unpins a block.
func (m *Memory) Unlock(b []byte) error {
	m.unlocks++
	delete(m.pinned, addrOf(b))
	return m.UnlockErr
}

// Allocs returns the number of Alloc calls, failed ones included.
func (m *Memory) Allocs() int { return m.allocs }

// Frees returns the number of successful Free calls.
func (m *Memory) Frees() int { return m.frees }

// Unlocks returns the number of Unlock calls.
func (m *Memory) Unlocks() int { return m.unlocks }

// Live returns the number of blocks allocated and not yet freed.
func (m *Memory) Live() int { return len(m.live) }

// Pinned returns the number of blocks currently locked.
func (m *Memory) Pinned() int { return len(m.pinned) }

// IsPinned reports whether the block starting at b is locked.
func (m *Memory) IsPinned(b []byte) bool { return m.pinned[addrOf(b)] }

// System is a fake source of system parameters.
type System struct {
	Page  int
	Avail uint64
	Err   error
}

// PageSize returns the configured page size.
func (s System) PageSize() int { return s.Page }

// AvailablePages returns the configured free page count.
func (s System) AvailablePages() (uint64, error) { return s.Avail, s.Err }
