package testutil

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/joshuapare/contigmem/internal/buf"
)

const (
	recordSize = 8
	presentBit = 1 << 63
)

type mappedRange struct {
	startPage uint64
	frames    []uint32
}

// FrameMap is an in-memory stand-in for /proc/self/pagemap. Pages that were
// never mapped read back as zero records, which is what an unprivileged
// process sees from the real file.
type FrameMap struct {
	PageSize int

	// CloseErr is returned by Close when set.
	CloseErr error
	// ReadErr is returned by every Read when set.
	ReadErr error

	ranges []mappedRange
	off    int64
	closed bool
	reads  int
}

// NewFrameMap returns an empty frame map for the given page size.
func NewFrameMap(pageSize int) *FrameMap {
	return &FrameMap{PageSize: pageSize}
}

// Map registers frames for the consecutive virtual pages starting at addr.
// Later registrations shadow earlier ones covering the same pages.
func (m *FrameMap) Map(addr uintptr, frames []uint32) {
	start := uint64(addr) / uint64(m.PageSize)
	m.Unmap(addr)
	m.ranges = append(m.ranges, mappedRange{startPage: start, frames: frames})
	sort.Slice(m.ranges, func(i, j int) bool { return m.ranges[i].startPage < m.ranges[j].startPage })
}

// Unmap drops the range registered at addr, if any.
func (m *FrameMap) Unmap(addr uintptr) {
	start := uint64(addr) / uint64(m.PageSize)
	for i, r := range m.ranges {
		if r.startPage == start {
			m.ranges = append(m.ranges[:i], m.ranges[i+1:]...)
			return
		}
	}
}

func (m *FrameMap) frame(page uint64) uint32 {
	for i := len(m.ranges) - 1; i >= 0; i-- {
		r := m.ranges[i]
		if page >= r.startPage && page < r.startPage+uint64(len(r.frames)) {
			return r.frames[page-r.startPage]
		}
	}
	return 0
}

// Read implements io.Reader, synthesizing records for the current offset.
func (m *FrameMap) Read(p []byte) (int, error) {
	if m.closed {
		return 0, errors.New("testutil: read on closed frame map")
	}
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	m.reads++
	n := 0
	for n+recordSize <= len(p) {
		if m.off%recordSize != 0 {
			return n, fmt.Errorf("testutil: unaligned frame map offset %d", m.off)
		}
		rec := uint64(0)
		if f := m.frame(uint64(m.off / recordSize)); f != 0 {
			rec = uint64(f) | presentBit
		}
		buf.PutU64NE(p[n:], rec)
		n += recordSize
		m.off += recordSize
	}
	if n == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return n, nil
}

// Seek implements io.Seeker. Only io.SeekStart and io.SeekCurrent are supported.
func (m *FrameMap) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.off = offset
	case io.SeekCurrent:
		m.off += offset
	default:
		return 0, fmt.Errorf("testutil: unsupported whence %d", whence)
	}
	if m.off < 0 {
		return 0, errors.New("testutil: negative frame map offset")
	}
	return m.off, nil
}

// Close implements io.Closer.
func (m *FrameMap) Close() error {
	m.closed = true
	return m.CloseErr
}

// Closed reports whether Close was called.
func (m *FrameMap) Closed() bool { return m.closed }

// Reads returns how many Read calls were served.
func (m *FrameMap) Reads() int { return m.reads }

// Reopen clears the closed flag so the map can back another allocation call.
func (m *FrameMap) Reopen() io.ReadSeekCloser {
	m.closed = false
	return m
}

// Contiguous returns pages consecutive frames starting at base.
func Contiguous(base uint32, pages int) []uint32 {
	frames := make([]uint32, pages)
	for i := range frames {
		frames[i] = base + uint32(i)
	}
	return frames
}

// WithGapAt returns a copy of frames where every frame from page onward is
// shifted by delta, creating a single discontinuity before page.
func WithGapAt(frames []uint32, page int, delta uint32) []uint32 {
	out := append([]uint32(nil), frames...)
	for i := page; i < len(out); i++ {
		out[i] += delta
	}
	return out
}
