// Package pagemap reads the kernel's per-process virtual-to-physical frame map.
//
// /proc/self/pagemap holds one 8-byte record per virtual page of the calling
// process, indexed by virtual page number. Bits 0-54 carry the physical frame
// number (PFN) and bit 63 is set when the page is resident. Since Linux 4.0
// the PFN field reads as zero unless the caller holds CAP_SYS_ADMIN, which is
// why a zero frame for the first page of a block is treated as a denial rather
// than as a real frame.
package pagemap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/contigmem/internal/buf"
)

// DefaultPath is the frame map of the calling process.
const DefaultPath = "/proc/self/pagemap"

// RecordSize is the width of one frame record in bytes.
const RecordSize = 8

// chunkRecords bounds how many records are read per syscall.
const chunkRecords = 512

const (
	frameMask  = 1<<55 - 1
	presentBit = 1 << 63
)

var (
	// ErrUnavailable indicates the frame map could not be opened or read.
	ErrUnavailable = errors.New("pagemap: frame map unavailable")

	// ErrDenied indicates the kernel hides frame numbers from this process.
	ErrDenied = errors.New("pagemap: frame numbers denied")
)

// Record is one raw frame map entry.
type Record uint64

// Frame returns the full physical frame number.
func (r Record) Frame() uint64 { return uint64(r) & frameMask }

// Frame32 returns the low 32 bits of the physical frame number. With 4 KiB
// pages this covers physical addresses below 16 TiB; frames above that alias.
func (r Record) Frame32() uint32 { return uint32(r) }

// Present reports whether the page is resident in physical memory.
func (r Record) Present() bool { return uint64(r)&presentBit != 0 }

// MakeRecord builds a resident record for frame. Used to synthesize frame maps.
func MakeRecord(frame uint64) Record {
	return Record(frame&frameMask | presentBit)
}

// Reader walks frame records for ranges of virtual pages.
// A Reader is not safe for concurrent use.
type Reader struct {
	src      io.ReadSeekCloser
	pageSize int
	chunk    []byte
	closed   bool
}

// Open opens the frame map at path. Any failure is reported as ErrUnavailable.
func Open(path string, pageSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return New(f, pageSize), nil
}

// New wraps an already opened frame map source.
func New(src io.ReadSeekCloser, pageSize int) *Reader {
	return &Reader{
		src:      src,
		pageSize: pageSize,
		chunk:    make([]byte, chunkRecords*RecordSize),
	}
}

// Offset returns the byte offset of the record describing the page containing
// addr. It fails when the offset does not fit in an int.
func (r *Reader) Offset(addr uintptr) (int64, error) {
	page := int(addr / uintptr(r.pageSize))
	off, ok := buf.MulOverflowSafe(page, RecordSize)
	if !ok {
		return 0, fmt.Errorf("%w: record offset of address 0x%x overflows", ErrUnavailable, addr)
	}
	return int64(off), nil
}

// Frames reads the records of pages consecutive virtual pages starting at addr
// and calls fn for each one in order until fn returns false.
//
// A zero frame number in the first record yields ErrDenied. Seek failures and
// short reads yield ErrUnavailable.
func (r *Reader) Frames(addr uintptr, pages int, fn func(page int, rec Record) bool) error {
	if r.closed {
		return fmt.Errorf("%w: reader closed", ErrUnavailable)
	}
	if pages <= 0 {
		return nil
	}

	off, err := r.Offset(addr)
	if err != nil {
		return err
	}
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to 0x%x: %w", ErrUnavailable, off, err)
	}

	for page := 0; page < pages; {
		n := min(pages-page, chunkRecords)
		chunk := r.chunk[:n*RecordSize]
		if _, err := io.ReadFull(r.src, chunk); err != nil {
			return fmt.Errorf("%w: read %d records at page %d: %w", ErrUnavailable, n, page, err)
		}
		for i := 0; i < n; i++ {
			rec := Record(buf.U64NE(chunk[i*RecordSize:]))
			if page == 0 && rec.Frame32() == 0 {
				return ErrDenied
			}
			if !fn(page, rec) {
				return nil
			}
			page++
		}
	}
	return nil
}

// Close releases the underlying frame map handle.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}
