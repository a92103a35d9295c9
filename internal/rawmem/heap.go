package rawmem

import (
	"fmt"

	"github.com/joshuapare/contigmem/internal/buf"
)

// Heap hands out Go heap blocks aligned to Align bytes. The runtime never
// moves heap objects, so an aligned sub-slice keeps its address for as long
// as the backing allocation stays reachable; Heap holds that reference until
// Free.
//
// Heap is not safe for concurrent use.
type Heap struct {
	align int
	live  map[uintptr][]byte
}

// NewHeap returns a heap allocator aligning blocks to align, a power of two.
func NewHeap(align int) (*Heap, error) {
	if !buf.IsPow2(align) {
		return nil, fmt.Errorf("rawmem: heap alignment %d is not a power of two", align)
	}
	return &Heap{align: align, live: make(map[uintptr][]byte)}, nil
}

// Alloc returns a zeroed block of size bytes whose address is a multiple of the alignment.
func (h *Heap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("rawmem: invalid heap block size %d", size)
	}
	total, ok := buf.AddOverflowSafe(size, h.align)
	if !ok {
		return nil, fmt.Errorf("rawmem: heap block size %d overflows with alignment %d", size, h.align)
	}

	raw := make([]byte, total)
	pad := int(uintptr(h.align)-Addr(raw)%uintptr(h.align)) % h.align
	b := raw[pad : pad+size : pad+size]
	h.live[Addr(b)] = raw
	return b, nil
}

// Free drops the reference to a block returned by Alloc so the collector can reclaim it.
func (h *Heap) Free(b []byte) error {
	addr := Addr(b)
	if _, ok := h.live[addr]; !ok {
		return fmt.Errorf("%w: heap block at 0x%x", ErrUnknownBlock, addr)
	}
	delete(h.live, addr)
	return nil
}

// Live returns the number of blocks not yet freed.
func (h *Heap) Live() int { return len(h.live) }
