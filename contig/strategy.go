package contig

import (
	"github.com/joshuapare/contigmem/internal/rawmem"
)

// Strategy obtains and releases raw memory blocks.
//
// Implementations:
//   - MmapStrategy: anonymous private mappings
//   - HeapStrategy: aligned Go heap blocks
type Strategy interface {
	// Name identifies the strategy in reports and logs.
	Name() string

	// Alloc returns a page-aligned block of exactly size bytes.
	Alloc(size int) ([]byte, error)

	// Free releases a block returned by Alloc. It must be passed the same
	// slice Alloc returned.
	Free(b []byte) error
}

// Pinner locks blocks into physical memory.
type Pinner interface {
	Lock(b []byte) error
	Unlock(b []byte) error
}

// MmapStrategy maps anonymous private memory with MAP_LOCKED, MAP_POPULATE
// and MAP_NORESERVE. Linux only.
type MmapStrategy struct{}

// Name implements Strategy.
func (MmapStrategy) Name() string { return StrategyMmap.String() }

// Alloc implements Strategy.
func (MmapStrategy) Alloc(size int) ([]byte, error) { return rawmem.MapAnon(size) }

// Free implements Strategy.
func (MmapStrategy) Free(b []byte) error { return rawmem.Unmap(b) }

// HeapStrategy allocates Go heap blocks aligned to a hint at least as large
// as the cache granularity. Not safe for concurrent use.
type HeapStrategy struct {
	heap *rawmem.Heap
}

// NewHeapStrategy returns a heap strategy aligning blocks to align bytes.
func NewHeapStrategy(align int) (*HeapStrategy, error) {
	h, err := rawmem.NewHeap(align)
	if err != nil {
		return nil, err
	}
	return &HeapStrategy{heap: h}, nil
}

// Name implements Strategy.
func (*HeapStrategy) Name() string { return StrategyHeap.String() }

// Alloc implements Strategy.
func (s *HeapStrategy) Alloc(size int) ([]byte, error) { return s.heap.Alloc(size) }

// Free implements Strategy.
func (s *HeapStrategy) Free(b []byte) error { return s.heap.Free(b) }

// mlockPinner pins with mlock(2).
type mlockPinner struct{}

func (mlockPinner) Lock(b []byte) error   { return rawmem.Lock(b) }
func (mlockPinner) Unlock(b []byte) error { return rawmem.Unlock(b) }

// System reports the system parameters the allocator sizes itself by.
type System interface {
	PageSize() int
	// AvailablePages is advisory; it only bounds the trial budget.
	AvailablePages() (uint64, error)
}

type osSystem struct{}

func (osSystem) PageSize() int                   { return rawmem.PageSize() }
func (osSystem) AvailablePages() (uint64, error) { return rawmem.AvailablePages() }

func newStrategy(opts Options) (Strategy, error) {
	if opts.Backend != nil {
		return opts.Backend, nil
	}
	if opts.Strategy == StrategyMmap {
		return MmapStrategy{}, nil
	}
	return NewHeapStrategy(opts.BlockAlign)
}
