package physmem

import (
	"context"
	"errors"
	"sync"

	"github.com/joshuapare/contigmem/contig"
)

// ErrConfigured indicates Configure was called after the allocator was built.
var ErrConfigured = errors.New("physmem: allocator already initialized")

var (
	mu    sync.Mutex
	opts  = contig.DefaultOptions()
	alloc *contig.Allocator
)

// Configure sets the options of the process-wide allocator. It must be
// called before the first Allocate.
func Configure(o contig.Options) error {
	mu.Lock()
	defer mu.Unlock()
	if alloc != nil {
		return ErrConfigured
	}
	if o.PagemapPath == "" {
		o.PagemapPath = contig.DefaultOptions().PagemapPath
	}
	if err := o.Validate(); err != nil {
		return err
	}
	opts = o
	return nil
}

func instance() (*contig.Allocator, error) {
	if alloc != nil {
		return alloc, nil
	}
	a, err := contig.New(opts)
	if err != nil {
		return nil, err
	}
	alloc = a
	return alloc, nil
}

// Allocate returns a pinned block of at least size bytes from the
// process-wide allocator. See contig.Allocator.Allocate.
func Allocate(size int) (*contig.Block, error) {
	return AllocateContext(context.Background(), size)
}

// AllocateContext is Allocate with a context checked between trials.
func AllocateContext(ctx context.Context, size int) (*contig.Block, error) {
	mu.Lock()
	defer mu.Unlock()
	a, err := instance()
	if err != nil {
		return nil, err
	}
	return a.Allocate(ctx, size)
}

// Free unpins and releases a block returned by Allocate. It is the only
// sanctioned way to release such a block.
func Free(b *contig.Block) error {
	mu.Lock()
	defer mu.Unlock()
	a, err := instance()
	if err != nil {
		return err
	}
	return a.Release(b)
}

// reset drops the process-wide allocator. Tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	alloc = nil
	opts = contig.DefaultOptions()
}
