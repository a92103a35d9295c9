package contig

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/contigmem/internal/buf"
	"github.com/joshuapare/contigmem/internal/logger"
	"github.com/joshuapare/contigmem/internal/pagemap"
)

// trial is one candidate block owned by the trial loop.
type trial struct {
	data   []byte
	pinned bool
}

// Allocator searches for cache-compatible pinned blocks.
//
// Page size and the cache-friendly mask are fixed at construction, and the
// trial table is allocated once and reused by every Allocate call. An
// Allocator is not safe for concurrent use.
type Allocator struct {
	opts     Options
	pageSize int
	factor   uint32

	strategy Strategy
	pinner   Pinner
	system   System
	open     func() (io.ReadSeekCloser, error)
	log      *slog.Logger

	trials []trial
}

// New validates opts and builds an Allocator.
func New(opts Options) (*Allocator, error) {
	if opts.PagemapPath == "" {
		opts.PagemapPath = pagemap.DefaultPath
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	a := &Allocator{
		opts:   opts,
		pinner: opts.Pinner,
		system: opts.System,
		open:   opts.OpenFrameMap,
		log:    opts.Logger,
	}
	if a.pinner == nil {
		a.pinner = mlockPinner{}
	}
	if a.system == nil {
		a.system = osSystem{}
	}
	if a.log == nil {
		a.log = logger.L
	}

	a.pageSize = a.system.PageSize()
	if !buf.IsPow2(a.pageSize) {
		return nil, fmt.Errorf("%w: page size %d is not a power of two", ErrInvalidOptions, a.pageSize)
	}
	a.factor = CacheFriendlyFactor(opts.CacheGranularity, a.pageSize)

	s, err := newStrategy(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	a.strategy = s
	a.trials = make([]trial, 0, opts.MaxAttempts)
	return a, nil
}

// PageSize returns the page size the allocator works in.
func (a *Allocator) PageSize() int { return a.pageSize }

// Factor returns the cache-friendly mask used to judge gaps.
func (a *Allocator) Factor() uint32 { return a.factor }

// Strategy returns the raw allocation strategy in use.
func (a *Allocator) Strategy() Strategy { return a.strategy }

// EffectiveSize returns the size actually allocated for a request of size
// bytes: rounded up to whole pages, and at least one cache granularity unit
// and one page.
func (a *Allocator) EffectiveSize(size int) (int, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	n, err := buf.AlignUp(size, a.pageSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}
	return max(n, a.opts.CacheGranularity, a.pageSize), nil
}

// trialBudget returns how many trials a block of pages pages may use: three
// quarters of the free physical pages' worth, capped at MaxAttempts. When the
// free page count is unknown only the cap applies.
func (a *Allocator) trialBudget(pages int) int {
	avail, err := a.system.AvailablePages()
	if err != nil {
		a.log.Warn("free page count unavailable, using attempt cap", "err", err, "cap", a.opts.MaxAttempts)
		return a.opts.MaxAttempts
	}
	n := avail / uint64(pages) * 3 / 4
	if n > uint64(a.opts.MaxAttempts) {
		return a.opts.MaxAttempts
	}
	return int(n)
}

// openFrames opens the frame map through the configured hook or path.
func (a *Allocator) openFrames() (*pagemap.Reader, error) {
	if a.open == nil {
		return pagemap.Open(a.opts.PagemapPath, a.pageSize)
	}
	src, err := a.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pagemap.ErrUnavailable, err)
	}
	return pagemap.New(src, a.pageSize), nil
}
