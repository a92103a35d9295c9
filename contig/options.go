package contig

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joshuapare/contigmem/internal/buf"
	"github.com/joshuapare/contigmem/internal/pagemap"
)

const (
	// DefaultCacheGranularity is the span over which the target cache's set
	// mapping repeats, rounded up to a power of two. 1 MiB covers a 1 MiB
	// 16-way L2 such as the one on the BCM2711.
	DefaultCacheGranularity = 1 << 20

	// DefaultBlockAlign is the heap strategy's alignment hint, the usual
	// transparent huge page size.
	DefaultBlockAlign = 2 << 20

	// DefaultMaxAttempts is the hard cap on trials per Allocate call.
	DefaultMaxAttempts = 1024
)

// StrategyKind selects the raw allocation strategy.
type StrategyKind int

const (
	// StrategyHeap allocates aligned blocks from the Go heap.
	StrategyHeap StrategyKind = iota
	// StrategyMmap maps anonymous, locked, pre-populated memory.
	StrategyMmap
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyHeap:
		return "heap"
	case StrategyMmap:
		return "mmap"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// ParseStrategy maps "heap" or "mmap" to a StrategyKind.
func ParseStrategy(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heap", "memalign":
		return StrategyHeap, nil
	case "mmap":
		return StrategyMmap, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q (want heap or mmap)", ErrInvalidOptions, s)
	}
}

// Options configures an Allocator.
type Options struct {
	// CacheGranularity is the cache mapping span in bytes. Must be a power of two.
	// Requests smaller than this are rounded up to it.
	CacheGranularity int

	// BlockAlign is the alignment of heap strategy blocks.
	// Must be a power of two and at least CacheGranularity.
	BlockAlign int

	// MaxAttempts caps the number of trials per Allocate call.
	MaxAttempts int

	// Strategy selects the raw allocation strategy. Ignored when Backend is set.
	Strategy StrategyKind

	// PagemapPath is the frame map to read. Default: /proc/self/pagemap.
	PagemapPath string

	// Failover returns an ordinary pinned block, marked as such, when no
	// cache-compatible block is found instead of failing.
	Failover bool

	// Report logs a quality summary at info level after each successful Allocate.
	Report bool

	// Logger receives allocator diagnostics. If nil, the process logger is used.
	Logger *slog.Logger

	// OnFatal is called with the error before Allocate returns one for which
	// IsFatal is true. Command-line drivers install a hook that exits.
	OnFatal func(error)

	// Backend, Pinner, System and OpenFrameMap replace operating system
	// access. Nil selects the real implementation.
	Backend      Strategy
	Pinner       Pinner
	System       System
	OpenFrameMap func() (io.ReadSeekCloser, error)
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		CacheGranularity: DefaultCacheGranularity,
		BlockAlign:       DefaultBlockAlign,
		MaxAttempts:      DefaultMaxAttempts,
		Strategy:         StrategyHeap,
		PagemapPath:      pagemap.DefaultPath,
	}
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if !buf.IsPow2(o.CacheGranularity) {
		return fmt.Errorf("%w: cache granularity %d is not a power of two", ErrInvalidOptions, o.CacheGranularity)
	}
	if !buf.IsPow2(o.BlockAlign) {
		return fmt.Errorf("%w: block alignment %d is not a power of two", ErrInvalidOptions, o.BlockAlign)
	}
	if o.BlockAlign < o.CacheGranularity {
		return fmt.Errorf(
			"%w: block alignment %d is smaller than cache granularity %d",
			ErrInvalidOptions,
			o.BlockAlign,
			o.CacheGranularity,
		)
	}
	if o.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidOptions, o.MaxAttempts)
	}
	if o.Strategy != StrategyHeap && o.Strategy != StrategyMmap {
		return fmt.Errorf("%w: unknown strategy %v", ErrInvalidOptions, o.Strategy)
	}
	return nil
}
