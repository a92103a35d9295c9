// Package contig selects and pins memory blocks whose physical backing is
// contiguous, or close enough to contiguous that the CPU caches cannot tell
// the difference.
//
// # Overview
//
// Hardware prefetchers and set-associative caches behave best when a buffer
// occupies consecutive physical frames. User space cannot ask Linux for that
// directly, so the Allocator searches for it: it allocates a candidate block,
// pins it, reads its frame numbers from /proc/self/pagemap and scores how far
// the frames are from a contiguous run. The best candidate is kept and every
// other one is released.
//
// This is slow. Allocators are meant for long-lived pools created once at
// start-up and kept for the life of the process.
//
// # Usage
//
//	a, err := contig.New(contig.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	blk, err := a.Allocate(ctx, 256<<20)
//	if err != nil {
//	    return err
//	}
//	defer a.Release(blk)
//
//	pool := blk.Bytes()
//
// # Scoring
//
// Consecutive pages whose frames differ by exactly one are contiguous. Any
// other step is a gap. A gap is tolerated when both the expected frame and
// the actual frame have all bits below the cache granularity clear, i.e. the
// jump lands on the same position within the cache's mapping span:
//
//	factor = granularity/pageSize - 1
//	((prev+1) | cur) & factor == 0   // compatible gap
//
// Candidates with an incompatible gap are rejected. Among accepted
// candidates the one with the fewest gaps wins, and a gap-free candidate
// ends the search at once.
//
// # Trial Budget
//
// At most MaxAttempts candidates are tried, and never more than would pin
// three quarters of the currently free physical pages.
//
// # Strategies
//
// Two raw allocation strategies are available, chosen through Options:
//
//   - StrategyHeap: a Go heap block aligned to BlockAlign (2 MiB by default)
//   - StrategyMmap: an anonymous private mapping, locked and populated
//
// Both pin the block with mlock(2). A Block must be returned through
// Allocator.Release, which unpins it and frees it with the strategy that
// produced it.
//
// # Privileges
//
// Reading frame numbers needs CAP_SYS_ADMIN. Without it the kernel reports
// frame zero for every page and Allocate fails with ErrPermissionDenied,
// unless Options.Failover is set. Pinning is subject to RLIMIT_MEMLOCK.
//
// # Thread Safety
//
// An Allocator reuses one trial table across calls and is not safe for
// concurrent use. Serialize calls or use one Allocator per goroutine; the
// pkg/physmem package offers a process-wide, serialized instance.
package contig
