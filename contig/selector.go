package contig

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/contigmem/internal/pagemap"
	"github.com/joshuapare/contigmem/internal/rawmem"
)

// Allocate returns the most contiguous pinned block of at least size bytes
// it can find. See EffectiveSize for the exact size.
//
// It fails with ErrPermissionDenied when frame numbers cannot be read and
// with ErrNoCandidate when no trial was cache-compatible, unless
// Options.Failover is set. A frame map that cannot be closed yields an
// error for which IsFatal reports true; no block is returned in that case.
//
// Every trial block other than the returned one is unpinned and freed
// before Allocate returns, on every path.
func (a *Allocator) Allocate(ctx context.Context, size int) (*Block, error) {
	eff, err := a.EffectiveSize(size)
	if err != nil {
		return nil, err
	}
	pages := eff / a.pageSize
	rep := newReport(a.strategy.Name(), eff, pages, a.trialBudget(pages))
	defer clear(a.trials[:cap(a.trials)])

	var (
		trials []trial
		best   = -1
		abort  error
	)

	r, err := a.openFrames()
	if err != nil {
		rep.Stop = StopDenied
		abort = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	} else {
		trials, best, abort = a.runTrials(ctx, r, eff, pages, &rep)

		if cerr := r.Close(); cerr != nil {
			a.cleanup(trials, -1)
			return nil, a.closeFailed(cerr)
		}
	}

	if abort != nil {
		// An aborted search hands out nothing, not even a block it had accepted.
		best = -1
	}
	a.cleanup(trials, best)

	if best >= 0 {
		blk := a.promote(trials[best].data, rep)
		a.logReport(rep)
		return blk, nil
	}

	if a.opts.Failover && !errors.Is(abort, context.Canceled) && !errors.Is(abort, context.DeadlineExceeded) {
		return a.failover(eff, rep)
	}

	a.log.Debug("no block selected", "report", rep)
	if abort != nil {
		return nil, abort
	}
	if rep.BackendErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCandidate, rep.BackendErr)
	}
	return nil, ErrNoCandidate
}

// runTrials allocates, pins and scores candidates until the budget runs out,
// a gap-free block turns up, the backend fails or frame inspection does. It
// returns every trial allocated, pinned or not, and the index of the best.
func (a *Allocator) runTrials(
	ctx context.Context,
	r *pagemap.Reader,
	size, pages int,
	rep *Report,
) ([]trial, int, error) {
	trials := a.trials[:0]
	best := -1

	for i := 0; i < rep.Budget; i++ {
		if err := ctx.Err(); err != nil {
			rep.Stop = StopCanceled
			return trials, best, err
		}

		data, err := a.strategy.Alloc(size)
		if err != nil {
			rep.Stop = StopBackend
			rep.BackendErr = fmt.Errorf("%w: alloc: %w", ErrBackendBroken, err)
			a.log.Warn("raw allocation failed, ending search", "trial", i, "err", err)
			break
		}
		trials = append(trials, trial{data: data})
		rep.Trials++

		if err := a.pinner.Lock(data); err != nil {
			rep.Stop = StopBackend
			rep.BackendErr = fmt.Errorf("%w: pin: %w", ErrBackendBroken, err)
			a.log.Warn("pinning failed, ending search", "trial", i, "err", err)
			break
		}
		trials[i].pinned = true

		gaps, ok, err := a.score(r, data, pages)
		if err != nil {
			rep.Stop = StopDenied
			return trials, best, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		if !ok {
			rep.Rejected++
			a.log.Debug("trial rejected", "trial", i, "addr", fmt.Sprintf("%#x", rawmem.Addr(data)))
			continue
		}

		a.log.Debug("trial accepted", "trial", i, "gaps", gaps)
		if best < 0 || gaps < rep.Gaps {
			best = i
			rep.Chosen = i
			rep.Gaps = gaps
		}
		if rep.Gaps == 0 {
			rep.Stop = StopPerfect
			break
		}
	}
	return trials, best, nil
}

// score reads the frames behind data and runs them through the scorer,
// stopping at the first incompatible gap.
func (a *Allocator) score(r *pagemap.Reader, data []byte, pages int) (int, bool, error) {
	s := newScorer(a.factor)
	err := r.Frames(rawmem.Addr(data), pages, func(_ int, rec pagemap.Record) bool {
		return s.next(rec.Frame32())
	})
	if err != nil {
		return 0, false, err
	}
	gaps, ok := s.result()
	return gaps, ok, nil
}

// failover hands out an ordinary pinned block when the search came up empty.
func (a *Allocator) failover(size int, rep Report) (*Block, error) {
	data, err := a.strategy.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("%w: failover alloc: %w", ErrBackendBroken, err)
	}
	if err := a.pinner.Lock(data); err != nil {
		if ferr := a.strategy.Free(data); ferr != nil {
			a.log.Warn("release of failover block failed", "err", ferr)
		}
		return nil, fmt.Errorf("%w: failover pin: %w", ErrBackendBroken, err)
	}

	rep.Failover = true
	a.log.Warn("no cache-compatible block found, using failover block", "stop", string(rep.Stop))
	blk := a.promote(data, rep)
	a.logReport(rep)
	return blk, nil
}

func (a *Allocator) promote(data []byte, rep Report) *Block {
	return &Block{
		data:     data,
		strategy: a.strategy,
		pinner:   a.pinner,
		report:   rep,
	}
}

func (a *Allocator) logReport(rep Report) {
	if a.opts.Report {
		a.log.Info("pinned block selected", "report", rep)
	}
}

// closeFailed reports a frame map close failure, which is fatal, and hands it
// to the OnFatal hook before it is returned.
func (a *Allocator) closeFailed(cerr error) error {
	fatal := fmt.Errorf("%w: %w", ErrFrameMapClose, cerr)
	a.log.Error("frame map close failed", "err", cerr, "path", a.opts.PagemapPath)
	if a.opts.OnFatal != nil {
		a.opts.OnFatal(fatal)
	}
	return fatal
}
