package contig

import (
	"fmt"

	"github.com/joshuapare/contigmem/internal/pagemap"
	"github.com/joshuapare/contigmem/internal/rawmem"
)

// Probe checks whether this process can read physical frame numbers. It
// allocates one page with the configured strategy, touches it and reads its
// frame record. A nil error means Allocate can inspect frames; otherwise the
// error wraps ErrPermissionDenied or ErrBackendBroken. A frame map that
// cannot be closed is fatal and goes through Options.OnFatal as in Allocate.
func (a *Allocator) Probe() (uint64, error) {
	r, err := a.openFrames()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	data, err := a.strategy.Alloc(a.pageSize)
	if err != nil {
		if cerr := r.Close(); cerr != nil {
			return 0, a.closeFailed(cerr)
		}
		return 0, fmt.Errorf("%w: alloc: %w", ErrBackendBroken, err)
	}
	data[0] = 1

	var frame uint64
	ferr := r.Frames(rawmem.Addr(data), 1, func(_ int, rec pagemap.Record) bool {
		frame = rec.Frame()
		return false
	})
	if err := a.strategy.Free(data); err != nil {
		a.log.Warn("release of probe page failed", "err", err)
	}
	if err := r.Close(); err != nil {
		return 0, a.closeFailed(err)
	}
	if ferr != nil {
		return 0, fmt.Errorf("%w: %w", ErrPermissionDenied, ferr)
	}
	return frame, nil
}
