package contig

import (
	"fmt"

	"github.com/joshuapare/contigmem/internal/rawmem"
)

// cleanup unpins and frees every trial except keep, newest first. Unpin
// failures are ignored because the block is freed right after; free failures
// are logged.
func (a *Allocator) cleanup(trials []trial, keep int) {
	for i := len(trials) - 1; i >= 0; i-- {
		if i == keep {
			continue
		}
		t := &trials[i]
		if t.data == nil {
			continue
		}
		if t.pinned {
			if err := a.pinner.Unlock(t.data); err != nil {
				a.log.Debug("unpin of rejected trial failed", "trial", i, "err", err)
			}
			t.pinned = false
		}
		if err := a.strategy.Free(t.data); err != nil {
			a.log.Warn(
				"release of rejected trial failed",
				"trial", i,
				"addr", fmt.Sprintf("%#x", rawmem.Addr(t.data)),
				"err", err,
			)
		}
		t.data = nil
	}
}
