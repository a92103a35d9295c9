package contig

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/joshuapare/contigmem/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testPage        = 4096
	testGranularity = 2 * testPage // factor 1: gaps must run odd frame -> even frame
	testPages       = 16
	testRequest     = testPages * testPage
)

// fixture bundles an allocator with the fakes behind it.
type fixture struct {
	a      *Allocator
	mem    *testutil.Memory
	frames *testutil.FrameMap
	sys    *testutil.System
	logs   *bytes.Buffer
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()

	fm := testutil.NewFrameMap(testPage)
	mem := testutil.NewMemory(testPage, fm)
	sys := &testutil.System{Page: testPage, Avail: 1 << 30}
	logs := &bytes.Buffer{}

	opts := DefaultOptions()
	opts.CacheGranularity = testGranularity
	opts.BlockAlign = testGranularity
	opts.MaxAttempts = 8
	opts.Backend = mem
	opts.Pinner = mem
	opts.System = sys
	opts.OpenFrameMap = func() (io.ReadSeekCloser, error) { return fm.Reopen(), nil }
	opts.Logger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if mutate != nil {
		mutate(&opts)
	}

	a, err := New(opts)
	require.NoError(t, err)
	return &fixture{a: a, mem: mem, frames: fm, sys: sys, logs: logs}
}

// plan assigns frame sequences to allocations in order; allocations past the
// end of the list reuse the last entry.
func plan(seqs ...[]uint32) func(n, pages int) []uint32 {
	return func(n, _ int) []uint32 {
		if n >= len(seqs) {
			n = len(seqs) - 1
		}
		return seqs[n]
	}
}

// gapped returns testPages frames from an even base with a compatible gap
// before each of the given even page indexes.
func gapped(base uint32, at ...int) []uint32 {
	frames := testutil.Contiguous(base, testPages)
	for _, p := range at {
		frames = testutil.WithGapAt(frames, p, 0x100)
	}
	return frames
}

// incompatible returns testPages frames with a gap landing on an odd frame.
func incompatible(base uint32) []uint32 {
	return testutil.WithGapAt(testutil.Contiguous(base, testPages), 3, 0x100)
}
