package contig

import (
	"context"
	"io"
	"testing"

	"github.com/joshuapare/contigmem/internal/testutil"
)

// BenchmarkScoreFrames_256MiB scores the 65536 frames of a 256 MiB block of 4 KiB pages.
func BenchmarkScoreFrames_256MiB(b *testing.B) {
	frames := testutil.Contiguous(0x100000, 65536)
	for p := 256; p < len(frames); p += 256 {
		frames = testutil.WithGapAt(frames, p, 0x1000)
	}
	factor := CacheFriendlyFactor(1<<20, 4096)

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		if _, ok := ScoreFrames(frames, factor); !ok {
			b.Fatal("block rejected")
		}
	}
}

// BenchmarkAllocate_Fake measures the trial loop over fake memory, frame
// map decoding included, for a block of 256 pages.
func BenchmarkAllocate_Fake(b *testing.B) {
	fm := testutil.NewFrameMap(testPage)
	mem := testutil.NewMemory(testPage, fm)
	mem.Plan = func(n, pages int) []uint32 {
		if n%4 == 3 {
			return testutil.Contiguous(0x1000, pages)
		}
		return testutil.WithGapAt(testutil.Contiguous(0x1000, pages), 2, 0x100)
	}

	opts := DefaultOptions()
	opts.CacheGranularity = testGranularity
	opts.BlockAlign = testGranularity
	opts.Backend = mem
	opts.Pinner = mem
	opts.System = testutil.System{Page: testPage, Avail: 1 << 30}
	opts.OpenFrameMap = func() (io.ReadSeekCloser, error) { return fm.Reopen(), nil }

	a, err := New(opts)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		blk, err := a.Allocate(context.Background(), 256*testPage)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Release(blk); err != nil {
			b.Fatal(err)
		}
	}
}
