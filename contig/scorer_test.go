package contig

import (
	"testing"

	"github.com/joshuapare/contigmem/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheFriendlyFactor(t *testing.T) {
	tests := []struct {
		name        string
		granularity int
		pageSize    int
		want        uint32
	}{
		{"1MiB over 4KiB pages", 1 << 20, 4096, 255},
		{"2MiB over 4KiB pages", 2 << 20, 4096, 511},
		{"1MiB over 64KiB pages", 1 << 20, 64 << 10, 15},
		{"two pages", 8192, 4096, 1},
		{"one page", 4096, 4096, 1},
		{"below a page", 1024, 4096, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CacheFriendlyFactor(tt.granularity, tt.pageSize))
		})
	}
}

func TestScoreFrames(t *testing.T) {
	const factor = 3 // granularity of four pages

	tests := []struct {
		name     string
		frames   []uint32
		wantGaps int
		wantOK   bool
	}{
		{"single page", []uint32{0x41}, 0, true},
		{"contiguous", testutil.Contiguous(0x100, 16), 0, true},
		{
			"aligned jump is compatible",
			[]uint32{0x100, 0x101, 0x102, 0x103, 0x200, 0x201, 0x202, 0x203},
			1,
			true,
		},
		{
			"two aligned jumps",
			[]uint32{0x100, 0x101, 0x102, 0x103, 0x200, 0x201, 0x202, 0x203, 0x40, 0x41},
			2,
			true,
		},
		{
			"jump into the middle of a span",
			[]uint32{0x100, 0x101, 0x102, 0x103, 0x202, 0x203},
			0,
			false,
		},
		{
			"jump out of the middle of a span",
			[]uint32{0x100, 0x101, 0x300, 0x301},
			0,
			false,
		},
		{"backwards step", []uint32{0x103, 0x100}, 1, true},
		{"repeated frame", []uint32{0x100, 0x100}, 0, false},
		{"32-bit wrap is contiguous", []uint32{0xffffffff, 0x0}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gaps, ok := ScoreFrames(tt.frames, factor)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantGaps, gaps)
			}
		})
	}
}

func TestScorerStopsAtRejection(t *testing.T) {
	s := newScorer(3)
	require.True(t, s.next(0x100))
	require.True(t, s.next(0x101))
	require.False(t, s.next(0x305))

	_, ok := s.result()
	assert.False(t, ok)
	assert.Equal(t, 2, s.seen, "the rejecting frame is not counted as inspected")
}

func TestScoreFramesFactorOne(t *testing.T) {
	// Granularity below two pages: only even-to-even gaps pass.
	gaps, ok := ScoreFrames([]uint32{0x11, 0x20, 0x21}, 1)
	require.True(t, ok)
	assert.Equal(t, 1, gaps)

	_, ok = ScoreFrames([]uint32{0x10, 0x21}, 1)
	assert.False(t, ok)
}
