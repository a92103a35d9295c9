package contig

import (
	"errors"
	"io"
	"testing"

	"github.com/joshuapare/contigmem/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeReadsFrame(t *testing.T) {
	f := newFixture(t, nil)
	f.mem.Plan = plan(testutil.Contiguous(0x4242, 1))

	frame, err := f.a.Probe()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x4242), frame)
	assert.Zero(t, f.mem.Live())
	assert.True(t, f.frames.Closed())
}

func TestProbeDenied(t *testing.T) {
	f := newFixture(t, nil)
	f.mem.Plan = plan([]uint32{0})

	_, err := f.a.Probe()
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, f.mem.Live())
}

func TestProbeUnavailable(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.OpenFrameMap = func() (io.ReadSeekCloser, error) { return nil, errors.New("EACCES") }
	})

	_, err := f.a.Probe()
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, f.mem.Allocs())
}

func TestProbeBackendFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.mem.FailAlloc = 1

	_, err := f.a.Probe()
	require.ErrorIs(t, err, ErrBackendBroken)
	assert.True(t, f.frames.Closed())
}

func TestProbeFrameMapCloseIsFatal(t *testing.T) {
	var fatal error
	f := newFixture(t, func(o *Options) {
		o.OnFatal = func(err error) { fatal = err }
	})
	f.mem.Plan = plan(testutil.Contiguous(0x4242, 1))
	f.frames.CloseErr = errors.New("EIO")

	_, err := f.a.Probe()
	require.ErrorIs(t, err, ErrFrameMapClose)
	assert.True(t, IsFatal(err))
	require.Error(t, fatal, "OnFatal must be called")
	assert.ErrorIs(t, fatal, ErrFrameMapClose)
	assert.Zero(t, f.mem.Live(), "probe page is released before the close")
	assert.Contains(t, f.logs.String(), "frame map close failed")
}

func TestProbeBackendFailureWithCloseFailure(t *testing.T) {
	calls := 0
	f := newFixture(t, func(o *Options) {
		o.OnFatal = func(error) { calls++ }
	})
	f.mem.FailAlloc = 1
	f.frames.CloseErr = errors.New("EIO")

	_, err := f.a.Probe()
	require.ErrorIs(t, err, ErrFrameMapClose)
	assert.Equal(t, 1, calls)
}
