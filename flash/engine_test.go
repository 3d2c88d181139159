package flash_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/flash"
	"github.com/bitcraze/cfloader/target"
)

type writeCall struct {
	bufferStartPage, flashDestPage uint16
	numPages                       uint8
}

type fakeDevice struct {
	uploads []int // length of each uploaded slice
	writes  []writeCall

	failUploadAt int // -1 disables
	failWriteErr error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{failUploadAt: -1}
}

func (d *fakeDevice) UploadBuffer(ctx context.Context, g target.Geometry, bufferPageIndex, offset uint16, data []byte) error {
	d.uploads = append(d.uploads, len(data))
	return nil
}

func (d *fakeDevice) WriteFlash(ctx context.Context, g target.Geometry, bufferStartPage, flashDestPage uint16, numPages uint8) error {
	if d.failWriteErr != nil {
		return d.failWriteErr
	}
	d.writes = append(d.writes, writeCall{bufferStartPage, flashDestPage, numPages})
	return nil
}

func geometryS() target.Geometry {
	return target.Geometry{ID: target.IDSTM32, PageSize: 1024, BufferPages: 10, FlashPages: 128, StartPage: 16, Addr: 0x08004000}
}

func TestFlashS1ResidualBatch(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 3500)

	require.NoError(t, eng.Flash(context.Background(), geometryS(), image, flash.Options{}))

	assert.Len(t, dev.uploads, 4)
	require.Len(t, dev.writes, 1)
	assert.Equal(t, writeCall{0, 16, 4}, dev.writes[0])
}

func TestFlashS2ExactBuffer(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 10240)

	require.NoError(t, eng.Flash(context.Background(), geometryS(), image, flash.Options{}))

	require.Len(t, dev.writes, 1)
	assert.Equal(t, writeCall{0, 16, 10}, dev.writes[0])
}

func TestFlashS3FullBatchPlusResidual(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 11264)

	require.NoError(t, eng.Flash(context.Background(), geometryS(), image, flash.Options{}))

	require.Len(t, dev.writes, 2)
	assert.Equal(t, writeCall{0, 16, 10}, dev.writes[0])
	assert.Equal(t, writeCall{0, 26, 1}, dev.writes[1])
}

func TestFlashS4InsufficientSpace(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	g := target.Geometry{ID: target.IDSTM32, PageSize: 1024, BufferPages: 10, FlashPages: 128, StartPage: 16, Addr: 0x08004000}
	usable := (g.FlashPages - g.StartPage) * g.PageSize
	image := make([]byte, usable+1)

	err := eng.Flash(context.Background(), g, image, flash.Options{})
	require.Error(t, err)
	fe, ok := ferrors.As(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.KindInsufficientSpace, fe.Kind)
	assert.Empty(t, dev.uploads)
}

func TestFlashBatchBoundNeverExceedsBufferPages(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 25*1024) // many full batches
	require.NoError(t, eng.Flash(context.Background(), geometryS(), image, flash.Options{}))

	for _, w := range dev.writes {
		assert.LessOrEqual(t, int(w.numPages), geometryS().BufferPages)
	}
}

func TestFlashPageCoverage(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 11264)
	require.NoError(t, eng.Flash(context.Background(), geometryS(), image, flash.Options{}))

	seen := make(map[int]bool)
	for _, w := range dev.writes {
		for p := 0; p < int(w.numPages); p++ {
			page := int(w.flashDestPage) + p
			assert.False(t, seen[page], "page %d written twice", page)
			seen[page] = true
		}
	}
	assert.Len(t, seen, 11)
	assert.True(t, seen[16] && seen[26])
}

func TestFlashCancellation(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 3500)

	calls := 0
	terminate := func() bool {
		calls++
		return calls > 1
	}

	err := eng.Flash(context.Background(), geometryS(), image, flash.Options{Terminate: terminate})
	require.Error(t, err)
	fe, ok := ferrors.As(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.KindTerminated, fe.Kind)
	assert.LessOrEqual(t, len(dev.uploads), 2)
}

func TestFlashProgressMonotonicAndClamped(t *testing.T) {
	dev := newFakeDevice()
	eng := flash.New(dev)
	image := make([]byte, 3500)

	var last int
	var final flash.Progress
	cb := func(p flash.Progress) {
		assert.GreaterOrEqual(t, p.Percent, last)
		last = p.Percent
		final = p
	}

	require.NoError(t, eng.Flash(context.Background(), geometryS(), image, flash.Options{Progress: cb}))
	assert.Equal(t, 100, final.Percent)
	assert.Equal(t, flash.PhaseComplete, final.Phase)
}
