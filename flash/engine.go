// Package flash implements the page-oriented flashing engine: streaming one
// image's bytes into a target's device-side staging buffer and issuing
// page-program commands in geometry-aware batches.
package flash

import (
	"context"

	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/target"
)

// Device is the narrow slice of cloader.Cloader the engine needs. Any type
// with these two methods satisfies it, which keeps engine tests free of a
// real link.Adapter.
type Device interface {
	UploadBuffer(ctx context.Context, g target.Geometry, bufferPageIndex, offset uint16, data []byte) error
	WriteFlash(ctx context.Context, g target.Geometry, bufferStartPage, flashDestPage uint16, numPages uint8) error
}

// Engine streams one image onto one target through a Device.
type Engine struct {
	Device Device
}

// New wraps device.
func New(device Device) *Engine {
	return &Engine{Device: device}
}

// Options configures one Flash call.
type Options struct {
	// Progress receives milestone reports; nil disables reporting.
	Progress Callback

	// Terminate is polled once per page upload; nil means never terminate.
	Terminate TerminateFunc

	// ArtifactIndex and TotalArtifacts are threaded into Progress for
	// multi-artifact batches; each defaults to 1 when left at 0.
	ArtifactIndex  int
	TotalArtifacts int
}

// Flash streams image onto the target described by g, in page-size chunks,
// issuing a write_flash batch every time the device's buffer fills and a
// final residual batch for any pages left over.
func (e *Engine) Flash(ctx context.Context, g target.Geometry, image []byte, opts Options) (err error) {
	total := opts.TotalArtifacts
	if total == 0 {
		total = 1
	}
	index := opts.ArtifactIndex
	if index == 0 {
		index = 1
	}

	if usable := g.UsableBytes(); len(image) > usable {
		e.report(opts.Progress, Progress{
			Phase: PhaseError, Message: "insufficient space to flash image",
			ArtifactIndex: index, TotalArtifacts: total,
		})
		return ferrors.New(ferrors.KindInsufficientSpace, &insufficientSpaceError{ImageLen: len(image), UsableBytes: usable})
	}

	e.report(opts.Progress, Progress{
		Phase: PhaseStarting, Message: "starting", ArtifactIndex: index, TotalArtifacts: total,
	})

	pageCount := (len(image) + g.PageSize - 1) / g.PageSize
	ctr := 0
	bytesUploaded := 0

	defer func() {
		if err != nil {
			e.report(opts.Progress, Progress{
				Phase: PhaseError, Message: "flashing failed",
				Percent:       percentOf(bytesUploaded, len(image)),
				ArtifactIndex: index, TotalArtifacts: total,
			})
		}
	}()

	for i := 0; i < pageCount; i++ {
		if opts.Terminate != nil && opts.Terminate() {
			return ferrors.New(ferrors.KindTerminated, &terminatedError{})
		}

		start := i * g.PageSize
		end := start + g.PageSize
		if end > len(image) {
			end = len(image)
		}
		slice := image[start:end]

		if err := e.Device.UploadBuffer(ctx, g, uint16(ctr), 0, slice); err != nil {
			return err
		}
		ctr++
		bytesUploaded += len(slice)

		e.report(opts.Progress, Progress{
			Phase: PhaseUploading, Message: "uploading buffer",
			Percent:        percentOf(bytesUploaded, len(image)),
			ArtifactIndex:  index, TotalArtifacts: total,
		})

		if ctr == g.BufferPages {
			dest := g.StartPage + i - (ctr - 1)
			if err := e.Device.WriteFlash(ctx, g, 0, uint16(dest), uint8(ctr)); err != nil {
				return err
			}
			e.report(opts.Progress, Progress{
				Phase: PhaseWriting, Message: "writing buffer to flash",
				Percent:        percentOf(bytesUploaded, len(image)),
				ArtifactIndex:  index, TotalArtifacts: total,
			})
			ctr = 0
		}
	}

	if ctr > 0 {
		dest := g.StartPage + (pageCount - 1) - (ctr - 1)
		if err := e.Device.WriteFlash(ctx, g, 0, uint16(dest), uint8(ctr)); err != nil {
			return err
		}
		e.report(opts.Progress, Progress{
			Phase: PhaseWriting, Message: "writing buffer to flash",
			Percent:        percentOf(bytesUploaded, len(image)),
			ArtifactIndex:  index, TotalArtifacts: total,
		})
	}

	e.report(opts.Progress, Progress{
		Phase: PhaseComplete, Message: "flash complete", Percent: 100,
		ArtifactIndex: index, TotalArtifacts: total,
	})
	return nil
}

func (e *Engine) report(cb Callback, p Progress) {
	if cb != nil {
		cb(p)
	}
}

func percentOf(done, total int) int {
	if total <= 0 {
		return 100
	}
	pct := done * 100 / total
	if pct > 100 {
		return 100
	}
	return pct
}
