package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"math"

	"github.com/golang/freetype/truetype"
)

// ErrExportCanceled is the distinct outcome of a cooperatively canceled
// export. It is not a failure: partial frame resources are already cleaned
// up when it is returned.
var ErrExportCanceled = errors.New("export canceled")

// FrameEncoder is the external video encoder boundary. Frames arrive in
// strict index order; Finalize closes the container. Abort discards
// partially written output.
type FrameEncoder interface {
	WriteFrame(index int, data []byte) error
	Finalize() error
	Abort()
}

type ExportPhase int

const (
	PhasePrepare ExportPhase = iota
	PhaseEncode
)

func (p ExportPhase) String() string {
	if p == PhaseEncode {
		return "encoding"
	}
	return "preparing frames"
}

// ExportOptions sizes the frame sequence handed to the encoder.
type ExportOptions struct {
	Width, Height   int
	FPS             float64
	DurationSeconds float64
	Font            *truetype.Font
}

// FrameCount is the exact number of frames the export will produce.
func (o ExportOptions) FrameCount() int {
	n := int(math.Round(o.FPS * o.DurationSeconds))
	if n < 2 {
		n = 2
	}
	return n
}

// exportAnimation renders every frame in order and streams each to the
// encoder. The loop is sequential: a frame is fully rendered, encoded to PNG
// and written before the next starts, with a cancellation check between
// frames. onProgress, when non-nil, is told about both phases.
func exportAnimation(ctx context.Context, state *TrackState, opts ExportOptions, enc FrameEncoder, onProgress func(phase ExportPhase, done, total int)) error {
	if len(state.Samples) < 2 {
		return ErrInsufficientData
	}
	frameCount := opts.FrameCount()
	report := func(phase ExportPhase, done int) {
		if onProgress != nil {
			onProgress(phase, done, frameCount)
		}
	}

	buf := new(bytes.Buffer)
	for i := 0; i < frameCount; i++ {
		select {
		case <-ctx.Done():
			enc.Abort()
			return ErrExportCanceled
		default:
		}

		progress := float64(i) / float64(frameCount-1)
		img := renderFrame(state, progress, opts.Width, opts.Height, opts.Font)

		buf.Reset()
		if err := png.Encode(buf, img); err != nil {
			enc.Abort()
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
		if err := enc.WriteFrame(i, buf.Bytes()); err != nil {
			enc.Abort()
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		report(PhasePrepare, i+1)
	}

	report(PhaseEncode, 0)
	if err := enc.Finalize(); err != nil {
		return fmt.Errorf("encoder failed: %w", err)
	}
	report(PhaseEncode, frameCount)
	return nil
}
