package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeEncoder struct {
	frames    []int
	finalized bool
	aborted   bool

	failAtIndex int // -1 disables
	onFrame     func(index int)
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{failAtIndex: -1}
}

func (f *fakeEncoder) WriteFrame(index int, data []byte) error {
	if f.failAtIndex >= 0 && index == f.failAtIndex {
		return fmt.Errorf("disk full")
	}
	if len(data) == 0 {
		return fmt.Errorf("empty frame %d", index)
	}
	f.frames = append(f.frames, index)
	if f.onFrame != nil {
		f.onFrame(index)
	}
	return nil
}

func (f *fakeEncoder) Finalize() error {
	f.finalized = true
	return nil
}

func (f *fakeEncoder) Abort() {
	f.aborted = true
}

func exportTestOptions(fps, duration float64, t *testing.T) ExportOptions {
	return ExportOptions{Width: 160, Height: 90, FPS: fps, DurationSeconds: duration, Font: testFont(t)}
}

func TestExportWritesAllFramesInOrder(t *testing.T) {
	state := renderTestState(t, DisplayOptions{HUD: true, Elevation: true})
	enc := newFakeEncoder()
	opts := exportTestOptions(5, 2, t) // 10 frames

	var phases []ExportPhase
	err := exportAnimation(context.Background(), state, opts, enc, func(phase ExportPhase, done, total int) {
		phases = append(phases, phase)
		if total != 10 {
			t.Errorf("total: got %d, want 10", total)
		}
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(enc.frames) != 10 {
		t.Fatalf("expected 10 frames, got %d", len(enc.frames))
	}
	for i, idx := range enc.frames {
		if idx != i {
			t.Errorf("frame %d arrived out of order as %d", i, idx)
		}
	}
	if !enc.finalized {
		t.Error("encoder was never finalized")
	}
	if enc.aborted {
		t.Error("successful export must not abort")
	}
	if phases[len(phases)-1] != PhaseEncode {
		t.Error("export must end in the encoding phase")
	}
}

func TestExportCancellation(t *testing.T) {
	state := renderTestState(t, DisplayOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	enc := newFakeEncoder()
	enc.onFrame = func(index int) {
		if index == 5 {
			cancel()
		}
	}
	opts := exportTestOptions(15, 2, t) // 30 frames

	err := exportAnimation(ctx, state, opts, enc, nil)
	if !errors.Is(err, ErrExportCanceled) {
		t.Fatalf("expected ErrExportCanceled, got %v", err)
	}
	if len(enc.frames) != 6 { // frames 0..5, nothing after the cancel
		t.Errorf("expected writes to stop after frame 5, got %d frames", len(enc.frames))
	}
	if enc.finalized {
		t.Error("canceled export must not finalize")
	}
	if !enc.aborted {
		t.Error("canceled export must clean up partial frames")
	}
}

func TestExportEncoderFailure(t *testing.T) {
	state := renderTestState(t, DisplayOptions{})
	enc := newFakeEncoder()
	enc.failAtIndex = 3
	opts := exportTestOptions(5, 2, t)

	err := exportAnimation(context.Background(), state, opts, enc, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrExportCanceled) {
		t.Error("encoder failure must not report as canceled")
	}
	if !enc.aborted {
		t.Error("failed export must clean up")
	}
}

func TestExportInsufficientData(t *testing.T) {
	state := newTrackState(nil, 0, DisplayOptions{})
	enc := newFakeEncoder()

	err := exportAnimation(context.Background(), state, exportTestOptions(5, 2, t), enc, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if len(enc.frames) != 0 {
		t.Error("no frames should be written for degenerate input")
	}
}

func TestExportFrameCount(t *testing.T) {
	tests := []struct {
		fps, duration float64
		want          int
	}{
		{30, 10, 300},
		{23.976, 10, 240},
		{1, 0.5, 2}, // floor of 2
	}
	for _, tc := range tests {
		opts := ExportOptions{FPS: tc.fps, DurationSeconds: tc.duration}
		if got := opts.FrameCount(); got != tc.want {
			t.Errorf("FrameCount(%v, %v): got %d, want %d", tc.fps, tc.duration, got, tc.want)
		}
	}
}
