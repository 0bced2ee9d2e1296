package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/image/font/gofont/goregular"
)

func main() {
	args, err := parseArguments()
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	data, err := os.ReadFile(args.GpxFile)
	if err != nil {
		log.Fatalf("Error reading GPX file: %v", err)
	}
	points, err := parseTrack(data)
	if err != nil {
		log.Fatalf("Error parsing GPX: %v", err)
	}
	if len(points) == 0 {
		log.Fatal("No track or route points found in file.")
	}

	cfg := defaultCleanConfig()
	cfg.SpeedCapHint = args.SpeedCap
	cfg.TrimMeters = args.TrimMeters
	cleaned := cleanTrack(points, cfg)

	frameCount := args.exportOptions(nil).FrameCount()
	samples, err := resample(cleaned, frameCount)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			log.Fatal("Not enough usable points after cleaning to animate.")
		}
		log.Fatalf("Resampling failed: %v", err)
	}

	state := newTrackState(samples, sampleStep(samples), args.displayOptions()).
		WithView(args.Zoom, args.PanX, args.PanY)
	attachCollaborators(state, args, cleaned)

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("Error loading font: %v", err)
	}

	switch {
	case args.PreviewAt >= 0:
		img := renderFrame(state, args.PreviewAt, args.Width, args.Height, font)
		out := previewName(args.OutputFile)
		if err := gg.SavePNG(out, img); err != nil {
			log.Fatalf("Error saving preview: %v", err)
		}
		log.Printf("Saved %s", out)

	case args.PlayDir != "":
		if err := playAnimation(state, args, font); err != nil {
			log.Fatalf("Playback failed: %v", err)
		}

	default:
		if err := exportVideo(state, args, font); err != nil {
			if errors.Is(err, ErrExportCanceled) {
				log.Println("Export canceled.")
				return
			}
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("\nVideo saved to %s\n", args.OutputFile)
	}
}

func (a *Arguments) displayOptions() DisplayOptions {
	return DisplayOptions{
		Units:     a.Units,
		Skin:      a.Skin,
		Heat:      a.Heat,
		Splits:    a.Splits,
		Outline:   a.Outline,
		Legend:    a.Legend,
		HUD:       a.HUD,
		Elevation: a.Elevation,
		Title:     a.Title,
	}
}

func (a *Arguments) exportOptions(font *truetype.Font) ExportOptions {
	return ExportOptions{
		Width:           a.Width,
		Height:          a.Height,
		FPS:             a.Framerate,
		DurationSeconds: a.DurationSeconds,
		Font:            font,
	}
}

// attachCollaborators fills the optional overlays. Both collaborators are
// best-effort: failures are logged and the overlay stays empty.
func attachCollaborators(state *TrackState, args *Arguments, cleaned []Point) {
	if args.MapStyle != "" {
		backdrop, err := fetchBackdrop(state.Samples, args.Width, args.Height, args.MapStyle)
		if err != nil {
			log.Printf("Map background unavailable: %v", err)
		} else {
			state.Opts.Background = backdrop
		}
	}
	if args.WithWeather {
		mid := state.Samples[len(state.Samples)/2]
		report, err := fetchWeather(mid.Lat, mid.Lon, cleaned[0].Timestamp)
		if err != nil {
			log.Printf("Weather unavailable: %v", err)
		} else {
			state.Opts.Weather = report
		}
	}
}

func exportVideo(state *TrackState, args *Arguments, font *truetype.Font) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := args.exportOptions(font)
	frameCount := opts.FrameCount()

	encodeBar := progressbar.Default(int64(frameCount), "Encoding")
	enc, err := newFFmpegEncoder(args.OutputFile, args.Framerate, args.Quality, func(frames int) {
		encodeBar.Set(frames)
	})
	if err != nil {
		return err
	}

	prepBar := progressbar.Default(int64(frameCount), "Rendering")
	return exportAnimation(ctx, state, opts, enc, func(phase ExportPhase, done, total int) {
		if phase == PhasePrepare {
			prepBar.Set(done)
		}
	})
}

// playAnimation runs the real-time playback loop, dumping each displayed
// frame into the play directory with zero-padded names.
func playAnimation(state *TrackState, args *Arguments, font *truetype.Font) error {
	if err := os.MkdirAll(args.PlayDir, 0755); err != nil {
		return fmt.Errorf("failed to create play directory: %w", err)
	}

	done := make(chan struct{})
	frameNum := 0
	player := newPlayer(systemClock{}, newTickerScheduler(args.Framerate),
		time.Duration(args.DurationSeconds*float64(time.Second)), nil)
	player.onFrame = func(progress float64) {
		img := renderFrame(state, progress, args.Width, args.Height, font)
		name := filepath.Join(args.PlayDir, fmt.Sprintf("frame_%06d.png", frameNum))
		if err := gg.SavePNG(name, img); err != nil {
			log.Printf("Failed to save %s: %v", name, err)
		}
		frameNum++
		if progress >= 1 {
			close(done)
		}
	}

	player.Play()
	<-done
	log.Printf("Wrote %d frames to %s", frameNum, args.PlayDir)
	return nil
}

func previewName(output string) string {
	base := output[:len(output)-len(filepath.Ext(output))]
	return base + "_preview.png"
}
