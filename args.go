package main

import (
	"flag"
	"fmt"
)

type aspectPreset struct {
	Width, Height int
}

var aspectPresets = map[string]aspectPreset{
	"landscape": {1920, 1080},
	"portrait":  {1080, 1920},
	"square":    {1080, 1080},
}

// Arguments is the full CLI option set.
type Arguments struct {
	GpxFile    string
	OutputFile string

	DurationSeconds float64
	Framerate       float64
	Aspect          string
	Width, Height   int
	Quality         QualityPreset

	TrimMeters float64
	SpeedCap   float64

	Units Units
	Skin  Skin
	Zoom  float64
	PanX  float64
	PanY  float64

	Heat      bool
	Splits    bool
	Outline   bool
	Legend    bool
	HUD       bool
	Elevation bool
	Title     string

	MapStyle    string
	WithWeather bool

	PreviewAt float64
	PlayDir   string
}

func parseArguments() (*Arguments, error) {
	args := &Arguments{}
	var unitsStr, skinStr, qualityStr string

	flag.StringVar(&args.GpxFile, "gpx", "", "Path to the GPX file.")
	flag.StringVar(&args.OutputFile, "o", "route.mp4", "Output video file name.")
	flag.Float64Var(&args.DurationSeconds, "duration", 20, "Animation duration in seconds.")
	flag.Float64Var(&args.Framerate, "fps", 30, "Output frame rate.")
	flag.StringVar(&args.Aspect, "aspect", "landscape", "Canvas preset: landscape, portrait or square.")
	flag.StringVar(&qualityStr, "quality", "fast", "Encoder preset: fast or high.")
	flag.Float64Var(&args.TrimMeters, "trim", 0, "Meters to trim from each end for privacy.")
	flag.Float64Var(&args.SpeedCap, "speed-cap", 0, "Spike rejection speed cap in m/s (0 = automatic).")
	flag.StringVar(&unitsStr, "units", "metric", "Display units: metric or imperial.")
	flag.StringVar(&skinStr, "skin", "dark", "Visual skin: dark or light.")
	flag.Float64Var(&args.Zoom, "zoom", 1, "View zoom factor.")
	flag.Float64Var(&args.PanX, "pan-x", 0, "View pan in pixels, horizontal.")
	flag.Float64Var(&args.PanY, "pan-y", 0, "View pan in pixels, vertical.")
	flag.BoolVar(&args.Heat, "heat", false, "Color the route by speed.")
	flag.BoolVar(&args.Splits, "splits", false, "Mark whole km/mile boundaries.")
	flag.BoolVar(&args.Outline, "outline", true, "High-contrast outline under the route.")
	flag.BoolVar(&args.Legend, "legend", false, "Speed legend (with -heat).")
	flag.BoolVar(&args.HUD, "hud", true, "Statistics HUD.")
	flag.BoolVar(&args.Elevation, "elevation", true, "Elevation profile strip.")
	flag.StringVar(&args.Title, "title", "", "Title text.")
	flag.StringVar(&args.MapStyle, "map", "", "Map tile background style (default, cyclosm, positron); empty disables.")
	flag.BoolVar(&args.WithWeather, "weather", false, "Look up historical weather for the track.")
	flag.Float64Var(&args.PreviewAt, "preview", -1, "Render a single frame at this progress [0,1] to a PNG and exit.")
	flag.StringVar(&args.PlayDir, "play", "", "Play the animation in real time, dumping frames into this directory.")
	flag.Parse()

	preset, ok := aspectPresets[args.Aspect]
	if !ok {
		return nil, fmt.Errorf("unknown aspect preset: %s", args.Aspect)
	}
	args.Width = preset.Width
	args.Height = preset.Height

	switch unitsStr {
	case "metric":
		args.Units = UnitsMetric
	case "imperial":
		args.Units = UnitsImperial
	default:
		return nil, fmt.Errorf("unknown units: %s", unitsStr)
	}

	switch skinStr {
	case "dark":
		args.Skin = SkinDark
	case "light":
		args.Skin = SkinLight
	default:
		return nil, fmt.Errorf("unknown skin: %s", skinStr)
	}

	switch qualityStr {
	case "fast":
		args.Quality = PresetFast
	case "high":
		args.Quality = PresetQuality
	default:
		return nil, fmt.Errorf("unknown quality preset: %s", qualityStr)
	}

	if args.GpxFile == "" {
		return nil, fmt.Errorf("a GPX file is required (-gpx)")
	}
	if args.DurationSeconds <= 0 || args.Framerate <= 0 {
		return nil, fmt.Errorf("duration and fps must be positive")
	}
	return args, nil
}
