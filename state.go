package main

import "image"

type Units int

const (
	UnitsMetric Units = iota
	UnitsImperial
)

const metersPerMile = 1609.344

type Skin int

const (
	SkinDark Skin = iota
	SkinLight
)

// DisplayOptions is the overlay toggle set. A zero value renders a plain
// solid route with the HUD and elevation strip enabled.
type DisplayOptions struct {
	Units      Units
	Skin       Skin
	Heat       bool
	Splits     bool
	Outline    bool
	Legend     bool
	HUD        bool
	Elevation  bool
	Title      string
	Weather    *WeatherReport
	Background image.Image
}

// TrackState is the immutable snapshot the renderer works from. Any change
// to samples, pan/zoom, or options produces a fresh snapshot; nothing
// mutates one that a render loop may be reading.
type TrackState struct {
	Samples     []Sample
	Kinematics  Kinematics
	StepSeconds float64
	Zoom        float64
	PanX, PanY  float64
	Opts        DisplayOptions
}

func newTrackState(samples []Sample, stepSeconds float64, opts DisplayOptions) *TrackState {
	return &TrackState{
		Samples:     samples,
		Kinematics:  deriveKinematics(samples, stepSeconds),
		StepSeconds: stepSeconds,
		Zoom:        1,
		Opts:        opts,
	}
}

// WithView derives a snapshot with different pan/zoom, sharing the sample
// sequence and derived kinematics.
func (ts *TrackState) WithView(zoom, panX, panY float64) *TrackState {
	next := *ts
	next.Zoom = zoom
	next.PanX = panX
	next.PanY = panY
	return &next
}

// TotalMeters is the resampled route length.
func (ts *TrackState) TotalMeters() float64 {
	if len(ts.Samples) == 0 {
		return 0
	}
	return ts.Samples[len(ts.Samples)-1].CumulativeMeters
}
