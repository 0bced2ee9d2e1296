package main

import (
	"errors"
	"math"
	"time"
)

// ErrInsufficientData marks tracks that cannot produce an animation: no
// parsable points, or fewer than two after cleaning.
var ErrInsufficientData = errors.New("insufficient track data")

// Sample is one entry of the time-uniform sequence the renderer consumes.
// PaceMinPerKm is NaN where the implied speed is zero; Ele is NaN where
// either bracketing point lacked elevation.
type Sample struct {
	Lon, Lat         float64
	Ele              float64
	Timestamp        time.Time
	CumulativeMeters float64
	PaceMinPerKm     float64
}

// resample maps an irregularly-timed cleaned track onto exactly frameCount
// evenly time-spaced samples spanning the track's full time range.
// Interpolation walks the input with a monotone cursor, so the whole pass is
// a single merge over both sequences.
func resample(points []Point, frameCount int) ([]Sample, error) {
	points = finitePoints(points)
	if len(points) < 2 {
		return nil, ErrInsufficientData
	}
	if frameCount < 2 {
		frameCount = 2
	}

	startMs := points[0].Timestamp.UnixMilli()
	endMs := points[len(points)-1].Timestamp.UnixMilli()
	spanMs := endMs - startMs
	stepSeconds := float64(spanMs) / float64(frameCount-1) / 1000

	samples := make([]Sample, 0, frameCount)
	cursor := 0
	for i := 0; i < frameCount; i++ {
		t := startMs + int64(math.Round(float64(i)/float64(frameCount-1)*float64(spanMs)))

		for cursor < len(points)-2 && points[cursor+1].Timestamp.UnixMilli() <= t {
			cursor++
		}
		a1, a2 := points[cursor], points[cursor+1]

		t1 := a1.Timestamp.UnixMilli()
		t2 := a2.Timestamp.UnixMilli()
		frac := 0.0
		if t2 > t1 {
			frac = clamp(float64(t-t1)/float64(t2-t1), 0, 1)
		}

		s := Sample{
			Lat:       lerp(a1.Lat, a2.Lat, frac),
			Lon:       lerp(a1.Lon, a2.Lon, frac),
			Ele:       math.NaN(),
			Timestamp: time.UnixMilli(t).UTC(),
		}
		if a1.hasEle() && a2.hasEle() {
			s.Ele = lerp(a1.Ele, a2.Ele, frac)
		}

		if i > 0 {
			prev := samples[i-1]
			step := haversineMeters(prev.Lat, prev.Lon, s.Lat, s.Lon)
			s.CumulativeMeters = prev.CumulativeMeters + step
			s.PaceMinPerKm = paceMinPerKm(step, stepSeconds)
		} else {
			s.PaceMinPerKm = math.NaN()
		}

		samples = append(samples, s)
	}

	return samples, nil
}

// sampleStep is the fixed inter-sample time step of a resampled sequence,
// in seconds of track time.
func sampleStep(samples []Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	span := samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp).Seconds()
	return span / float64(len(samples)-1)
}

// paceMinPerKm converts a step distance over a step duration into running
// pace. NaN when the step implies zero speed.
func paceMinPerKm(meters, seconds float64) float64 {
	if meters <= 0 || seconds <= 0 {
		return math.NaN()
	}
	return (seconds / 60) / (meters / 1000)
}

// finitePoints drops points with malformed coordinates so they can never
// reach projection.
func finitePoints(points []Point) []Point {
	kept := points[:0:0]
	for _, p := range points {
		if isFinite(p.Lat) && isFinite(p.Lon) {
			kept = append(kept, p)
		}
	}
	return kept
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
