package main

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
)

// Point is a single raw geographic sample. Ele is NaN when the source
// carried no elevation for the point.
type Point struct {
	Lat, Lon  float64
	Ele       float64
	Timestamp time.Time
}

func (p Point) hasEle() bool {
	return !math.IsNaN(p.Ele)
}

// parseTrack parses GPX bytes into an ordered point sequence. Both track
// points and route points are accepted. A document without any points is an
// empty result, not an error.
func parseTrack(data []byte) ([]Point, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}

	var points []Point
	add := func(p gpx.GPXPoint) {
		ele := math.NaN()
		if p.Elevation.NotNull() {
			ele = p.Elevation.Value()
		}
		points = append(points, Point{Lat: p.Latitude, Lon: p.Longitude, Ele: ele, Timestamp: p.Timestamp})
	}
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				add(p)
			}
		}
	}
	if len(points) == 0 {
		for _, route := range doc.Routes {
			for _, p := range route.Points {
				add(p)
			}
		}
	}

	return normalizeTimestamps(points, time.Now()), nil
}

// normalizeTimestamps sorts timed points and collapses duplicate timestamps
// (first occurrence wins). A track where any point lacks a timestamp, or
// where fewer than two distinct timestamps survive, is treated as untimed:
// timestamps are synthesized at a 1-second cadence from now, keeping the
// original point order.
func normalizeTimestamps(points []Point, now time.Time) []Point {
	if len(points) == 0 {
		return points
	}

	timed := true
	for _, p := range points {
		if p.Timestamp.IsZero() {
			timed = false
			break
		}
	}

	if timed {
		sorted := make([]Point, len(points))
		copy(sorted, points)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		deduped := sorted[:1]
		for _, p := range sorted[1:] {
			if p.Timestamp.After(deduped[len(deduped)-1].Timestamp) {
				deduped = append(deduped, p)
			}
		}
		if len(points) < 2 || len(deduped) >= 2 {
			return deduped
		}
		// Every point shared one instant; fall through to synthesis so no
		// position data is lost.
	}

	synthesized := make([]Point, len(points))
	copy(synthesized, points)
	for i := range synthesized {
		synthesized[i].Timestamp = now.Add(time.Duration(i) * time.Second)
	}
	return synthesized
}
