package main

import (
	"math"

	"github.com/paulmach/orb"
)

// degenerateExtent floors a route's bounding-box extents so single-point and
// zero-area tracks still project without dividing by zero.
const degenerateExtent = 1e-9

// Padding is the pixel inset kept free on each canvas edge.
type Padding struct {
	Left, Top, Right, Bottom float64
}

func uniformPadding(px float64) Padding {
	return Padding{Left: px, Top: px, Right: px, Bottom: px}
}

// Projector maps geographic sample positions into canvas pixels: aspect-fit
// scale over the route's bounding box, multiplied by user zoom, centered in
// the padded area, then shifted by user pan. Stateless once built.
type Projector struct {
	bound  orb.Bound
	empty  bool
	scale  float64
	origin orb.Point // top-left of the drawn route in canvas pixels
	width  float64
	height float64
}

func newProjector(samples []Sample, canvasW, canvasH float64, pad Padding, zoom, panX, panY float64) Projector {
	pr := Projector{width: canvasW, height: canvasH}
	if len(samples) == 0 {
		pr.empty = true
		return pr
	}

	bound := orb.Bound{
		Min: orb.Point{samples[0].Lon, samples[0].Lat},
		Max: orb.Point{samples[0].Lon, samples[0].Lat},
	}
	for _, s := range samples[1:] {
		bound = bound.Extend(orb.Point{s.Lon, s.Lat})
	}
	pr.bound = bound

	routeW := math.Max(bound.Max[0]-bound.Min[0], degenerateExtent)
	routeH := math.Max(bound.Max[1]-bound.Min[1], degenerateExtent)

	freeW := canvasW - pad.Left - pad.Right
	freeH := canvasH - pad.Top - pad.Bottom

	pr.scale = math.Min(freeW/routeW, freeH/routeH) * zoom
	pr.origin = orb.Point{
		pad.Left + (freeW-routeW*pr.scale)/2 + panX,
		pad.Top + (freeH-routeH*pr.scale)/2 + panY,
	}
	return pr
}

// project maps a geographic position to canvas coordinates. Screen Y grows
// downward while latitude grows northward, so the vertical axis flips.
func (pr Projector) project(lon, lat float64) (float64, float64) {
	if pr.empty {
		return pr.width / 2, pr.height / 2
	}
	x := pr.origin[0] + (lon-pr.bound.Min[0])*pr.scale
	y := pr.origin[1] + (pr.bound.Max[1]-lat)*pr.scale
	return x, y
}

func (pr Projector) projectSample(s Sample) (float64, float64) {
	return pr.project(s.Lon, s.Lat)
}
