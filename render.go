package main

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
)

// paceWindow is the half-width, in samples, of the HUD pace smoothing window.
const paceWindow = 8

type skinColors struct {
	Background color.Color
	Route      color.Color
	Outline    color.Color
	Traversed  color.Color
	Marker     color.Color
	Text       color.Color
	Muted      color.Color
	StripFill  color.Color
}

func (s Skin) colors() skinColors {
	switch s {
	case SkinLight:
		return skinColors{
			Background: color.RGBA{245, 244, 240, 255},
			Route:      color.RGBA{120, 130, 145, 255},
			Outline:    color.RGBA{255, 255, 255, 255},
			Traversed:  color.RGBA{220, 60, 40, 255},
			Marker:     color.RGBA{220, 60, 40, 255},
			Text:       color.RGBA{30, 32, 36, 255},
			Muted:      color.RGBA{30, 32, 36, 110},
			StripFill:  color.RGBA{120, 130, 145, 70},
		}
	default:
		return skinColors{
			Background: color.RGBA{24, 26, 30, 255},
			Route:      color.RGBA{90, 98, 110, 255},
			Outline:    color.RGBA{0, 0, 0, 200},
			Traversed:  color.RGBA{255, 170, 40, 255},
			Marker:     color.RGBA{255, 200, 60, 255},
			Text:       color.RGBA{235, 235, 235, 255},
			Muted:      color.RGBA{235, 235, 235, 110},
			StripFill:  color.RGBA{90, 98, 110, 90},
		}
	}
}

// renderFrame draws one animation frame for the given progress fraction.
// It holds no state between calls: identical inputs produce pixel-identical
// frames, which is what makes export retries and previews safe.
func renderFrame(state *TrackState, progress float64, w, h int, font *truetype.Font) image.Image {
	progress = clamp(progress, 0, 1)
	dc := gg.NewContext(w, h)
	skin := state.Opts.Skin.colors()

	dc.SetColor(skin.Background)
	dc.Clear()

	if len(state.Samples) < 2 {
		drawPlaceholder(dc, w, h, font, skin)
		return dc.Image()
	}

	fw := float64(w)
	fh := float64(h)
	pad := Padding{
		Left:   fw * 0.06,
		Right:  fw * 0.06,
		Top:    fh * 0.10,
		Bottom: fh * 0.10,
	}
	if state.Opts.Elevation {
		pad.Bottom = fh * 0.24
	}
	pr := newProjector(state.Samples, fw, fh, pad, state.Zoom, state.PanX, state.PanY)

	if state.Opts.Background != nil {
		drawBackdrop(dc, state.Opts.Background, pr)
	}

	routeWidth := math.Max(fw, fh) * 0.004
	if state.Opts.Outline {
		drawRoute(dc, state, pr, len(state.Samples)-1, skin.Outline, routeWidth*2.6, false)
	}
	drawRoute(dc, state, pr, len(state.Samples)-1, skin.Route, routeWidth, state.Opts.Heat)

	if state.Opts.Splits {
		drawSplitMarkers(dc, state, pr, w, h, font, skin)
	}

	head := int(math.Floor(progress * float64(len(state.Samples)-1)))
	if !state.Opts.Heat {
		drawRoute(dc, state, pr, head, skin.Traversed, routeWidth*1.3, false)
	}
	drawCometHead(dc, state, pr, head, w, h, skin)

	if state.Opts.HUD {
		drawHUD(dc, state, head, w, h, font, skin)
	}
	if state.Opts.Elevation {
		drawElevationStrip(dc, state, head, w, h, skin)
	}
	if state.Opts.Legend && state.Opts.Heat {
		drawLegend(dc, state, w, h, font, skin)
	}
	if state.Opts.Title != "" {
		drawTitle(dc, state.Opts.Title, w, h, font, skin)
	}
	if state.Opts.Weather != nil {
		drawWeather(dc, state.Opts.Weather, w, h, font, skin)
	}

	return dc.Image()
}

// drawBackdrop composites a map image covering the route's bounding box under
// the route itself. The image corners land on the projected bounding-box
// corners, so zoom and pan move the map together with the polyline.
func drawBackdrop(dc *gg.Context, img image.Image, pr Projector) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || pr.empty {
		return
	}
	x1, y1 := pr.project(pr.bound.Min[0], pr.bound.Max[1])
	x2, y2 := pr.project(pr.bound.Max[0], pr.bound.Min[1])
	dc.Push()
	dc.Translate(x1, y1)
	dc.Scale((x2-x1)/float64(b.Dx()), (y2-y1)/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func drawPlaceholder(dc *gg.Context, w, h int, font *truetype.Font, skin skinColors) {
	face := truetype.NewFace(font, &truetype.Options{Size: float64(h) * 0.035})
	dc.SetFontFace(face)
	dc.SetColor(skin.Muted)
	dc.DrawStringAnchored("not enough track data", float64(w)/2, float64(h)/2, 0.5, 0.5)
}

// drawRoute strokes the polyline through sample upTo. With heat enabled each
// segment is stroked separately, colored by its normalized speed.
func drawRoute(dc *gg.Context, state *TrackState, pr Projector, upTo int, col color.Color, width float64, heat bool) {
	if upTo < 1 {
		return
	}
	dc.SetLineWidth(width)
	dc.SetLineCapRound()

	if heat {
		for i := 1; i <= upTo; i++ {
			x1, y1 := pr.projectSample(state.Samples[i-1])
			x2, y2 := pr.projectSample(state.Samples[i])
			dc.SetColor(heatColor(state.Kinematics.normalizeSpeed(state.Kinematics.SegmentSpeeds[i])))
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		}
		return
	}

	dc.SetColor(col)
	x, y := pr.projectSample(state.Samples[0])
	dc.MoveTo(x, y)
	for i := 1; i <= upTo; i++ {
		x, y = pr.projectSample(state.Samples[i])
		dc.LineTo(x, y)
	}
	dc.Stroke()
}

// heatColor maps a normalized speed to a cold-to-hot ramp: blue through
// green and yellow to red.
func heatColor(t float64) color.Color {
	t = clamp(t, 0, 1)
	stops := []struct{ r, g, b float64 }{
		{0.18, 0.40, 0.90},
		{0.20, 0.78, 0.35},
		{0.98, 0.85, 0.20},
		{0.92, 0.22, 0.16},
	}
	pos := t * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		i = len(stops) - 2
	}
	frac := pos - float64(i)
	return color.RGBA{
		R: uint8(lerp(stops[i].r, stops[i+1].r, frac) * 255),
		G: uint8(lerp(stops[i].g, stops[i+1].g, frac) * 255),
		B: uint8(lerp(stops[i].b, stops[i+1].b, frac) * 255),
		A: 255,
	}
}

type splitMark struct {
	Number   int
	Lon, Lat float64
}

// splitMarks locates every whole distance-unit boundary along the route,
// interpolating within the segment that crosses it. A single coarse segment
// can cross several boundaries and yields one mark per boundary.
func splitMarks(samples []Sample, unit float64) []splitMark {
	var marks []splitMark
	next := 1
	for i := 1; i < len(samples); i++ {
		prev, s := samples[i-1], samples[i]
		for s.CumulativeMeters >= float64(next)*unit {
			frac := 1.0
			if step := s.CumulativeMeters - prev.CumulativeMeters; step > 0 {
				frac = (float64(next)*unit - prev.CumulativeMeters) / step
			}
			marks = append(marks, splitMark{
				Number: next,
				Lon:    lerp(prev.Lon, s.Lon, frac),
				Lat:    lerp(prev.Lat, s.Lat, frac),
			})
			next++
		}
	}
	return marks
}

func drawSplitMarkers(dc *gg.Context, state *TrackState, pr Projector, w, h int, font *truetype.Font, skin skinColors) {
	unit := 1000.0
	if state.Opts.Units == UnitsImperial {
		unit = metersPerMile
	}
	radius := math.Max(float64(w), float64(h)) * 0.006
	face := truetype.NewFace(font, &truetype.Options{Size: radius * 2.6})
	dc.SetFontFace(face)

	for _, m := range splitMarks(state.Samples, unit) {
		x, y := pr.project(m.Lon, m.Lat)
		dc.SetColor(skin.Background)
		dc.DrawCircle(x, y, radius*1.5)
		dc.Fill()
		dc.SetColor(skin.Text)
		dc.DrawCircle(x, y, radius*1.5)
		dc.SetLineWidth(radius * 0.4)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%d", m.Number), x, y-radius*2.6, 0.5, 0.5)
	}
}

// drawCometHead draws the glowing marker at the current sample.
func drawCometHead(dc *gg.Context, state *TrackState, pr Projector, head, w, h int, skin skinColors) {
	x, y := pr.projectSample(state.Samples[head])
	base := math.Max(float64(w), float64(h)) * 0.008

	r, g, b, _ := skin.Marker.RGBA()
	for i := 3; i >= 1; i-- {
		dc.SetColor(color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(90 / i)})
		dc.DrawCircle(x, y, base*float64(i))
		dc.Fill()
	}
	dc.SetColor(skin.Marker)
	dc.DrawCircle(x, y, base)
	dc.Fill()
	dc.SetColor(skin.Background)
	dc.SetLineWidth(base * 0.35)
	dc.DrawCircle(x, y, base)
	dc.Stroke()
}

// smoothedPace averages the finite paces in a ±paceWindow around idx,
// falling back to the raw value when the whole window is non-finite.
func smoothedPace(samples []Sample, idx int) float64 {
	lo := idx - paceWindow
	if lo < 0 {
		lo = 0
	}
	hi := idx + paceWindow
	if hi > len(samples)-1 {
		hi = len(samples) - 1
	}
	var sum float64
	var n int
	for i := lo; i <= hi; i++ {
		if p := samples[i].PaceMinPerKm; isFinite(p) {
			sum += p
			n++
		}
	}
	if n == 0 {
		return samples[idx].PaceMinPerKm
	}
	return sum / float64(n)
}

func formatDistance(meters float64, units Units) string {
	if units == UnitsImperial {
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

func formatPace(minPerKm float64, units Units) string {
	if !isFinite(minPerKm) {
		return "--:--"
	}
	v := minPerKm
	suffix := "/km"
	if units == UnitsImperial {
		v = minPerKm * metersPerMile / 1000
		suffix = "/mi"
	}
	mins := int(v)
	secs := int(math.Round((v - float64(mins)) * 60))
	if secs == 60 {
		mins++
		secs = 0
	}
	return fmt.Sprintf("%d:%02d%s", mins, secs, suffix)
}

func formatElapsed(seconds float64) string {
	total := int(math.Round(seconds))
	hh := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60
	if hh > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hh, mm, ss)
	}
	return fmt.Sprintf("%d:%02d", mm, ss)
}

func formatClimb(meters float64, units Units) string {
	if units == UnitsImperial {
		return fmt.Sprintf("%.0f ft", meters*3.28084)
	}
	return fmt.Sprintf("%.0f m", meters)
}

func drawHUD(dc *gg.Context, state *TrackState, head, w, h int, font *truetype.Font, skin skinColors) {
	fw := float64(w)
	fh := float64(h)
	valueSize := fh * 0.032
	labelSize := valueSize * 0.55
	valueFace := truetype.NewFace(font, &truetype.Options{Size: valueSize})
	labelFace := truetype.NewFace(font, &truetype.Options{Size: labelSize})

	cur := state.Samples[head]
	elapsed := cur.Timestamp.Sub(state.Samples[0].Timestamp).Seconds()

	cells := []struct{ label, value string }{
		{"DISTANCE", formatDistance(cur.CumulativeMeters, state.Opts.Units)},
		{"TIME", formatElapsed(elapsed)},
		{"PACE", formatPace(smoothedPace(state.Samples, head), state.Opts.Units)},
		{"CLIMB", formatClimb(state.Kinematics.RunningGain[head], state.Opts.Units)},
	}

	cellW := fw * 0.94 / float64(len(cells))
	y := fh * 0.045
	for i, c := range cells {
		x := fw*0.03 + cellW*float64(i)
		dc.SetFontFace(labelFace)
		dc.SetColor(skin.Muted)
		dc.DrawString(c.label, x, y)
		dc.SetFontFace(valueFace)
		dc.SetColor(skin.Text)
		dc.DrawString(c.value, x, y+valueSize*1.1)
	}
}

// drawElevationStrip draws the whole-route elevation profile along the
// bottom edge with a marker at the current progress position.
func drawElevationStrip(dc *gg.Context, state *TrackState, head, w, h int, skin skinColors) {
	fw := float64(w)
	fh := float64(h)
	stripH := fh * 0.12
	top := fh - fh*0.04 - stripH
	left := fw * 0.06
	width := fw * 0.88

	minEle := math.Inf(1)
	maxEle := math.Inf(-1)
	for _, s := range state.Samples {
		if !s.hasEle() {
			continue
		}
		minEle = math.Min(minEle, s.Ele)
		maxEle = math.Max(maxEle, s.Ele)
	}
	if !isFinite(minEle) || maxEle-minEle < 1 {
		return
	}

	yFor := func(ele float64) float64 {
		return top + stripH - (ele-minEle)/(maxEle-minEle)*stripH
	}
	xFor := func(i int) float64 {
		return left + width*float64(i)/float64(len(state.Samples)-1)
	}

	dc.MoveTo(left, top+stripH)
	lastEle := minEle
	for i, s := range state.Samples {
		if s.hasEle() {
			lastEle = s.Ele
		}
		dc.LineTo(xFor(i), yFor(lastEle))
	}
	dc.LineTo(left+width, top+stripH)
	dc.ClosePath()
	dc.SetColor(skin.StripFill)
	dc.Fill()

	markerX := xFor(head)
	dc.SetColor(skin.Marker)
	dc.SetLineWidth(math.Max(fw, fh) * 0.0015)
	dc.DrawLine(markerX, top, markerX, top+stripH)
	dc.Stroke()
	dc.DrawCircle(markerX, yFor(stripEleAt(state.Samples, head, minEle)), math.Max(fw, fh)*0.004)
	dc.Fill()
}

// stripEleAt is the last known elevation at or before idx, for placing the
// strip marker when the current sample has none.
func stripEleAt(samples []Sample, idx int, fallback float64) float64 {
	for i := idx; i >= 0; i-- {
		if samples[i].hasEle() {
			return samples[i].Ele
		}
	}
	return fallback
}

func drawLegend(dc *gg.Context, state *TrackState, w, h int, font *truetype.Font, skin skinColors) {
	fw := float64(w)
	fh := float64(h)
	barW := fw * 0.16
	barH := fh * 0.012
	x := fw - fw*0.06 - barW
	y := fh * 0.10

	steps := 48
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		dc.SetColor(heatColor(t))
		dc.DrawRectangle(x+barW*float64(i)/float64(steps), y, barW/float64(steps)+1, barH)
		dc.Fill()
	}

	face := truetype.NewFace(font, &truetype.Options{Size: barH * 1.6})
	dc.SetFontFace(face)
	dc.SetColor(skin.Muted)
	dc.DrawStringAnchored("slow", x, y+barH*2.4, 0, 0.5)
	dc.DrawStringAnchored("fast", x+barW, y+barH*2.4, 1, 0.5)
}

func drawTitle(dc *gg.Context, title string, w, h int, font *truetype.Font, skin skinColors) {
	face := truetype.NewFace(font, &truetype.Options{Size: float64(h) * 0.045})
	dc.SetFontFace(face)
	dc.SetColor(skin.Text)
	dc.DrawStringAnchored(title, float64(w)/2, float64(h)*0.95, 0.5, 0.5)
}

func drawWeather(dc *gg.Context, wr *WeatherReport, w, h int, font *truetype.Font, skin skinColors) {
	face := truetype.NewFace(font, &truetype.Options{Size: float64(h) * 0.024})
	dc.SetFontFace(face)
	dc.SetColor(skin.Muted)
	text := fmt.Sprintf("%.0f°C  %s", wr.TemperatureC, wr.Description)
	dc.DrawStringAnchored(text, float64(w)*0.94, float64(h)*0.075, 1, 0.5)
}
