package main

// CleanConfig holds the cleaning passes' tunables. The speed caps are
// heuristic defaults, not invariants; SpeedCapHint overrides the heuristic
// entirely when positive.
type CleanConfig struct {
	ElevationWindow int     // half-width of the elevation smoothing window, in points
	SpeedCapHint    float64 // m/s, 0 means pick automatically
	CyclingCap      float64 // m/s cap when the track looks like cycling
	FootCap         float64 // m/s cap when the track looks like running/walking
	CyclingSpeed    float64 // m/s average above which the track is presumed cycling
	MinSpikePoints  int     // spike rejection is skipped below this many points
	TrimMeters      float64 // privacy trim distance from each end
}

func defaultCleanConfig() CleanConfig {
	return CleanConfig{
		ElevationWindow: 7,
		CyclingCap:      20,
		FootCap:         9,
		CyclingSpeed:    4,
		MinSpikePoints:  10,
	}
}

// cleanTrack runs the three cleaning passes in order: elevation smoothing,
// speed-spike rejection, privacy trimming. The input slice is not modified.
func cleanTrack(points []Point, cfg CleanConfig) []Point {
	cleaned := smoothElevation(points, cfg.ElevationWindow)
	cleaned = rejectSpikes(cleaned, cfg)
	cleaned = trimEnds(cleaned, cfg.TrimMeters)
	return cleaned
}

// smoothElevation replaces each point's elevation with the mean elevation
// over a centered ±window points. Points without elevation keep their NaN
// and do not contribute to neighbors' means.
func smoothElevation(points []Point, window int) []Point {
	smoothed := make([]Point, len(points))
	copy(smoothed, points)
	if window <= 0 {
		return smoothed
	}

	for i := range points {
		if !points[i].hasEle() {
			continue
		}
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > len(points)-1 {
			hi = len(points) - 1
		}

		var sum float64
		var n int
		for j := lo; j <= hi; j++ {
			if points[j].hasEle() {
				sum += points[j].Ele
				n++
			}
		}
		if n > 0 {
			smoothed[i].Ele = sum / float64(n)
		}
	}
	return smoothed
}

// speedCap picks the active spike cap: the caller's hint when given, else a
// cycling or foot cap depending on the whole-track average speed.
func speedCap(points []Point, cfg CleanConfig) float64 {
	if cfg.SpeedCapHint > 0 {
		return cfg.SpeedCapHint
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += pointDistance(points[i-1], points[i])
	}
	duration := points[len(points)-1].Timestamp.Sub(points[0].Timestamp).Seconds()
	if duration > 0 && total/duration > cfg.CyclingSpeed {
		return cfg.CyclingCap
	}
	return cfg.FootCap
}

// rejectSpikes drops points whose speed relative to the last kept point
// exceeds the cap. Anchoring on the last kept point (not the previous raw
// point) makes rejected GPS jumps unable to legitimize their successors.
func rejectSpikes(points []Point, cfg CleanConfig) []Point {
	if len(points) < cfg.MinSpikePoints {
		return points
	}
	maxSpeed := speedCap(points, cfg)

	kept := make([]Point, 0, len(points))
	kept = append(kept, points[0])
	for _, p := range points[1:] {
		last := kept[len(kept)-1]
		dt := p.Timestamp.Sub(last.Timestamp).Seconds()
		if dt <= 0 {
			continue
		}
		if pointDistance(last, p)/dt <= maxSpeed {
			kept = append(kept, p)
		}
	}
	return kept
}

// trimEnds removes roughly meters of track from each end, walking inward
// until the accumulated haversine distance reaches the trim budget.
func trimEnds(points []Point, meters float64) []Point {
	if meters <= 0 || len(points) < 2 {
		return points
	}

	start := 0
	var acc float64
	for start < len(points)-1 && acc < meters {
		acc += pointDistance(points[start], points[start+1])
		start++
	}

	end := len(points) - 1
	acc = 0
	for end > 0 && acc < meters {
		acc += pointDistance(points[end-1], points[end])
		end--
	}

	if start > end {
		return points[:0]
	}
	return points[start : end+1]
}
