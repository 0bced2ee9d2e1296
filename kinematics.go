package main

import "math"

// Kinematics holds the per-sample derivations the renderer needs: segment
// speeds for heat coloring, a robust speed range, and elevation gain.
type Kinematics struct {
	// SegmentSpeeds[i] is the ground speed (m/s) of the segment ending at
	// sample i. Index 0 is zero.
	SegmentSpeeds []float64
	// SpeedLo and SpeedHi are the 5th and 95th percentile of the segment
	// speed distribution; heat colors clamp to this range so a single GPS
	// burst cannot wash out the palette.
	SpeedLo, SpeedHi float64
	// RunningGain[i] is the elevation climbed up to sample i; descents
	// contribute nothing.
	RunningGain []float64
	TotalGain   float64
}

// deriveKinematics computes speeds, the percentile speed window, and
// elevation gain for a resampled sequence with the given fixed inter-frame
// step in seconds.
func deriveKinematics(samples []Sample, stepSeconds float64) Kinematics {
	k := Kinematics{
		SegmentSpeeds: make([]float64, len(samples)),
		RunningGain:   make([]float64, len(samples)),
	}
	if len(samples) < 2 || stepSeconds <= 0 {
		return k
	}

	for i := 1; i < len(samples); i++ {
		d := haversineMeters(samples[i-1].Lat, samples[i-1].Lon, samples[i].Lat, samples[i].Lon)
		k.SegmentSpeeds[i] = d / stepSeconds

		k.RunningGain[i] = k.RunningGain[i-1]
		if samples[i-1].hasEle() && samples[i].hasEle() {
			if delta := samples[i].Ele - samples[i-1].Ele; delta > 0 {
				k.RunningGain[i] += delta
			}
		}
	}
	k.TotalGain = k.RunningGain[len(samples)-1]

	k.SpeedLo = percentile(k.SegmentSpeeds[1:], 0.05)
	k.SpeedHi = percentile(k.SegmentSpeeds[1:], 0.95)
	return k
}

func (s Sample) hasEle() bool {
	return !math.IsNaN(s.Ele)
}

// normalizeSpeed maps a segment speed onto [0,1] within the percentile
// window, clamping outliers to the extremes.
func (k Kinematics) normalizeSpeed(v float64) float64 {
	if k.SpeedHi <= k.SpeedLo {
		return 0.5
	}
	return clamp((v-k.SpeedLo)/(k.SpeedHi-k.SpeedLo), 0, 1)
}
