package main

import (
	"math"
	"testing"
	"time"
)

// equatorSamples builds a time-uniform sequence moving east with the given
// per-step distances in meters.
func equatorSamples(stepMeters []float64) []Sample {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	lonPerMeter := 1 / (earthRadiusMeters * math.Pi / 180)
	samples := make([]Sample, len(stepMeters)+1)
	var lon, cum float64
	for i := range samples {
		if i > 0 {
			lon += stepMeters[i-1] * lonPerMeter
			cum += stepMeters[i-1]
		}
		samples[i] = Sample{
			Lon:              lon,
			Lat:              0,
			Ele:              math.NaN(),
			Timestamp:        base.Add(time.Duration(i) * time.Second),
			CumulativeMeters: cum,
		}
	}
	return samples
}

func TestDeriveKinematicsSpeeds(t *testing.T) {
	samples := equatorSamples([]float64{10, 20, 30})
	k := deriveKinematics(samples, 1)

	want := []float64{0, 10, 20, 30}
	for i, w := range want {
		if math.Abs(k.SegmentSpeeds[i]-w) > 0.01 {
			t.Errorf("speed %d: got %.3f, want %.3f", i, k.SegmentSpeeds[i], w)
		}
	}
}

func TestDeriveKinematicsPercentileWindow(t *testing.T) {
	steps := make([]float64, 100)
	for i := range steps {
		steps[i] = 4 + float64(i%5)
	}
	steps[50] = 500 // GPS burst
	samples := equatorSamples(steps)
	k := deriveKinematics(samples, 1)

	if k.SpeedHi > 10 {
		t.Errorf("95th percentile should ignore the burst, got %.1f", k.SpeedHi)
	}
	if got := k.normalizeSpeed(500); got != 1 {
		t.Errorf("burst should clamp to 1, got %v", got)
	}
	if got := k.normalizeSpeed(0); got != 0 {
		t.Errorf("zero speed should clamp to 0, got %v", got)
	}
}

func TestNormalizeSpeedDegenerateWindow(t *testing.T) {
	k := Kinematics{SpeedLo: 5, SpeedHi: 5}
	if got := k.normalizeSpeed(5); got != 0.5 {
		t.Errorf("flat distribution should map to mid-palette, got %v", got)
	}
}

func TestElevationGain(t *testing.T) {
	samples := equatorSamples([]float64{10, 10, 10, 10})
	eles := []float64{100, 110, 105, 125, 120}
	for i := range samples {
		samples[i].Ele = eles[i]
	}

	k := deriveKinematics(samples, 1)
	if k.TotalGain != 30 { // +10, +20; descents ignored
		t.Errorf("total gain: got %v, want 30", k.TotalGain)
	}
	wantRunning := []float64{0, 10, 10, 30, 30}
	for i, w := range wantRunning {
		if k.RunningGain[i] != w {
			t.Errorf("running gain %d: got %v, want %v", i, k.RunningGain[i], w)
		}
	}
}

func TestElevationGainSkipsMissing(t *testing.T) {
	samples := equatorSamples([]float64{10, 10})
	samples[0].Ele = 100
	// samples[1] has no elevation
	samples[2].Ele = 200

	k := deriveKinematics(samples, 1)
	if k.TotalGain != 0 {
		t.Errorf("gain across missing elevation should be 0, got %v", k.TotalGain)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.95, 4.8},
		{1, 5},
	}
	for _, tc := range tests {
		if got := percentile(values, tc.p); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("percentile(%v): got %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("empty percentile: got %v, want 0", got)
	}
}
