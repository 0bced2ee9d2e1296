package main

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestResampleExactCountAndMonotonicDistance(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	// Irregular sampling: gaps of 1s to 40s.
	gaps := []int{0, 1, 3, 40, 41, 45, 52, 90, 91, 100}
	points := make([]Point, len(gaps))
	for i, g := range gaps {
		points[i] = Point{
			Lat:       46.0 + float64(i)*0.0003,
			Lon:       7.0 + float64(i)*0.0001,
			Timestamp: base.Add(time.Duration(g) * time.Second),
		}
	}

	for _, frameCount := range []int{2, 11, 37, 240} {
		samples, err := resample(points, frameCount)
		if err != nil {
			t.Fatalf("resample(%d) failed: %v", frameCount, err)
		}
		if len(samples) != frameCount {
			t.Fatalf("expected exactly %d samples, got %d", frameCount, len(samples))
		}
		for i := 1; i < len(samples); i++ {
			if samples[i].CumulativeMeters < samples[i-1].CumulativeMeters {
				t.Errorf("frameCount %d: cumulative distance decreased at %d", frameCount, i)
			}
		}
		if !samples[0].Timestamp.Equal(base) {
			t.Errorf("first sample timestamp: got %v", samples[0].Timestamp)
		}
		if !samples[len(samples)-1].Timestamp.Equal(base.Add(100 * time.Second)) {
			t.Errorf("last sample timestamp: got %v", samples[len(samples)-1].Timestamp)
		}
	}
}

func TestResampleEvenSpacing(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	points := []Point{
		{Lat: 46, Lon: 7, Timestamp: base},
		{Lat: 46.01, Lon: 7, Timestamp: base.Add(33 * time.Second)},
	}

	samples, err := resample(points, 12)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	step := samples[1].Timestamp.Sub(samples[0].Timestamp)
	for i := 2; i < len(samples); i++ {
		d := samples[i].Timestamp.Sub(samples[i-1].Timestamp)
		if diff := (d - step).Abs(); diff > 2*time.Millisecond {
			t.Errorf("uneven spacing at %d: %v vs %v", i, d, step)
		}
	}
}

func TestResampleThreePointScenario(t *testing.T) {
	// 3 points, 10 seconds, 100 meters along the equator.
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	lonFor := func(meters float64) float64 {
		return meters / (earthRadiusMeters * math.Pi / 180)
	}
	points := []Point{
		{Lat: 0, Lon: 0, Timestamp: base},
		{Lat: 0, Lon: lonFor(40), Timestamp: base.Add(4 * time.Second)},
		{Lat: 0, Lon: lonFor(100), Timestamp: base.Add(10 * time.Second)},
	}

	samples, err := resample(points, 11)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if len(samples) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(samples))
	}
	if samples[0].CumulativeMeters != 0 {
		t.Errorf("index 0: got %v, want 0", samples[0].CumulativeMeters)
	}
	if got := samples[10].CumulativeMeters; math.Abs(got-100) > 0.5 {
		t.Errorf("index 10: got %.3f m, want ~100 m", got)
	}
}

func TestResamplePace(t *testing.T) {
	// Steady 2.5 m/s along the equator: pace should be 6:40 min/km.
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	lonPerMeter := 1 / (earthRadiusMeters * math.Pi / 180)
	points := []Point{
		{Lat: 0, Lon: 0, Timestamp: base},
		{Lat: 0, Lon: 250 * lonPerMeter, Timestamp: base.Add(100 * time.Second)},
	}

	samples, err := resample(points, 21)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if isFinite(samples[0].PaceMinPerKm) {
		t.Error("first sample has no pace")
	}
	want := 1000.0 / 2.5 / 60 // min/km
	for i := 1; i < len(samples); i++ {
		if got := samples[i].PaceMinPerKm; math.Abs(got-want) > 0.05 {
			t.Errorf("sample %d pace: got %.3f, want %.3f", i, got, want)
		}
	}
}

func TestResamplePaceNaNWhenStationary(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	points := []Point{
		{Lat: 46, Lon: 7, Timestamp: base},
		{Lat: 46, Lon: 7, Timestamp: base.Add(10 * time.Second)},
	}

	samples, err := resample(points, 5)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	for i, s := range samples {
		if isFinite(s.PaceMinPerKm) {
			t.Errorf("sample %d: stationary pace should be NaN, got %v", i, s.PaceMinPerKm)
		}
	}
}

func TestResampleInsufficientData(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := [][]Point{
		nil,
		{{Lat: 46, Lon: 7, Timestamp: base}},
	}
	for _, points := range cases {
		if _, err := resample(points, 10); !errors.Is(err, ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	}
}

func TestResampleDropsNonFinitePoints(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	points := []Point{
		{Lat: 46, Lon: 7, Timestamp: base},
		{Lat: math.NaN(), Lon: 7, Timestamp: base.Add(time.Second)},
		{Lat: 46.001, Lon: math.Inf(1), Timestamp: base.Add(2 * time.Second)},
		{Lat: 46.002, Lon: 7.002, Timestamp: base.Add(3 * time.Second)},
	}

	samples, err := resample(points, 8)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	for i, s := range samples {
		if !isFinite(s.Lat) || !isFinite(s.Lon) {
			t.Errorf("sample %d has non-finite coordinates", i)
		}
	}
}

func TestResampleElevationNeedsBothEndpoints(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	points := []Point{
		{Lat: 46, Lon: 7, Ele: 100, Timestamp: base},
		{Lat: 46.001, Lon: 7, Ele: math.NaN(), Timestamp: base.Add(10 * time.Second)},
		{Lat: 46.002, Lon: 7, Ele: 120, Timestamp: base.Add(20 * time.Second)},
	}

	samples, err := resample(points, 5)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	// Frames 1 (t=5s) falls between an elevated and an unelevated point.
	if samples[1].hasEle() {
		t.Errorf("sample bracketed by a missing elevation got %v", samples[1].Ele)
	}
}

func TestSampleStep(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	points := []Point{
		{Lat: 46, Lon: 7, Timestamp: base},
		{Lat: 46.01, Lon: 7, Timestamp: base.Add(20 * time.Second)},
	}
	samples, err := resample(points, 11)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if got := sampleStep(samples); math.Abs(got-2) > 1e-9 {
		t.Errorf("sampleStep: got %v, want 2", got)
	}
}
