package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const weatherEndpoint = "https://archive-api.open-meteo.com/v1/archive"

// WeatherReport is the historical conditions overlay payload.
type WeatherReport struct {
	TemperatureC float64
	Description  string
}

// wmoDescriptions maps WMO weather interpretation codes to short labels.
var wmoDescriptions = map[int]string{
	0:  "Clear",
	1:  "Mostly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Heavy drizzle",
	61: "Light rain",
	63: "Rain",
	65: "Heavy rain",
	71: "Light snow",
	73: "Snow",
	75: "Heavy snow",
	80: "Showers",
	81: "Showers",
	82: "Violent showers",
	95: "Thunderstorm",
}

// fetchWeather looks up the recorded conditions nearest to the track's start
// at a representative coordinate. Best-effort: callers log and continue on
// error.
func fetchWeather(lat, lon float64, at time.Time) (*WeatherReport, error) {
	return fetchWeatherFrom(weatherEndpoint, lat, lon, at)
}

func fetchWeatherFrom(endpoint string, lat, lon float64, at time.Time) (*WeatherReport, error) {
	date := at.UTC().Format("2006-01-02")
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&start_date=%s&end_date=%s&hourly=temperature_2m,weather_code",
		endpoint, lat, lon, date, date)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("weather lookup failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather lookup status %d", resp.StatusCode)
	}

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature2m []float64 `json:"temperature_2m"`
			WeatherCode   []int     `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if len(payload.Hourly.Time) == 0 {
		return nil, fmt.Errorf("weather response has no hourly data")
	}

	best := 0
	bestDiff := time.Duration(1<<63 - 1)
	for i, ts := range payload.Hourly.Time {
		t, err := time.Parse("2006-01-02T15:04", ts)
		if err != nil {
			continue
		}
		diff := at.UTC().Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}

	report := &WeatherReport{Description: "Unknown"}
	if best < len(payload.Hourly.Temperature2m) {
		report.TemperatureC = payload.Hourly.Temperature2m[best]
	}
	if best < len(payload.Hourly.WeatherCode) {
		if label, ok := wmoDescriptions[payload.Hourly.WeatherCode[best]]; ok {
			report.Description = label
		}
	}
	return report, nil
}
