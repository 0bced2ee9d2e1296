package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchWeatherFrom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start_date"); got != "2024-05-01" {
			t.Errorf("start_date: got %q", got)
		}
		w.Write([]byte(`{"hourly":{
			"time":["2024-05-01T09:00","2024-05-01T10:00","2024-05-01T11:00"],
			"temperature_2m":[12.1,14.3,16.0],
			"weather_code":[3,61,0]}}`))
	}))
	defer srv.Close()

	at := time.Date(2024, 5, 1, 10, 12, 0, 0, time.UTC)
	report, err := fetchWeatherFrom(srv.URL, 46.0, 7.0, at)
	if err != nil {
		t.Fatalf("fetchWeatherFrom failed: %v", err)
	}
	if report.TemperatureC != 14.3 {
		t.Errorf("temperature: got %v, want 14.3 (nearest hour)", report.TemperatureC)
	}
	if report.Description != "Light rain" {
		t.Errorf("description: got %q", report.Description)
	}
}

func TestFetchWeatherFromEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{"time":[],"temperature_2m":[],"weather_code":[]}}`))
	}))
	defer srv.Close()

	if _, err := fetchWeatherFrom(srv.URL, 46.0, 7.0, time.Now()); err == nil {
		t.Error("expected an error for an empty hourly series")
	}
}

func TestFetchWeatherFromServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := fetchWeatherFrom(srv.URL, 46.0, 7.0, time.Now()); err == nil {
		t.Error("expected an error for a 502 response")
	}
}
