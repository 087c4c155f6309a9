package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WeatherBaseURL != "https://api.weatherbit.io/v2.0" {
		t.Fatalf("WeatherBaseURL = %q", cfg.WeatherBaseURL)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.ReportInterval != 0 {
		t.Fatalf("ReportInterval = %v", cfg.ReportInterval)
	}
	if cfg.InsecureSkipVerify {
		t.Fatalf("certificate validation must be on by default")
	}
	if cfg.FetchConcurrency != 4 {
		t.Fatalf("FetchConcurrency = %d", cfg.FetchConcurrency)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WEATHER_BASE_URL", "http://localhost:9000/v2.0/")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("REPORT_INTERVAL", "300")
	t.Setenv("INSECURE_SKIP_VERIFY", "true")
	t.Setenv("DEVICE_ID", "station-7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WeatherBaseURL != "http://localhost:9000/v2.0" {
		t.Fatalf("WeatherBaseURL = %q", cfg.WeatherBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.ReportInterval != 5*time.Minute {
		t.Fatalf("durations = %v / %v", cfg.RequestTimeout, cfg.ReportInterval)
	}
	if !cfg.InsecureSkipVerify || cfg.DeviceID != "station-7" {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestLoadRejectsNegativeInterval(t *testing.T) {
	t.Setenv("REPORT_INTERVAL", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative interval")
	}
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("FETCH_CONCURRENCY", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero concurrency")
	}
}
