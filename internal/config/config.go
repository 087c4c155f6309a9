package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	WeatherBaseURL string `mapstructure:"weather_base_url"`
	WeatherAPIKey  string `mapstructure:"weather_api_key"`
	LocationsFile  string `mapstructure:"locations_file"`
	SinksFile      string `mapstructure:"sinks_file"`
	DeviceID       string `mapstructure:"device_id"`

	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	InsecureSkipVerify    bool          `mapstructure:"insecure_skip_verify"`

	ReportIntervalSeconds int64         `mapstructure:"report_interval"`
	ReportInterval        time.Duration `mapstructure:"-"`

	FetchConcurrency int `mapstructure:"fetch_concurrency"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-weather")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("weather_base_url", "https://api.weatherbit.io/v2.0")
	v.SetDefault("weather_api_key", "")
	v.SetDefault("locations_file", "")
	v.SetDefault("sinks_file", "")
	v.SetDefault("device_id", "-")
	v.SetDefault("request_timeout_seconds", 60)
	v.SetDefault("insecure_skip_verify", false)
	v.SetDefault("report_interval", 0) // seconds; 0 runs a single pass
	v.SetDefault("fetch_concurrency", 4)
	v.SetDefault("metrics_addr", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.WeatherBaseURL = strings.TrimRight(strings.TrimSpace(cfg.WeatherBaseURL), "/")
	if cfg.WeatherBaseURL == "" {
		return nil, fmt.Errorf("weather_base_url is required")
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.ReportIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid report_interval (must be zero or positive seconds)")
	}
	cfg.ReportInterval = time.Duration(cfg.ReportIntervalSeconds) * time.Second

	if cfg.FetchConcurrency <= 0 {
		return nil, fmt.Errorf("invalid fetch_concurrency (must be positive)")
	}

	return &cfg, nil
}
