package commands

import (
	"time"
	"u3d/internal/components/configutil"
	"u3d/internal/components/telemetry"
	"u3d/internal/scrapers/unity"
)

// Config is layered over defaultConfig, so a zero value in the file keeps the
// default. requests_per_second below zero turns pacing off.
type Config struct {
	TimeoutSeconds    int              `json:"timeout_seconds"`
	UserAgent         string           `json:"user_agent"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	CloudflareBypass  bool             `json:"cloudflare_bypass"`
	Concurrent        bool             `json:"concurrent"`
	Endpoints         unity.Endpoints  `json:"endpoints"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

func defaultConfig() Config {
	fetcher := unity.DefaultFetcherOptions()
	return Config{
		TimeoutSeconds:    int(fetcher.Timeout / time.Second),
		UserAgent:         fetcher.UserAgent,
		RequestsPerSecond: fetcher.RequestsPerSecond,
		Endpoints:         unity.DefaultEndpoints(),
	}
}

func loadConfig(path string) (Config, error) {
	return configutil.Load(path, defaultConfig())
}

func (c Config) fetcherOptions() unity.FetcherOptions {
	return unity.FetcherOptions{
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		UserAgent:         c.UserAgent,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
	}
}
