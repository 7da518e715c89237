// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file; defaults cover the
// rest, so a bare `go run ./cmd/api` works with no setup.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"grainboard/internal/model"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	RateRPS   float64 `yaml:"rate_rps"`
	RateBurst int     `yaml:"rate_burst"`

	MockRecords int `yaml:"mock_records"`

	Fleet FleetConfig `yaml:"fleet"`

	Webhooks WebhookConfig `yaml:"webhooks"`
}

type FleetConfig struct {
	TruckCapacity   int     `yaml:"truck_capacity"`
	AverageSpeedKmh float64 `yaml:"average_speed_kmh"`
	WorkHoursPerDay float64 `yaml:"work_hours_per_day"`
	LoadUnloadHours float64 `yaml:"load_unload_hours"`
}

type WebhookConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// Params converts the fleet section into engine parameters.
func (f FleetConfig) Params() model.FleetParams {
	return model.FleetParams{
		TruckCapacity:   f.TruckCapacity,
		AverageSpeedKmh: f.AverageSpeedKmh,
		WorkHoursPerDay: f.WorkHoursPerDay,
		LoadUnloadHours: f.LoadUnloadHours,
	}
}

func defaults() Config {
	return Config{
		Port:        "8080",
		RateRPS:     50,
		RateBurst:   100,
		MockRecords: 152,
		Fleet: FleetConfig{
			TruckCapacity:   900,
			AverageSpeedKmh: 60,
			WorkHoursPerDay: 10,
			LoadUnloadHours: 2,
		},
		Webhooks: WebhookConfig{MaxAttempts: 8},
	}
}

// Load resolves the configuration. CONFIG_PATH points at the YAML file; when
// unset, ./config.yaml is used if present and silently skipped otherwise.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if explicit {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RateRPS = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateBurst = n
		}
	}
	if v := os.Getenv("MOCK_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MockRecords = n
		}
	}
	if v := os.Getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Webhooks.MaxAttempts = n
		}
	}
	return cfg, nil
}
