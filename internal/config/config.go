// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BookingConfig struct {
	// EditLockHours is the lead time before a booking's start during
	// which its date, time and duration are frozen.
	EditLockHours int `yaml:"edit_lock_hours"`
	// MaxOccurrences caps recurrence expansion per request.
	MaxOccurrences         int    `yaml:"max_occurrences"`
	DefaultDurationMinutes int    `yaml:"default_duration_minutes"`
	CompletionSweepCron    string `yaml:"completion_sweep_cron"`
}

type PricingConfig struct {
	// Fallback selects what the price resolver does when active entries
	// exist but none covers the requested time: "first_active" keeps the
	// legacy behavior, "none" reports no price.
	Fallback string `yaml:"fallback"`
}

type PhoneConfig struct {
	// DefaultRegion is the ISO country code assumed for phone numbers
	// entered without a country prefix.
	DefaultRegion string `yaml:"default_region"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Booking  BookingConfig  `yaml:"booking"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Phone    PhoneConfig    `yaml:"phone"`
}

// Load loads both .env and yaml configuration.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "courtly"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = "data/courtly.db"
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Booking.EditLockHours == 0 {
		c.Booking.EditLockHours = 12
	}
	if c.Booking.MaxOccurrences == 0 {
		c.Booking.MaxOccurrences = 365
	}
	if c.Booking.DefaultDurationMinutes == 0 {
		c.Booking.DefaultDurationMinutes = 60
	}
	if c.Booking.CompletionSweepCron == "" {
		c.Booking.CompletionSweepCron = "*/15 * * * *"
	}
	if c.Pricing.Fallback == "" {
		c.Pricing.Fallback = "first_active"
	}
	if c.Phone.DefaultRegion == "" {
		c.Phone.DefaultRegion = "BR"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Pricing.Fallback {
	case "first_active", "none":
	default:
		return fmt.Errorf("unsupported pricing fallback: %s", c.Pricing.Fallback)
	}

	if c.Booking.EditLockHours < 0 {
		return fmt.Errorf("edit lock hours must not be negative")
	}

	return nil
}
