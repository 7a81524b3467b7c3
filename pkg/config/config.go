package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Layout   LayoutConfig   `toml:"layout"`
	Theme    ThemeConfig    `toml:"theme"`
	Settings SettingsConfig `toml:"settings"`
	Photos   PhotosConfig   `toml:"photos"`
	Weather  WeatherConfig  `toml:"weather"`
	Calendar CalendarConfig `toml:"calendar"`
	Voice    VoiceConfig    `toml:"voice"`
	System   SystemConfig   `toml:"system"`
}

// GeneralConfig holds shell-wide options.
type GeneralConfig struct {
	LogFile         string   `toml:"log_file"`
	LogLevel        string   `toml:"log_level"` // debug|info|warn|error
	CacheDir        string   `toml:"cache_dir"`
	RefreshInterval Duration `toml:"refresh_interval"` // UI tick cadence
}

// LayoutConfig selects the widget grid preset.
type LayoutConfig struct {
	Preset string `toml:"preset"`
}

// ThemeConfig names the startup theme; the live theme is a setting and
// this only seeds it on first run.
type ThemeConfig struct {
	Name string `toml:"name"`
}

// SettingsConfig locates the settings store shared across devices and the
// local snapshot fallback.
type SettingsConfig struct {
	StoreDir     string   `toml:"store_dir"`
	SnapshotPath string   `toml:"snapshot_path"`
	Debounce     Duration `toml:"debounce"`
}

// PhotosConfig configures the slideshow widget.
type PhotosConfig struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir"`
	Interval Duration `toml:"interval"`
}

// WeatherConfig configures the weather widget's data source.
type WeatherConfig struct {
	Enabled    bool     `toml:"enabled"`
	PostalCode string   `toml:"postal_code"`
	Country    string   `toml:"country"`
	Interval   Duration `toml:"interval"`
}

// CalendarConfig configures the calendar widget.
type CalendarConfig struct {
	Enabled bool   `toml:"enabled"`
	ICSPath string `toml:"ics_path"`
}

// VoiceConfig configures the voice widget.
type VoiceConfig struct {
	Enabled bool `toml:"enabled"`
}

// SystemConfig configures the kiosk health widget.
type SystemConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.General.LogLevel)
	}
	if c.General.RefreshInterval.Duration < 0 {
		return fmt.Errorf("config: negative refresh interval")
	}
	if c.Weather.Enabled && c.Weather.PostalCode == "" {
		return fmt.Errorf("config: weather enabled without postal_code")
	}
	if c.Photos.Enabled && c.Photos.Dir == "" {
		return fmt.Errorf("config: photos enabled without dir")
	}
	if c.Layout.Preset == "" {
		return fmt.Errorf("config: empty layout preset")
	}
	return nil
}

// minRefresh guards against a config that would spin the render loop.
const minRefresh = 100 * time.Millisecond

// Refresh returns the effective UI tick interval.
func (c *Config) Refresh() time.Duration {
	if c.General.RefreshInterval.Duration < minRefresh {
		return time.Second
	}
	return c.General.RefreshInterval.Duration
}
