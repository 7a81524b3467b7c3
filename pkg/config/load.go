package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/hearth/config.toml
//  2. ~/.config/hearth/config.toml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	return DefaultConfig(), nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(xdgDataHome(home), "hearth")
	cacheDir := filepath.Join(xdgCacheHome(home), "hearth")

	return &Config{
		General: GeneralConfig{
			LogFile:         filepath.Join(dataDir, "hearth.log"),
			LogLevel:        "info",
			CacheDir:        cacheDir,
			RefreshInterval: Duration{1 * time.Second},
		},
		Layout: LayoutConfig{
			Preset: "dashboard",
		},
		Theme: ThemeConfig{
			Name: "dark",
		},
		Settings: SettingsConfig{
			StoreDir:     filepath.Join(dataDir, "settings"),
			SnapshotPath: filepath.Join(cacheDir, "settings-snapshot.json"),
			Debounce:     Duration{2 * time.Second},
		},
		Photos: PhotosConfig{
			Enabled:  false,
			Interval: Duration{30 * time.Second},
		},
		Weather: WeatherConfig{
			Enabled:  false,
			Country:  "us",
			Interval: Duration{15 * time.Minute},
		},
		Calendar: CalendarConfig{
			Enabled: true,
		},
		Voice: VoiceConfig{
			Enabled: false,
		},
		System: SystemConfig{
			Enabled:  true,
			Interval: Duration{5 * time.Second},
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config
// values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEARTH_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("HEARTH_LAYOUT"); v != "" {
		cfg.Layout.Preset = v
	}
	if v := os.Getenv("HEARTH_SETTINGS_DIR"); v != "" {
		cfg.Settings.StoreDir = v
	}
	if v := os.Getenv("HEARTH_PHOTOS_DIR"); v != "" {
		cfg.Photos.Dir = v
		cfg.Photos.Enabled = true
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "hearth", "config.toml"))

	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "hearth", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}

// xdgDataHome returns XDG_DATA_HOME or ~/.local/share as fallback.
func xdgDataHome(home string) string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "share")
}
