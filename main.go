// hearth is a terminal family dashboard for an always-on kiosk display.
//
// It arranges widgets (clock, calendar, weather, photo slideshow, system
// health, voice assistant) on a D-pad navigable grid. Widgets talk to the
// dashboard only through typed envelopes on an in-process router, and
// shared settings sync across devices through a common settings store.
//
// Usage:
//
//	hearth [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: XDG search)
//	-preset string  Grid layout preset override (dashboard|compact|photos)
//	-theme string   Theme override (dark|light|midnight)
//	-status         Print data source status and exit
//	-verbose        Enable verbose logging
//	-version        Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/hearth/pkg/app"
	"gitlab.com/tinyland/lab/hearth/pkg/cache"
	"gitlab.com/tinyland/lab/hearth/pkg/config"
	"gitlab.com/tinyland/lab/hearth/pkg/render"
	"gitlab.com/tinyland/lab/hearth/pkg/settings"
	"gitlab.com/tinyland/lab/hearth/pkg/sources"
	"gitlab.com/tinyland/lab/hearth/pkg/widgets"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Rescan cadences for file-backed sources.
const (
	calendarRefresh = 10 * time.Minute
	photosRescan    = 5 * time.Minute
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		presetOver  = flag.String("preset", "", "Grid layout preset override")
		themeOver   = flag.String("theme", "", "Theme override")
		showStatus  = flag.Bool("status", false, "Print data source status and exit")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("hearth %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *presetOver != "" {
		cfg.Layout.Preset = *presetOver
	}
	if *themeOver != "" {
		cfg.Theme.Name = *themeOver
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := setupLogging(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Settings: shared store plus local snapshot fallback, watched for
	// changes written by other devices.
	ctrl := settings.New(settings.Options{
		StoreDir:     cfg.Settings.StoreDir,
		SnapshotPath: cfg.Settings.SnapshotPath,
		Debounce:     cfg.Settings.Debounce.Duration,
		Logger:       logger,
	})
	defer ctrl.Close()
	if err := ctrl.Watch(ctx); err != nil {
		logger.Warn("settings watch unavailable", "error", err)
	}

	registry, runner, updates, err := buildSources(cfg, ctrl, logger)
	if err != nil {
		logger.Error("source setup failed", "error", err)
		os.Exit(1)
	}

	if *showStatus {
		printStatus(ctx, registry)
		os.Exit(0)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "hearth needs a terminal; use -status for scripted output")
		os.Exit(1)
	}

	if err := runner.Start(ctx); err != nil {
		logger.Error("source runner failed", "error", err)
		os.Exit(1)
	}
	defer runner.Stop()

	model := app.NewModel(*cfg, logger, ctrl, updates, buildWidgets(cfg, ctrl, logger)...)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	p := tea.NewProgram(model, opts...)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	logger.Info("starting hearth",
		"version", version,
		"preset", cfg.Layout.Preset,
		"theme", cfg.Theme.Name,
		"color_profile", termenv.EnvColorProfile(),
	)
	if _, err := p.Run(); err != nil {
		logger.Error("dashboard error", "error", err)
		os.Exit(1)
	}
}

// setupLogging writes to both stderr and the configured log file.
func setupLogging(cfg *config.Config, verbose bool) (*slog.Logger, *os.File, error) {
	level := slog.LevelInfo
	if verbose || cfg.General.LogLevel == "debug" {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	var logFile *os.File
	if cfg.General.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		w = io.MultiWriter(os.Stderr, f)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, logFile, nil
}

// buildSources registers the enabled data sources and returns the runner
// and its updates channel.
func buildSources(cfg *config.Config, ctrl *settings.Controller, logger *slog.Logger) (*sources.Registry, *sources.Runner, chan sources.Update, error) {
	registry := sources.NewRegistry()

	if cfg.Weather.Enabled {
		store, err := cache.NewStore(filepath.Join(cfg.General.CacheDir, "geocode"), 0)
		if err != nil {
			logger.Warn("geocode cache unavailable", "error", err)
			store = nil
		}
		geocoder := sources.NewGeocoder(store)
		postal := settingOr(ctrl, "weather.postalCode", cfg.Weather.PostalCode)
		country := settingOr(ctrl, "weather.country", cfg.Weather.Country)
		src := sources.NewWeatherSource(geocoder, postal, country, cfg.Weather.Interval.Duration)
		if err := registry.Register(src); err != nil {
			return nil, nil, nil, err
		}
	}

	if cfg.Calendar.Enabled && cfg.Calendar.ICSPath != "" {
		src := sources.NewCalendarSource(cfg.Calendar.ICSPath, calendarRefresh)
		if err := registry.Register(src); err != nil {
			return nil, nil, nil, err
		}
	}

	if cfg.Photos.Enabled {
		shuffle := ctrl.GetBool("photos.shuffle", false)
		src := sources.NewPhotosSource(cfg.Photos.Dir, shuffle, photosRescan)
		if err := registry.Register(src); err != nil {
			return nil, nil, nil, err
		}
	}

	if cfg.System.Enabled {
		if err := registry.Register(sources.NewSystemSource(cfg.System.Interval.Duration)); err != nil {
			return nil, nil, nil, err
		}
	}

	updates := make(chan sources.Update, 16)
	return registry, sources.NewRunner(registry, updates), updates, nil
}

// buildWidgets constructs the widget set for the configured features.
// Widgets for disabled features still render placeholders if the layout
// names them, so the grid never has holes.
func buildWidgets(cfg *config.Config, ctrl *settings.Controller, logger *slog.Logger) []widgets.Widget {
	var renderer widgets.ImageRenderer
	if cfg.Photos.Enabled {
		proto := render.DetectProtocol()
		logger.Info("photo rendering", "protocol", proto)
		if proto != render.ProtocolNone {
			renderer = render.NewRenderer(proto)
		}
	}

	ws := []widgets.Widget{
		widgets.NewHeader(ctrl.GetString("family.name", "")),
		widgets.NewClock(ctrl.GetBool("clock.format24h", false)),
		widgets.NewCalendar(),
		widgets.NewWeather(ctrl.GetString("weather.units", "metric") != "imperial"),
		widgets.NewPhotos(renderer, cfg.Photos.Interval.Duration),
		widgets.NewSystem(),
	}
	if cfg.Voice.Enabled {
		voice := widgets.NewVoice()
		voice.OnToggle = func(listening bool) {
			logger.Info("voice assistant toggled", "listening", listening)
		}
		ws = append(ws, voice)
	}
	return ws
}

// settingOr returns the synced setting when it is non-empty, else the
// config file value.
func settingOr(ctrl *settings.Controller, path, fallback string) string {
	if v := ctrl.GetString(path, ""); v != "" {
		return v
	}
	return fallback
}

// printStatus runs one fetch per source and prints the results.
func printStatus(ctx context.Context, registry *sources.Registry) {
	names := registry.List()
	if len(names) == 0 {
		fmt.Println("no sources enabled")
		return
	}
	for _, name := range names {
		src, ok := registry.Get(name)
		if !ok {
			continue
		}
		if _, err := src.Fetch(ctx); err != nil {
			fmt.Printf("%-10s error: %v\n", name, err)
			continue
		}
		fmt.Printf("%-10s ok (every %s)\n", name, src.Interval())
	}
}
