package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tidbyt.dev/journeys"
	"tidbyt.dev/journeys/config"
	"tidbyt.dev/journeys/downloader"
	"tidbyt.dev/journeys/model"
	"tidbyt.dev/journeys/storage"
)

var rootCmd = &cobra.Command{
	Use:          "journeys",
	Short:        "Timetable journey planner",
	Long:         "Enumerates journeys through bus timetables and picks the best ones",
	SilenceUsage: true,
}

var (
	configPath string
	timetables []string
	weekend    bool
	dayName    string
	verbose    bool
	backend    string
	sqliteDir  string
	postgres   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default journeys.yml or config.yml if present)")
	rootCmd.PersistentFlags().StringSliceVarP(
		&timetables,
		"timetable",
		"t",
		[]string{},
		"Timetable name, path or URL (default all configured timetables)",
	)
	rootCmd.PersistentFlags().BoolVarP(&weekend, "weekend", "w", false, "Use weekend timetables")
	rootCmd.PersistentFlags().StringVarP(&dayName, "day", "", "", "Day type, weekday or weekend")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().StringVarP(&backend, "storage", "", "", "Storage backend: memory, sqlite or postgres")
	rootCmd.PersistentFlags().StringVarP(&sqliteDir, "sqlite-dir", "", "", "Directory for sqlite storage")
	rootCmd.PersistentFlags().StringVarP(&postgres, "postgres", "", "", "Postgres connection string")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func logger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
}

// Loads the config file and applies flag overrides.
func LoadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if sqliteDir != "" {
		cfg.Storage.SQLiteDir = sqliteDir
		if backend == "" {
			cfg.Storage.Backend = "sqlite"
		}
	}
	if postgres != "" {
		cfg.Storage.Postgres = postgres
		if backend == "" {
			cfg.Storage.Backend = "postgres"
		}
	}

	return cfg, nil
}

func BuildStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		return storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: cfg.Storage.SQLiteDir})
	case "postgres":
		return storage.NewPSQLStorage(cfg.Storage.Postgres, false)
	}
	return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Storage.Backend)
}

func BuildManager(cfg *config.AppConfig) (*journeys.Manager, error) {
	s, err := BuildStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	manager := journeys.NewManager(s)
	manager.Logger = logger()
	if cfg.Downloader.TimeoutMS > 0 {
		manager.Timeout = time.Duration(cfg.Downloader.TimeoutMS) * time.Millisecond
	}
	if cfg.Downloader.MaxSize > 0 {
		manager.MaxSize = cfg.Downloader.MaxSize
	}
	if cfg.Downloader.CacheTTLMS > 0 {
		manager.CacheTTL = time.Duration(cfg.Downloader.CacheTTLMS) * time.Millisecond
	}
	if cfg.Downloader.CacheFile != "" {
		fs, err := downloader.NewFilesystem(cfg.Downloader.CacheFile)
		if err != nil {
			return nil, fmt.Errorf("creating download cache: %w", err)
		}
		fs.Logger = manager.Logger
		manager.Downloader = fs
	}

	return manager, nil
}

// Sources selected by --timetable, or every configured timetable.
func Sources(cfg *config.AppConfig) ([]string, error) {
	if len(timetables) == 0 {
		sources := cfg.Sources()
		if len(sources) == 0 {
			return nil, fmt.Errorf("no timetable given, and none configured")
		}
		return sources, nil
	}

	sources := []string{}
	for _, name := range timetables {
		sources = append(sources, cfg.Source(name))
	}
	return sources, nil
}

func DayType(cfg *config.AppConfig) (model.DayType, error) {
	if weekend {
		return model.DayTypeWeekend, nil
	}
	if dayName != "" {
		return model.ParseDayType(dayName)
	}
	return model.ParseDayType(cfg.DefaultDay)
}

// Loads the selected timetables into a network and sets up a planner
// for it.
func LoadPlanner(ctx context.Context) (*journeys.Planner, model.DayType, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, 0, err
	}

	day, err := DayType(cfg)
	if err != nil {
		return nil, 0, err
	}

	sources, err := Sources(cfg)
	if err != nil {
		return nil, 0, err
	}

	manager, err := BuildManager(cfg)
	if err != nil {
		return nil, 0, err
	}

	network, err := manager.LoadNetwork(ctx, sources)
	if err != nil {
		return nil, 0, fmt.Errorf("loading timetables: %w", err)
	}

	policy, err := journeys.ParseCachePolicy(cfg.Cache.Policy)
	if err != nil {
		return nil, 0, err
	}

	planner := journeys.NewPlanner(network)
	planner.CacheSize = cfg.Cache.MaxEntries
	planner.CachePolicy = policy
	planner.Logger = logger()

	return planner, day, nil
}

// Parses a time given as H:MM, or "now".
func ParseDeparture(s string) (model.Clock, error) {
	if strings.EqualFold(s, "now") || s == "" {
		now := time.Now()
		return model.NewClock(now.Hour(), now.Minute()), nil
	}
	c, err := model.ParseClock(s)
	if err != nil {
		return model.Clock{}, fmt.Errorf("invalid time '%s': %w", s, err)
	}
	return c, nil
}
