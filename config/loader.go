package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Paths searched when no config file is given
var DefaultPaths = []string{"journeys.yml", "config.yml"}

// Default configuration, used when no file is found
func Default() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend: "memory",
		},
		Cache: CacheConfig{
			MaxEntries: 2048,
			Policy:     "checked",
		},
		DefaultDay: "weekday",
	}
}

// Load reads and validates a configuration file. With an empty path,
// DefaultPaths are tried in order and defaults are returned if none
// exists.
func Load(path string) (*AppConfig, error) {
	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		for _, p := range DefaultPaths {
			data, err = os.ReadFile(p)
			if err == nil {
				break
			}
		}
		if err != nil {
			return Default(), nil
		}
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration. Unset fields
// take their default.
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Cache.Policy == "" {
		cfg.Cache.Policy = "checked"
	}
	if cfg.DefaultDay == "" {
		cfg.DefaultDay = "weekday"
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	seen := map[string]bool{}
	for _, tt := range cfg.Timetables {
		if seen[tt.Name] {
			return nil, fmt.Errorf("validating config: repeated timetable name '%s'", tt.Name)
		}
		seen[tt.Name] = true
	}

	return cfg, nil
}

// Source of the named timetable. A name that isn't configured is
// taken as a path or URL itself.
func (c *AppConfig) Source(name string) string {
	for _, tt := range c.Timetables {
		if tt.Name == name {
			return tt.Source
		}
	}
	return name
}

// Sources of every configured timetable, in order.
func (c *AppConfig) Sources() []string {
	sources := []string{}
	for _, tt := range c.Timetables {
		sources = append(sources, tt.Source)
	}
	return sources
}
