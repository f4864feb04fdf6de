package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(strings.Join([]string{
		"storage:",
		"  backend: sqlite",
		"  sqliteDir: /var/lib/journeys",
		"cache:",
		"  maxEntries: 100",
		"  policy: unchecked",
		"downloader:",
		"  timeoutMS: 5000",
		"  maxSize: 1048576",
		"  cacheFile: /tmp/journeys-cache.json",
		"timetables:",
		"  - name: poisy",
		"    source: data/1_Poisy-ParcDesGlaisins.txt",
		"  - name: campus",
		"    source: https://example.com/2_Piscine-Patinoire_Campus.txt",
		"defaultDay: weekend",
	}, "\n")))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/journeys", cfg.Storage.SQLiteDir)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
	assert.Equal(t, "unchecked", cfg.Cache.Policy)
	assert.Equal(t, 5000, cfg.Downloader.TimeoutMS)
	assert.Equal(t, 1048576, cfg.Downloader.MaxSize)
	assert.Equal(t, "/tmp/journeys-cache.json", cfg.Downloader.CacheFile)
	assert.Equal(t, "weekend", cfg.DefaultDay)
	require.Equal(t, 2, len(cfg.Timetables))

	assert.Equal(t, "data/1_Poisy-ParcDesGlaisins.txt", cfg.Source("poisy"))
	assert.Equal(t, "other.txt", cfg.Source("other.txt"))
	assert.Equal(t, []string{
		"data/1_Poisy-ParcDesGlaisins.txt",
		"https://example.com/2_Piscine-Patinoire_Campus.txt",
	}, cfg.Sources())
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("timetables: []\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), &AppConfig{
		Storage:    cfg.Storage,
		Cache:      cfg.Cache,
		Downloader: cfg.Downloader,
		DefaultDay: cfg.DefaultDay,
	})

	cfg, err = Parse([]byte("cache:\n  maxEntries: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Cache.MaxEntries)
	assert.Equal(t, "checked", cfg.Cache.Policy)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestParseInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
	}{
		{"bad backend", "storage:\n  backend: redis\n"},
		{"sqlite without dir", "storage:\n  backend: sqlite\n"},
		{"postgres without conn", "storage:\n  backend: postgres\n"},
		{"negative cache", "cache:\n  maxEntries: -1\n"},
		{"bad policy", "cache:\n  policy: lru\n"},
		{"bad day", "defaultDay: holiday\n"},
		{"timetable without source", "timetables:\n  - name: a\n"},
		{"repeated timetable", "timetables:\n  - {name: a, source: a.txt}\n  - {name: a, source: b.txt}\n"},
		{"not yaml", "storage: [\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journeys.yml")
	require.NoError(t, os.WriteFile(path, []byte("defaultDay: weekend\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "weekend", cfg.DefaultDay)

	_, err = Load(path + ".missing")
	assert.Error(t, err)
}
