package config

// StorageConfig selects where parsed timetables are kept
type StorageConfig struct {
	Backend   string `yaml:"backend" validate:"omitempty,oneof=memory sqlite postgres"`
	SQLiteDir string `yaml:"sqliteDir" validate:"required_if=Backend sqlite"`
	Postgres  string `yaml:"postgres" validate:"required_if=Backend postgres"`
}

// CacheConfig bounds the path cache used during enumeration
type CacheConfig struct {
	MaxEntries int    `yaml:"maxEntries" validate:"gte=0"`
	Policy     string `yaml:"policy" validate:"omitempty,oneof=checked unchecked"`
}

// DownloaderConfig controls retrieval of timetables
type DownloaderConfig struct {
	TimeoutMS  int    `yaml:"timeoutMS" validate:"gte=0"`
	MaxSize    int    `yaml:"maxSize" validate:"gte=0"`
	CacheTTLMS int    `yaml:"cacheTTLMS" validate:"gte=0"`
	CacheFile  string `yaml:"cacheFile"`
}

// Timetable names a single line's timetable
type Timetable struct {
	Name   string `yaml:"name" validate:"required"`
	Source string `yaml:"source" validate:"required"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Timetables []Timetable      `yaml:"timetables" validate:"dive"`
	DefaultDay string           `yaml:"defaultDay" validate:"omitempty,oneof=weekday weekend"`
}
