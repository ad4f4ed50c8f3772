package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths scanned for audio files

	// ResumePaused controls the startup resume policy: when true, the last
	// session's track is loaded at its saved position but left paused instead
	// of starting playback. Default false (resume playing).
	ResumePaused bool `koanf:"resume_paused"`

	// SnapshotIntervalSeconds throttles last-session writes during playback.
	SnapshotIntervalSeconds int `koanf:"snapshot_interval_seconds"`

	LogFile  string `koanf:"log_file"`
	LogLevel string `koanf:"log_level"` // "debug", "info", "warn", "error"
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	if cfg.LogFile != "" {
		cfg.LogFile = expandPath(cfg.LogFile)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/neonbeat/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "neonbeat", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// SnapshotInterval returns the last-session write throttle with the default
// applied.
func (c *Config) SnapshotInterval() time.Duration {
	if c.SnapshotIntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.SnapshotIntervalSeconds) * time.Second
}
