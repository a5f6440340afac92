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
	// Path to the mpv IPC socket used by the streaming engine
	// (mpv --idle --input-ipc-server=<path>).
	MpvSocket string `koanf:"mpv_socket"`

	// Initial volume level, 0.0 to 1.0.
	Volume float64 `koanf:"volume"`

	// Timeout for downloading remote tracks, e.g. "60s".
	FetchTimeout string `koanf:"fetch_timeout"`

	// Position notification interval, e.g. "100ms".
	TickInterval string `koanf:"tick_interval"`

	// Restore volume and last-played position across runs.
	RestoreState *bool `koanf:"restore_state"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Volume: 1.0,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Volume < 0 || cfg.Volume > 1 {
		cfg.Volume = 1.0
	}
	cfg.MpvSocket = expandPath(cfg.MpvSocket)
	if cfg.MpvSocket == "" {
		cfg.MpvSocket = defaultSocketPath()
	}

	return cfg, nil
}

// FetchTimeoutDuration parses the fetch timeout, zero when unset or bad.
func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// TickIntervalDuration parses the tick interval, zero when unset or bad.
func (c *Config) TickIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ShouldRestoreState defaults to true when unset.
func (c *Config) ShouldRestoreState() bool {
	if c.RestoreState == nil {
		return true
	}
	return *c.RestoreState
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/windchime/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "windchime", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func defaultSocketPath() string {
	dir := os.TempDir()
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		dir = runtime
	}
	return filepath.Join(dir, "windchime-mpv.sock")
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
