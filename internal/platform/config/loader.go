package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "shotround/internal/platform/errors"
)

// Loader reads configuration from a YAML file over the built-in defaults.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader for the given config file path. An empty path
// falls back to "config.yaml" in the working directory.
func NewLoader(path string) *Loader {
	if path == "" {
		path = "config.yaml"
	}
	return &Loader{
		path:      path,
		useDotEnv: true,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load reads the config file if present, otherwise returns defaults. Paths
// are expanded and values normalised before the result is returned.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using process environment")
		}
	}

	cfg := DefaultConfig()
	path := l.path

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(
				platformerrors.KindConfig, "config.Load", "parse config file", err)
		}
	case os.IsNotExist(err):
		path = ""
	default:
		return nil, platformerrors.Wrap(
			platformerrors.KindConfig, "config.Load", "read config file", err)
	}

	normalize(cfg)

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

// normalize expands home-relative paths and forces out-of-range values back
// to usable defaults.
func normalize(cfg *Config) {
	cfg.Watch.Folder = ExpandPath(cfg.Watch.Folder)
	cfg.Output.Folder = ExpandPath(cfg.Output.Folder)
	if cfg.Staging.Dir == "" {
		cfg.Staging.Dir = os.TempDir()
	}
	cfg.Staging.Dir = ExpandPath(cfg.Staging.Dir)

	if cfg.Watch.SettleDelay <= 0 {
		cfg.Watch.SettleDelay = Duration(500 * time.Millisecond)
	}
	if cfg.Watch.QueueSize <= 0 {
		cfg.Watch.QueueSize = 64
	}
	if cfg.Clipboard.PollInterval <= 0 {
		cfg.Clipboard.PollInterval = Duration(500 * time.Millisecond)
	}
	if cfg.Radius.Percentage <= 0 {
		cfg.Radius.Percentage = 0.05
	}
	if cfg.Radius.Percentage > 0.5 {
		cfg.Radius.Percentage = 0.5
	}
	if cfg.Staging.MaxAge <= 0 {
		cfg.Staging.MaxAge = Duration(time.Hour)
	}
	if cfg.Staging.JanitorSchedule == "" {
		cfg.Staging.JanitorSchedule = "@every 15m"
	}
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
