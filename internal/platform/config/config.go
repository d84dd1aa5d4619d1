package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration unmarshals from YAML strings like "500ms" as well as plain
// nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}

	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Watch     WatchConfig     `yaml:"watch"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Output    OutputConfig    `yaml:"output"`
	Radius    RadiusConfig    `yaml:"radius"`
	Staging   StagingConfig   `yaml:"staging"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// WatchConfig controls the filesystem trigger.
type WatchConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Folder      string   `yaml:"folder"`
	Patterns    []string `yaml:"patterns"`
	SettleDelay Duration `yaml:"settle_delay"`
	QueueSize   int      `yaml:"queue_size"`
}

// ClipboardConfig controls the clipboard trigger and write-back behavior.
type ClipboardConfig struct {
	MonitorEnabled bool     `yaml:"monitor_enabled"`
	PollInterval   Duration `yaml:"poll_interval"`
	AutoCopy       bool     `yaml:"auto_copy"`
}

// OutputConfig controls where transformed images land.
type OutputConfig struct {
	Folder          string `yaml:"folder"`
	SaveToDesktop   bool   `yaml:"save_to_desktop"`
	ReplaceOriginal bool   `yaml:"replace_original"`
}

// RadiusConfig selects between a fixed pixel radius and a percentage of the
// smaller image dimension. Percentage is a fraction in (0, 0.5].
type RadiusConfig struct {
	Pixels        int     `yaml:"pixels"`
	UsePercentage bool    `yaml:"use_percentage"`
	Percentage    float64 `yaml:"percentage"`
}

// StagingConfig controls where clipboard payloads are staged and how stale
// staging files get cleaned up.
type StagingConfig struct {
	Dir             string   `yaml:"dir"`
	JanitorSchedule string   `yaml:"janitor_schedule"`
	MaxAge          Duration `yaml:"max_age"`
}
