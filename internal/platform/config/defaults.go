package config

import (
	"time"
)

// DefaultConfig mirrors the defaults the tool ships with: watch the desktop
// for screenshot files, save rounded copies next to them, and copy results
// to the clipboard.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "shotround.log",
		},
		Watch: WatchConfig{
			Enabled: true,
			Folder:  "~/Desktop",
			Patterns: []string{
				"Screenshot*.png",
				"CleanShot*.png",
				"Screen Shot*.png",
			},
			SettleDelay: Duration(500 * time.Millisecond),
			QueueSize:   64,
		},
		Clipboard: ClipboardConfig{
			MonitorEnabled: true,
			PollInterval:   Duration(500 * time.Millisecond),
			AutoCopy:       true,
		},
		Output: OutputConfig{
			Folder:          "~/Desktop/rounded_screenshots",
			SaveToDesktop:   true,
			ReplaceOriginal: false,
		},
		Radius: RadiusConfig{
			Pixels:        20,
			UsePercentage: true,
			Percentage:    0.05,
		},
		Staging: StagingConfig{
			Dir:             "",
			JanitorSchedule: "@every 15m",
			MaxAge:          Duration(time.Hour),
		},
	}
}
