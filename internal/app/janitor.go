package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"shotround/internal/domain/clipboard"
	"shotround/internal/platform/config"
	"shotround/internal/platform/logging"
)

// Janitor periodically removes staged clipboard temp files that outlived
// their transform, for example after a crash mid-dispatch.
type Janitor struct {
	dir      string
	maxAge   time.Duration
	schedule string
	logger   *logging.Logger
	cron     *cron.Cron
}

// NewJanitor creates a stopped janitor for the staging directory.
func NewJanitor(cfg config.StagingConfig, logger *logging.Logger) *Janitor {
	return &Janitor{
		dir:      cfg.Dir,
		maxAge:   cfg.MaxAge.Std(),
		schedule: cfg.JanitorSchedule,
		logger:   logger,
	}
}

// Start schedules the sweep and runs one immediately to clear leftovers
// from a previous run.
func (j *Janitor) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, j.Sweep); err != nil {
		return err
	}
	j.cron = c
	c.Start()
	j.Sweep()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Sweep removes staged files older than the configured age.
func (j *Janitor) Sweep() {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		j.logger.WarnTag(logging.TagJanitor, "failed to read staging dir %s: %v", j.dir, err)
		return
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), clipboard.StagingPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		full := filepath.Join(j.dir, e.Name())
		if err := os.Remove(full); err != nil {
			j.logger.WarnTag(logging.TagJanitor, "failed to remove %s: %v", full, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.InfoTag(logging.TagJanitor, "removed %d stale staged file(s)", removed)
	}
}
