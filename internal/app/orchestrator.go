// Package app wires the triggers, the transform service and the janitor
// into one lifecycle.
package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"shotround/internal/domain/clipboard"
	"shotround/internal/domain/dispatch"
	"shotround/internal/domain/eventbus"
	"shotround/internal/domain/image"
	"shotround/internal/domain/watcher"
	"shotround/internal/platform/config"
	"shotround/internal/platform/errors"
	"shotround/internal/platform/logging"
)

// Orchestrator owns the transform service, the dispatch guard and the
// two triggers. All entry points, watcher events, clipboard polls and
// manual invocations, funnel through the same guard and service.
type Orchestrator struct {
	cfg    *config.Config
	logger *logging.Logger

	service *image.Service
	guard   *dispatch.Guard
	bus     evbus.Bus
	stats   *eventbus.Collector

	bridge  clipboard.Bridge
	clip    *clipboard.Trigger
	watch   *watcher.Trigger
	janitor *Janitor

	runMu   sync.Mutex
	running bool
}

// New assembles an orchestrator. bridge may be nil when no clipboard
// capability is available; the daemon then runs disk-only.
func New(cfg *config.Config, logger *logging.Logger, bridge clipboard.Bridge) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg:     cfg,
		logger:  logger,
		service: image.NewService(cfg, logger),
		guard:   dispatch.NewGuard(),
		bus:     eventbus.New(),
		bridge:  bridge,
	}

	stats, err := eventbus.NewCollector(o.bus)
	if err != nil {
		return nil, errors.Wrap(errors.KindBootstrap, "app.New", "failed to attach stats collector", err)
	}
	o.stats = stats

	if cfg.Clipboard.MonitorEnabled && bridge != nil {
		o.clip = clipboard.NewTrigger(clipboard.TriggerOptions{
			Bridge:      bridge,
			Guard:       o.guard,
			Transformer: o.service,
			Bus:         o.bus,
			StagingDir:  cfg.Staging.Dir,
			Interval:    cfg.Clipboard.PollInterval.Std(),
			Logger:      logger,
		})
	}

	if cfg.Watch.Enabled {
		o.watch = watcher.NewTrigger(watcher.Options{
			Folder:      cfg.Watch.Folder,
			Patterns:    cfg.Watch.Patterns,
			SettleDelay: cfg.Watch.SettleDelay.Std(),
			QueueSize:   cfg.Watch.QueueSize,
			Handle:      o.handleDetected,
			Logger:      logger,
		})
	}

	o.janitor = NewJanitor(cfg.Staging, logger)
	return o, nil
}

// Start launches the enabled triggers and the janitor. Starting a running
// orchestrator is a no-op.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if o.running {
		return nil
	}

	if o.watch != nil {
		if err := o.watch.Start(ctx); err != nil {
			return err
		}
	}
	if o.clip != nil {
		o.clip.Start(ctx)
	}
	if err := o.janitor.Start(); err != nil {
		if o.clip != nil {
			o.clip.Stop()
		}
		if o.watch != nil {
			o.watch.Stop()
		}
		return errors.Wrap(errors.KindBootstrap, "app.Start", "failed to start janitor", err)
	}

	o.running = true
	return nil
}

// Stop halts triggers and the janitor and waits for in-flight work to
// finish.
func (o *Orchestrator) Stop() {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if !o.running {
		return
	}
	o.running = false

	if o.watch != nil {
		o.watch.Stop()
	}
	if o.clip != nil {
		o.clip.Stop()
	}
	o.janitor.Stop()

	processed, failed, _ := o.stats.Snapshot()
	o.logger.InfoTag(logging.TagBoot, "shutdown complete: %d processed, %d failed", processed, failed)
	o.stats.Close()
}

// ProcessFile runs a single manual transform, the --file entry point.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) error {
	return o.process(ctx, path, eventbus.OriginManual)
}

// Stats returns running counters for processed and failed transforms.
func (o *Orchestrator) Stats() (processed, failed int) {
	processed, failed, _ = o.stats.Snapshot()
	return processed, failed
}

// handleDetected is the watcher trigger's handler.
func (o *Orchestrator) handleDetected(ctx context.Context, path string) {
	if err := o.process(ctx, path, eventbus.OriginWatcher); err != nil {
		o.logger.ErrorTag(logging.TagWatch, "failed to process %s: %v", path, err)
	}
}

// process is the single dispatch path for file-based sources. The identity
// under the guard is the absolute path, so duplicate events for one file
// collapse into a single transform.
func (o *Orchestrator) process(ctx context.Context, path string, origin string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if !o.guard.Acquire(abs) {
		o.logger.DebugTag(logging.TagImage, "skip %s: already in flight", abs)
		return nil
	}
	defer o.guard.Release(abs)

	art, err := o.service.Transform(ctx, abs)
	if err != nil {
		o.bus.Publish(eventbus.EventImageFailed, eventbus.FailedEvent{
			Source: abs,
			Origin: origin,
			Err:    err,
		})
		return err
	}

	if o.cfg.Clipboard.AutoCopy && o.bridge != nil {
		o.copyToClipboard(art)
	}
	if art.Ephemeral {
		os.Remove(art.Path)
	}

	o.bus.Publish(eventbus.EventImageProcessed, eventbus.ProcessedEvent{
		Source:    abs,
		Output:    art.Path,
		Origin:    origin,
		Ephemeral: art.Ephemeral,
	})
	return nil
}

// copyToClipboard places the transformed bytes on the clipboard, routed
// through the clipboard trigger when it runs so the trigger records the
// payload as its own output.
func (o *Orchestrator) copyToClipboard(art *image.Artifact) {
	data, err := os.ReadFile(art.Path)
	if err != nil {
		o.logger.WarnTag(logging.TagClip, "failed to read %s for clipboard copy: %v", art.Path, err)
		return
	}

	if o.clip != nil {
		err = o.clip.WriteResult(data)
	} else {
		err = o.bridge.Write(data)
	}
	if err != nil {
		o.logger.WarnTag(logging.TagClip, "failed to copy %s to clipboard: %v", art.Path, err)
		return
	}
	o.logger.DebugTag(logging.TagClip, "copied %s to clipboard", art.Path)
}
