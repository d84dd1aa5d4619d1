// Package watcher turns filesystem create events into transform dispatches.
package watcher

import (
	"context"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shotround/internal/platform/errors"
	"shotround/internal/platform/logging"
)

// HandleFunc receives the absolute path of a settled screenshot file.
type HandleFunc func(ctx context.Context, path string)

// Options configures the folder watcher.
type Options struct {
	Folder      string
	Patterns    []string
	SettleDelay time.Duration
	QueueSize   int
	Handle      HandleFunc
	Logger      *logging.Logger
}

// Trigger watches a single folder for newly created files matching the
// configured glob patterns and hands each one to the handler after a
// settle delay, so half-written screenshots are not picked up.
type Trigger struct {
	folder      string
	patterns    []string
	settleDelay time.Duration
	handle      HandleFunc
	logger      *logging.Logger

	queue chan string

	pendingMu sync.Mutex
	pending   map[string]struct{}

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	fsw     *fsnotify.Watcher
}

// NewTrigger creates a stopped watcher trigger.
func NewTrigger(opts Options) *Trigger {
	size := opts.QueueSize
	if size <= 0 {
		size = 64
	}
	return &Trigger{
		folder:      opts.Folder,
		patterns:    opts.Patterns,
		settleDelay: opts.SettleDelay,
		handle:      opts.Handle,
		logger:      opts.Logger,
		queue:       make(chan string, size),
		pending:     make(map[string]struct{}),
	}
}

// Start registers the folder with fsnotify and launches the event and
// consumer goroutines. Starting a running trigger is a no-op.
func (t *Trigger) Start(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.KindWatcher, "watcher.Start", "failed to create filesystem watcher", err)
	}
	if err := fsw.Add(t.folder); err != nil {
		fsw.Close()
		return errors.Wrap(errors.KindWatcher, "watcher.Start", "failed to watch "+t.folder, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.fsw = fsw
	t.cancel = cancel
	t.running = true

	t.wg.Add(2)
	go t.eventLoop(loopCtx)
	go t.consumeLoop(loopCtx)

	t.logger.InfoTag(logging.TagWatch, "watching %s for %v", t.folder, t.patterns)
	return nil
}

// Stop closes the watcher and waits for both goroutines to exit.
func (t *Trigger) Stop() {
	t.runMu.Lock()
	if !t.running {
		t.runMu.Unlock()
		return
	}
	t.running = false
	cancel := t.cancel
	fsw := t.fsw
	t.runMu.Unlock()

	cancel()
	fsw.Close()
	t.wg.Wait()
	t.logger.InfoTag(logging.TagWatch, "stopped watching %s", t.folder)
}

func (t *Trigger) eventLoop(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-t.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if !t.matches(ev.Name) {
				continue
			}
			t.enqueue(ev.Name)
		case err, ok := <-t.fsw.Errors:
			if !ok {
				return
			}
			t.logger.ErrorTag(logging.TagWatch, "watch error: %v", err)
		}
	}
}

func (t *Trigger) consumeLoop(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case name := <-t.queue:
			t.wg.Add(1)
			go t.settleAndDispatch(ctx, name)
		}
	}
}

// settleAndDispatch waits out the settle delay and runs the handler. Each
// path gets its own goroutine so a slow transform never delays other files;
// same-path serialisation is the dispatch guard's job downstream.
func (t *Trigger) settleAndDispatch(ctx context.Context, name string) {
	defer t.wg.Done()
	defer t.clearPending(name)

	select {
	case <-time.After(t.settleDelay):
	case <-ctx.Done():
		return
	}
	t.handle(ctx, name)
}

// enqueue admits a path unless it is already pending or the queue is full.
// A path stays pending until its dispatch finishes, so an event burst for
// one file collapses into a single dispatch.
func (t *Trigger) enqueue(name string) bool {
	t.pendingMu.Lock()
	if _, dup := t.pending[name]; dup {
		t.pendingMu.Unlock()
		t.logger.DebugTag(logging.TagWatch, "skip duplicate event for %s", name)
		return false
	}
	t.pending[name] = struct{}{}
	t.pendingMu.Unlock()

	select {
	case t.queue <- name:
		return true
	default:
		t.clearPending(name)
		t.logger.WarnTag(logging.TagWatch, "queue full, dropping %s", name)
		return false
	}
}

func (t *Trigger) clearPending(name string) {
	t.pendingMu.Lock()
	delete(t.pending, name)
	t.pendingMu.Unlock()
}

// matches tests the base name against the patterns in order. Matching is
// case-sensitive, as screenshot tools name their files consistently.
func (t *Trigger) matches(name string) bool {
	base := filepath.Base(name)
	for _, pattern := range t.patterns {
		ok, err := path.Match(pattern, base)
		if err != nil {
			t.logger.WarnTag(logging.TagWatch, "bad pattern %q: %v", pattern, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
