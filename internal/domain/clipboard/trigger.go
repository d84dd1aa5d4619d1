package clipboard

import (
	"bytes"
	"context"
	"os"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"shotround/internal/domain/eventbus"
	"shotround/internal/domain/image"
	"shotround/internal/platform/logging"
)

// Transformer is the synchronous unit of work the trigger dispatches to.
type Transformer interface {
	Transform(ctx context.Context, path string) (*image.Artifact, error)
}

// Guard grants at most one in-flight transform per identity.
type Guard interface {
	Acquire(identity string) bool
	Release(identity string)
}

// TriggerOptions configures the clipboard polling trigger.
type TriggerOptions struct {
	Bridge      Bridge
	Guard       Guard
	Transformer Transformer
	Bus         evbus.Bus
	StagingDir  string
	Interval    time.Duration
	Logger      *logging.Logger
}

// Trigger polls the clipboard on a fixed interval and dispatches newly
// placed image payloads through the guard into the transform service.
// The last-seen payload is owned by the instance; every write-back updates
// it synchronously so the trigger never re-detects its own output.
type Trigger struct {
	bridge      Bridge
	guard       Guard
	transformer Transformer
	bus         evbus.Bus
	stagingDir  string
	interval    time.Duration
	logger      *logging.Logger

	mu       sync.Mutex
	lastSeen []byte

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTrigger creates a stopped trigger.
func NewTrigger(opts TriggerOptions) *Trigger {
	return &Trigger{
		bridge:      opts.Bridge,
		guard:       opts.Guard,
		transformer: opts.Transformer,
		bus:         opts.Bus,
		stagingDir:  opts.StagingDir,
		interval:    opts.Interval,
		logger:      opts.Logger,
	}
}

// SeedLastSeen sets the starting last-seen payload, so content already on
// the clipboard when monitoring begins is not dispatched.
func (t *Trigger) SeedLastSeen(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSeen = bytes.Clone(data)
}

// Start launches the polling loop. Starting an already-running trigger is
// a no-op.
func (t *Trigger) Start(ctx context.Context) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.running = true

	go t.loop(loopCtx)
	t.logger.InfoTag(logging.TagClip, "clipboard monitoring started (interval %s)", t.interval)
}

// Stop cancels the loop and waits for it to exit. The loop reacts within
// one polling interval.
func (t *Trigger) Stop() {
	t.runMu.Lock()
	if !t.running {
		t.runMu.Unlock()
		return
	}
	t.running = false
	cancel := t.cancel
	done := t.done
	t.runMu.Unlock()

	cancel()
	<-done
	t.logger.InfoTag(logging.TagClip, "clipboard monitoring stopped")
}

func (t *Trigger) loop(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.pollOnce(ctx)
		}
	}
}

// pollOnce runs one detection cycle. The new payload is recorded as last
// seen before dispatch, whatever the dispatch outcome, so a failing
// transform cannot loop on the same content.
func (t *Trigger) pollOnce(ctx context.Context) {
	data, ok := t.bridge.Read()
	if !ok {
		return
	}

	t.mu.Lock()
	changed := !bytes.Equal(data, t.lastSeen)
	if changed {
		t.lastSeen = bytes.Clone(data)
	}
	t.mu.Unlock()

	if !changed {
		return
	}

	t.logger.InfoTag(logging.TagClip, "new image detected on clipboard (%d bytes)", len(data))

	staged, err := stagePayload(t.stagingDir, data)
	if err != nil {
		t.logger.ErrorTag(logging.TagClip, "failed to stage clipboard payload: %v", err)
		return
	}
	defer os.Remove(staged)

	if !t.guard.Acquire(staged) {
		t.logger.DebugTag(logging.TagClip, "skip %s: already in flight", staged)
		return
	}
	defer t.guard.Release(staged)

	art, err := t.transformer.Transform(ctx, staged)
	if err != nil {
		t.logger.ErrorTag(logging.TagClip, "failed to process clipboard image: %v", err)
		t.publishFailed(staged, err)
		return
	}

	out, err := os.ReadFile(art.Path)
	if err != nil {
		t.logger.ErrorTag(logging.TagClip, "failed to read transformed output %s: %v", art.Path, err)
	} else if err := t.WriteResult(out); err != nil {
		t.logger.ErrorTag(logging.TagClip, "failed to write result to clipboard: %v", err)
	}

	if art.Ephemeral {
		os.Remove(art.Path)
	}

	t.publishProcessed(staged, art)
}

// WriteResult places transformed bytes on the clipboard and records them as
// last seen in the same critical section, so the very next poll classifies
// the clipboard as unchanged.
func (t *Trigger) WriteResult(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.bridge.Write(data); err != nil {
		return err
	}
	t.lastSeen = bytes.Clone(data)
	return nil
}

func (t *Trigger) publishProcessed(source string, art *image.Artifact) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(eventbus.EventImageProcessed, eventbus.ProcessedEvent{
		Source:    source,
		Output:    art.Path,
		Origin:    eventbus.OriginClipboard,
		Ephemeral: art.Ephemeral,
	})
}

func (t *Trigger) publishFailed(source string, err error) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(eventbus.EventImageFailed, eventbus.FailedEvent{
		Source: source,
		Origin: eventbus.OriginClipboard,
		Err:    err,
	})
}
