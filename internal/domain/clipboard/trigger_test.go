package clipboard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotround/internal/domain/dispatch"
	"shotround/internal/domain/image"
	"shotround/internal/platform/config"
	platformtesting "shotround/internal/platform/testing"
)

type memoryBridge struct {
	mu      sync.Mutex
	content []byte
	reads   int
	writes  int
}

func (m *memoryBridge) Read() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.content == nil {
		return nil, false
	}
	return bytes.Clone(m.content), true
}

func (m *memoryBridge) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.content = bytes.Clone(data)
	return nil
}

func (m *memoryBridge) place(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = bytes.Clone(data)
}

func (m *memoryBridge) stats() (reads, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, m.writes
}

func newClipboardService(t *testing.T) (*image.Service, *config.Config) {
	t.Helper()
	cfg := platformtesting.SetupTestConfig(t)
	cfg.Output.SaveToDesktop = false
	logger := platformtesting.SetupTestLogger(t)
	return image.NewService(cfg, logger), cfg
}

func pngPayload(t *testing.T) []byte {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.png")
	platformtesting.WriteTestPNG(t, path, 32, 32)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestTriggerFeedbackLoopPrevention(t *testing.T) {
	svc, cfg := newClipboardService(t)
	bridge := &memoryBridge{}
	logger := platformtesting.SetupTestLogger(t)

	tr := NewTrigger(TriggerOptions{
		Bridge:      bridge,
		Guard:       dispatch.NewGuard(),
		Transformer: svc,
		StagingDir:  cfg.Staging.Dir,
		Interval:    10 * time.Millisecond,
		Logger:      logger,
	})

	payload := pngPayload(t)
	bridge.place(payload)

	tr.pollOnce(context.Background())
	_, writes := bridge.stats()
	require.Equal(t, 1, writes, "transform result should be written back once")

	// The write-back recorded the output as last seen, so subsequent
	// polls must classify the clipboard as unchanged.
	for i := 0; i < 3; i++ {
		tr.pollOnce(context.Background())
	}
	_, writes = bridge.stats()
	assert.Equal(t, 1, writes, "own output must not retrigger a transform")
}

func TestTriggerUnchangedContentSkipped(t *testing.T) {
	svc, cfg := newClipboardService(t)
	bridge := &memoryBridge{}
	logger := platformtesting.SetupTestLogger(t)

	tr := NewTrigger(TriggerOptions{
		Bridge:      bridge,
		Guard:       dispatch.NewGuard(),
		Transformer: svc,
		StagingDir:  cfg.Staging.Dir,
		Interval:    10 * time.Millisecond,
		Logger:      logger,
	})

	payload := pngPayload(t)
	tr.SeedLastSeen(payload)
	bridge.place(payload)

	tr.pollOnce(context.Background())
	_, writes := bridge.stats()
	assert.Zero(t, writes, "seeded content must not be dispatched")
}

func TestTriggerFailureRecordsLastSeen(t *testing.T) {
	svc, cfg := newClipboardService(t)
	bridge := &memoryBridge{}
	logger := platformtesting.SetupTestLogger(t)

	tr := NewTrigger(TriggerOptions{
		Bridge:      bridge,
		Guard:       dispatch.NewGuard(),
		Transformer: svc,
		StagingDir:  cfg.Staging.Dir,
		Interval:    10 * time.Millisecond,
		Logger:      logger,
	})

	bridge.place([]byte("not an image"))

	tr.pollOnce(context.Background())
	tr.pollOnce(context.Background())
	_, writes := bridge.stats()
	assert.Zero(t, writes)
	reads, _ := bridge.stats()
	assert.Equal(t, 2, reads, "failed payload is remembered, not retried")
}

func TestTriggerCleansStagedTemp(t *testing.T) {
	svc, cfg := newClipboardService(t)
	bridge := &memoryBridge{}
	logger := platformtesting.SetupTestLogger(t)

	tr := NewTrigger(TriggerOptions{
		Bridge:      bridge,
		Guard:       dispatch.NewGuard(),
		Transformer: svc,
		StagingDir:  cfg.Staging.Dir,
		Interval:    10 * time.Millisecond,
		Logger:      logger,
	})

	bridge.place(pngPayload(t))
	tr.pollOnce(context.Background())

	entries, err := os.ReadDir(cfg.Staging.Dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, bytes.HasPrefix([]byte(e.Name()), []byte(StagingPrefix)),
			"staged temp %s should have been removed", e.Name())
	}
}

func TestTriggerStartStop(t *testing.T) {
	svc, cfg := newClipboardService(t)
	bridge := &memoryBridge{}
	logger := platformtesting.SetupTestLogger(t)

	tr := NewTrigger(TriggerOptions{
		Bridge:      bridge,
		Guard:       dispatch.NewGuard(),
		Transformer: svc,
		StagingDir:  cfg.Staging.Dir,
		Interval:    5 * time.Millisecond,
		Logger:      logger,
	})

	tr.Start(context.Background())
	tr.Start(context.Background()) // second start is a no-op

	deadline := time.After(time.Second)
	for {
		if reads, _ := bridge.stats(); reads > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poll loop never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	tr.Stop()
	tr.Stop() // second stop is a no-op

	reads, _ := bridge.stats()
	time.Sleep(20 * time.Millisecond)
	readsAfter, _ := bridge.stats()
	assert.Equal(t, reads, readsAfter, "loop must not poll after Stop returns")
}
