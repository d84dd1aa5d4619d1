package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// Collector subscribes to processing events and keeps running counters.
type Collector struct {
	bus evbus.Bus

	mu        sync.Mutex
	processed int
	failed    int
	byOrigin  map[string]int
}

// NewCollector subscribes a fresh collector to the bus.
func NewCollector(bus evbus.Bus) (*Collector, error) {
	c := &Collector{
		bus:      bus,
		byOrigin: make(map[string]int),
	}
	if err := bus.Subscribe(EventImageProcessed, c.onProcessed); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(EventImageFailed, c.onFailed); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collector) onProcessed(ev ProcessedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
	c.byOrigin[ev.Origin]++
}

func (c *Collector) onFailed(ev FailedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() (processed, failed int, byOrigin map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.byOrigin))
	for k, v := range c.byOrigin {
		out[k] = v
	}
	return c.processed, c.failed, out
}

// Close detaches the collector from the bus.
func (c *Collector) Close() {
	c.bus.Unsubscribe(EventImageProcessed, c.onProcessed)
	c.bus.Unsubscribe(EventImageFailed, c.onFailed)
}
