// Package eventbus carries processing notifications between the trigger
// layer and interested subscribers such as the stats collector.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Topics published by the triggers.
const (
	EventImageProcessed = "image:processed"
	EventImageFailed    = "image:failed"
)

// Origins identify which trigger produced an event.
const (
	OriginWatcher   = "watcher"
	OriginClipboard = "clipboard"
	OriginManual    = "manual"
)

// ProcessedEvent is published after a successful transform.
type ProcessedEvent struct {
	Source    string
	Output    string
	Origin    string
	Ephemeral bool
}

// FailedEvent is published when a transform or write-back fails.
type FailedEvent struct {
	Source string
	Origin string
	Err    error
}

// New returns a process-local bus.
func New() evbus.Bus {
	return evbus.New()
}
