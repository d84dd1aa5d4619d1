// Package dispatch serialises work across the concurrently running trigger
// paths. Each logical image is identified by its source path; the guard
// grants at most one in-flight ticket per identity.
package dispatch

import (
	"sync"
)

// Guard tracks the set of identities currently being transformed.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{
		inFlight: make(map[string]struct{}),
	}
}

// Acquire claims the identity for one transform. It returns false when the
// identity already has a transform in flight; the caller must skip the
// occurrence rather than queue it.
func (g *Guard) Acquire(identity string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inFlight[identity]; held {
		return false
	}
	g.inFlight[identity] = struct{}{}
	return true
}

// Release frees the identity. It must run on every path out of a transform,
// success or failure. Releasing an identity that is not held is a no-op.
func (g *Guard) Release(identity string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, identity)
}

// InFlight reports how many identities currently hold a ticket.
func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}
