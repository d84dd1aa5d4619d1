package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGuard_AcquireRelease(t *testing.T) {
	g := NewGuard()

	if !g.Acquire("/tmp/a.png") {
		t.Fatal("first acquire should be granted")
	}
	if g.Acquire("/tmp/a.png") {
		t.Fatal("second acquire for held identity should be rejected")
	}
	if !g.Acquire("/tmp/b.png") {
		t.Fatal("distinct identity should be granted concurrently")
	}

	g.Release("/tmp/a.png")
	if !g.Acquire("/tmp/a.png") {
		t.Fatal("released identity should be acquirable again")
	}
}

func TestGuard_ReleaseUnheldIsNoop(t *testing.T) {
	g := NewGuard()
	g.Release("/never/acquired.png")
	if g.InFlight() != 0 {
		t.Fatalf("expected empty guard, got %d in flight", g.InFlight())
	}
}

func TestGuard_NoLeakAfterMatchedReleases(t *testing.T) {
	g := NewGuard()

	var wg sync.WaitGroup
	paths := []string{"/s/1.png", "/s/2.png", "/s/3.png", "/s/4.png"}
	for i := 0; i < 100; i++ {
		for _, p := range paths {
			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				if g.Acquire(p) {
					g.Release(p)
				}
			}(p)
		}
	}
	wg.Wait()

	if got := g.InFlight(); got != 0 {
		t.Fatalf("expected 0 in flight after all releases, got %d", got)
	}
}

func TestGuard_SameIdentityNeverRunsConcurrently(t *testing.T) {
	g := NewGuard()

	var active, maxActive, granted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.Acquire("/s/same.png") {
				return
			}
			defer g.Release("/s/same.png")
			atomic.AddInt32(&granted, 1)

			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&maxActive)
				if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
					break
				}
			}
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&granted) == 0 {
		t.Fatal("at least one acquire should have been granted")
	}
	if max := atomic.LoadInt32(&maxActive); max > 1 {
		t.Fatalf("same identity ran %d transforms concurrently", max)
	}
}
