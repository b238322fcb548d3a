package gleif

import (
	"context"
	"sync"
	"time"
)

// gate enforces a minimum delay between outbound registry calls. The gate
// is global to the client that owns it, not per LEI; the lock is held
// across the wait so concurrent callers are serialised and the timestamp
// update is atomic.
type gate struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

func newGate(delay time.Duration) *gate {
	return &gate{delay: delay}
}

// wait blocks until at least the configured delay has passed since the
// previous call, then records the new call time. Returns early with the
// context error if the context is cancelled while waiting.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() {
		if remaining := g.delay - time.Since(g.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	g.last = time.Now()
	return nil
}
