package songlink

import (
	"context"
	"sync"
	"time"
)

// waitBuffer is added to the computed wait so the oldest admission has
// really left the window by the time the caller retries.
const waitBuffer = 100 * time.Millisecond

// requestWindow admits at most limit requests inside any sliding window
// of the given duration. A token bucket admits up to twice its burst
// inside a single window, which would overrun the service's published
// limit, so the window tracks raw admission timestamps instead.
type requestWindow struct {
	mu       sync.Mutex
	limit    int
	duration time.Duration
	// history holds admission times still inside the window, oldest first.
	history []time.Time
	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newRequestWindow(limit int, duration time.Duration) *requestWindow {
	return &requestWindow{
		limit:    limit,
		duration: duration,
		history:  make([]time.Time, 0, limit),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until admitting one more request keeps the window under its limit.
func (w *requestWindow) Wait(ctx context.Context) error {
	for {
		w.mu.Lock()

		now := w.now()
		w.evict(now)

		if len(w.history) < w.limit {
			w.history = append(w.history, now)
			w.mu.Unlock()

			return nil
		}

		waitTime := w.duration - now.Sub(w.history[0]) + waitBuffer

		w.mu.Unlock()

		if err := w.sleep(ctx, waitTime); err != nil {
			return err
		}
	}
}

// evict drops admission times that have left the window.
func (w *requestWindow) evict(now time.Time) {
	cutoff := 0
	for cutoff < len(w.history) && now.Sub(w.history[cutoff]) >= w.duration {
		cutoff++
	}

	if cutoff > 0 {
		w.history = w.history[cutoff:]
	}
}

// sleepContext sleeps for the given duration or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
