package analysis

import (
	"sync"
	"time"
)

// Snapshot is one observation of the synthetic progress indicator.
type Snapshot struct {
	Percent int    `json:"percent"`
	Phase   string `json:"phase"`
}

// ProgressFunc receives progress snapshots. Purely cosmetic; never tied to
// real transfer progress.
type ProgressFunc func(Snapshot)

// tracker drives a monotonically increasing percentage toward a per-phase
// cap on a timer. It is stopped when the run settles so the indicator can
// neither overtake 100 nor linger after completion.
type tracker struct {
	mu     sync.Mutex
	pct    int
	cap    int
	phase  string
	notify ProgressFunc

	ticker   *time.Ticker
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

const tickInterval = 150 * time.Millisecond

func newTracker(notify ProgressFunc) *tracker {
	t := &tracker{
		notify: notify,
		ticker: time.NewTicker(tickInterval),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *tracker) loop() {
	defer close(t.exited)
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			t.mu.Lock()
			if t.pct < t.cap {
				t.pct++
				t.emitLocked()
			}
			t.mu.Unlock()
		}
	}
}

// Phase sets the human-readable label and raises the cap the ticker may
// climb to. Caps never decrease, so the percentage stays monotonic across
// skipped phases.
func (t *tracker) Phase(label string, cap int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = label
	if cap > 99 {
		cap = 99
	}
	if cap > t.cap {
		t.cap = cap
	}
	t.emitLocked()
}

// Done jumps to 100 and stops the timer. Only called on success.
func (t *tracker) Done() {
	t.mu.Lock()
	t.pct = 100
	t.cap = 100
	t.phase = "Done"
	t.emitLocked()
	t.mu.Unlock()
	t.Stop()
}

// Stop cancels the timer and waits for the loop to exit; safe to call more
// than once.
func (t *tracker) Stop() {
	t.stopOnce.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
	<-t.exited
}

func (t *tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{Percent: t.pct, Phase: t.phase}
}

func (t *tracker) emitLocked() {
	if t.notify != nil {
		t.notify(Snapshot{Percent: t.pct, Phase: t.phase})
	}
}
