// Package looper runs the single UI loop every overlay call happens on.
package looper

import (
	"context"
	"sync"
	"time"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

// FrameScheduler delivers animation frames. Callbacks run on the UI loop.
type FrameScheduler interface {
	// PostFrame runs cb once on the next frame
	PostFrame(cb func(now time.Time))

	// Now returns the loop clock
	Now() time.Time
}

// Looper serializes tasks and frame callbacks on one goroutine
type Looper struct {
	tasks    chan func()
	interval time.Duration

	mu      sync.Mutex
	pending []func(time.Time)
	onFrame func(time.Time)
}

// New creates a loop ticking at fps frames per second
func New(fps int) *Looper {
	if fps <= 0 {
		fps = 60
	}
	return &Looper{
		tasks:    make(chan func(), 256),
		interval: time.Second / time.Duration(fps),
	}
}

// Post queues f to run on the loop. Safe from any goroutine.
func (l *Looper) Post(f func()) {
	l.tasks <- f
}

// PostFrame queues cb for the next frame. Safe from any goroutine.
func (l *Looper) PostFrame(cb func(now time.Time)) {
	l.mu.Lock()
	l.pending = append(l.pending, cb)
	l.mu.Unlock()
}

// OnFrame registers a hook run after the frame callbacks of every frame,
// typically the renderer.
func (l *Looper) OnFrame(f func(now time.Time)) {
	l.mu.Lock()
	l.onFrame = f
	l.mu.Unlock()
}

// Now returns the wall clock
func (l *Looper) Now() time.Time {
	return time.Now()
}

// Run processes tasks and frames until ctx is done. Pending frame callbacks
// are dropped on exit.
func (l *Looper) Run(ctx context.Context) error {
	log := logger.WithComponent("looper")
	log.Debug().Dur("frame_interval", l.interval).Msg("UI loop started")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			dropped := len(l.pending)
			l.pending = nil
			l.mu.Unlock()
			log.Debug().Int("dropped_frames", dropped).Msg("UI loop stopped")
			return ctx.Err()
		case f := <-l.tasks:
			f()
		case now := <-ticker.C:
			l.frame(now)
		}
	}
}

func (l *Looper) frame(now time.Time) {
	l.mu.Lock()
	callbacks := l.pending
	l.pending = nil
	hook := l.onFrame
	l.mu.Unlock()

	for _, cb := range callbacks {
		cb(now)
	}
	if hook != nil {
		hook(now)
	}
}

// Manual is a FrameScheduler driven by an explicit clock. The replay command
// uses it to step frames deterministically.
type Manual struct {
	now     time.Time
	pending []func(time.Time)
	Frames  int
}

// NewManual creates a manual scheduler starting at start
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// PostFrame queues cb for the next Frame call
func (m *Manual) PostFrame(cb func(now time.Time)) {
	m.pending = append(m.pending, cb)
}

// Now returns the manual clock
func (m *Manual) Now() time.Time {
	return m.now
}

// Pending reports the number of queued frame callbacks
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Frame advances the clock by d and runs the callbacks queued before the call
func (m *Manual) Frame(d time.Duration) {
	m.now = m.now.Add(d)
	callbacks := m.pending
	m.pending = nil
	m.Frames++
	for _, cb := range callbacks {
		cb(m.now)
	}
}

// RunFor steps frames of length step until total has elapsed or nothing is queued
func (m *Manual) RunFor(total, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < total && len(m.pending) > 0; elapsed += step {
		m.Frame(step)
	}
}
