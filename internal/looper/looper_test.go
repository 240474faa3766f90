package looper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooper_RunsTasksAndFrames(t *testing.T) {
	l := New(200)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var order []string
	finished := make(chan struct{})
	l.Post(func() {
		order = append(order, "task")
		l.PostFrame(func(time.Time) {
			order = append(order, "frame")
			close(finished)
		})
	})

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("frame callback never ran")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"task", "frame"}, order)
}

func TestLooper_OnFrameHook(t *testing.T) {
	l := New(0)
	assert.Equal(t, time.Second/60, l.interval)

	var hooked, called int
	l.OnFrame(func(time.Time) { hooked++ })
	l.PostFrame(func(time.Time) { called++ })
	l.frame(time.Now())
	l.frame(time.Now())

	assert.Equal(t, 1, called, "frame callbacks run once")
	assert.Equal(t, 2, hooked)
}

func TestManual(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)

	var seen []time.Duration
	var tick func(now time.Time)
	tick = func(now time.Time) {
		seen = append(seen, now.Sub(start))
		if len(seen) < 3 {
			m.PostFrame(tick)
		}
	}
	m.PostFrame(tick)
	require.Equal(t, 1, m.Pending())

	m.RunFor(time.Second, 10*time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, seen)
	assert.Equal(t, 3, m.Frames)
	assert.Zero(t, m.Pending())
	assert.Equal(t, start.Add(30*time.Millisecond), m.Now())
}
