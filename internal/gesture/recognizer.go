// Package gesture recognizes the three finger pull-down that triggers a
// screenshot.
//
// The pointer whose arrival brings the number of concurrent pointers to three
// arms the recognizer. Once it has travelled the touch slop downwards the
// recognizer claims the touch stream and reports a progress that fills
// linearly over the trigger distance. Lifting that pointer at full progress
// fires.
package gesture

import (
	"math"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/view"
)

const (
	// TriggerSlot is the action index of the pointer that arms the gesture
	TriggerSlot = 2

	// TriggerDistanceDp is the downward travel, in dp, at which progress saturates
	TriggerDistanceDp = 150

	// None marks an unset slot
	None = -1
)

// Phase of the recognizer
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseArmed
	PhaseDragging
)

func (p Phase) String() string {
	switch p {
	case PhaseArmed:
		return "armed"
	case PhaseDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Geometry holds the distances that drive recognition
type Geometry struct {
	TriggerDistancePx int
	TouchSlopPx       int
}

// NewGeometry derives the trigger distance from the display density
func NewGeometry(triggerDistanceDp int, density float64, touchSlopPx int) Geometry {
	return Geometry{
		TriggerDistancePx: int(math.Round(float64(triggerDistanceDp) * density)),
		TouchSlopPx:       touchSlopPx,
	}
}

// State is a snapshot of the recognizer fields
type State struct {
	Dragging     bool
	ActiveSlot   int
	InitialDownY float64
	Progress     float64
}

// Decision is the outcome of feeding one event to the recognizer
type Decision struct {
	// Claimed is set on the event that commits the gesture; the host should
	// stop seeing the stream from here on.
	Claimed bool

	// Consumed means the event belongs to the gesture and must not reach the host
	Consumed bool

	// Redraw is set when progress changed
	Redraw bool

	// Fire is set exactly once per completed gesture
	Fire bool
}

// Recognizer is the gesture state machine. It is not safe for concurrent use;
// feed it from the UI loop.
type Recognizer struct {
	geom Geometry

	phase        Phase
	activeSlot   int
	activeID     int
	initialDownY float64
	progress     float64
}

// NewRecognizer creates an idle recognizer
func NewRecognizer(geom Geometry) *Recognizer {
	r := &Recognizer{geom: geom}
	r.reset()
	return r
}

// Geometry returns the distances in use
func (r *Recognizer) Geometry() Geometry {
	return r.geom
}

// SetGeometry replaces the distances, e.g. after a density change
func (r *Recognizer) SetGeometry(geom Geometry) {
	r.geom = geom
}

// Phase returns the current phase
func (r *Recognizer) Phase() Phase {
	return r.phase
}

// Progress returns the latest computed progress in [0,1]
func (r *Recognizer) Progress() float64 {
	return r.progress
}

// Dragging reports whether the recognizer owns the touch stream
func (r *Recognizer) Dragging() bool {
	return r.phase == PhaseDragging
}

// State returns a copy of the recognizer fields
func (r *Recognizer) State() State {
	return State{
		Dragging:     r.phase == PhaseDragging,
		ActiveSlot:   r.activeSlot,
		InitialDownY: r.initialDownY,
		Progress:     r.progress,
	}
}

// Reset drops any gesture in progress
func (r *Recognizer) Reset() {
	r.reset()
}

func (r *Recognizer) reset() {
	r.phase = PhaseIdle
	r.activeSlot = None
	r.activeID = None
	r.initialDownY = 0
	r.progress = 0
}

// Handle advances the state machine by one event
func (r *Recognizer) Handle(ev view.MotionEvent) Decision {
	switch r.phase {
	case PhaseArmed:
		return r.handleArmed(ev)
	case PhaseDragging:
		return r.handleDragging(ev)
	default:
		return r.handleIdle(ev)
	}
}

func (r *Recognizer) handleIdle(ev view.MotionEvent) Decision {
	if ev.Action != view.ActionPointerDown || ev.ActionIndex != TriggerSlot {
		return Decision{}
	}
	if ev.ActionIndex >= ev.PointerCount() {
		return Decision{}
	}

	r.phase = PhaseArmed
	r.activeSlot = ev.ActionIndex
	r.activeID = ev.PointerID(ev.ActionIndex)
	r.initialDownY = ev.Y(ev.ActionIndex)

	logger.WithComponent("gesture").Debug().
		Int("slot", r.activeSlot).
		Int("pointer_id", r.activeID).
		Float64("y", r.initialDownY).
		Msg("Third pointer down, armed")
	return Decision{}
}

func (r *Recognizer) handleArmed(ev view.MotionEvent) Decision {
	switch ev.Action {
	case view.ActionMove:
		y, ok := r.trackedY(ev)
		if !ok {
			r.reset()
			return Decision{}
		}
		if y-r.initialDownY < float64(r.geom.TouchSlopPx) {
			return Decision{}
		}
		r.phase = PhaseDragging
		r.updateProgress(y)

		logger.WithComponent("gesture").Debug().
			Float64("travel", y-r.initialDownY).
			Float64("progress", r.progress).
			Msg("Touch slop exceeded, claiming stream")
		return Decision{Claimed: true, Consumed: true, Redraw: true}

	case view.ActionPointerUp:
		if r.isTracked(ev) {
			r.reset()
		}
		return Decision{}

	case view.ActionUp, view.ActionCancel, view.ActionDown:
		r.reset()
		return Decision{}
	}
	return Decision{}
}

func (r *Recognizer) handleDragging(ev view.MotionEvent) Decision {
	switch ev.Action {
	case view.ActionMove:
		y, ok := r.trackedY(ev)
		if !ok {
			return Decision{Consumed: true}
		}
		r.updateProgress(y)
		return Decision{Consumed: true, Redraw: true}

	case view.ActionPointerUp:
		if !r.isTracked(ev) {
			return Decision{Consumed: true}
		}
		return r.release()

	case view.ActionUp:
		return r.release()

	case view.ActionCancel, view.ActionDown:
		r.reset()
		return Decision{Consumed: true, Redraw: true}
	}
	return Decision{Consumed: true}
}

func (r *Recognizer) release() Decision {
	fire := r.progress == 1
	logger.WithComponent("gesture").Debug().
		Float64("progress", r.progress).
		Bool("fire", fire).
		Msg("Tracked pointer released")
	r.reset()
	return Decision{Consumed: true, Redraw: true, Fire: fire}
}

// trackedY finds the tracked pointer in ev by id
func (r *Recognizer) trackedY(ev view.MotionEvent) (float64, bool) {
	i := ev.FindPointerIndex(r.activeID)
	if i < 0 {
		return 0, false
	}
	return ev.Y(i), true
}

func (r *Recognizer) isTracked(ev view.MotionEvent) bool {
	if ev.ActionIndex < 0 || ev.ActionIndex >= ev.PointerCount() {
		return false
	}
	return ev.PointerID(ev.ActionIndex) == r.activeID
}

func (r *Recognizer) updateProgress(y float64) {
	if r.geom.TriggerDistancePx <= 0 {
		r.progress = 1
		return
	}
	p := (y - r.initialDownY) / float64(r.geom.TriggerDistancePx)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	r.progress = p
}
