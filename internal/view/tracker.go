package view

import (
	"fmt"
	"time"
)

// PointerTracker turns per-pointer down/move/up calls into the MotionEvent
// stream a touch screen would deliver. It is used by the replay command and
// the browser bridge, which both receive touches one pointer at a time.
type PointerTracker struct {
	pointers []Pointer
	now      func() time.Time
}

// NewPointerTracker creates a tracker with no active pointers
func NewPointerTracker() *PointerTracker {
	return &PointerTracker{now: time.Now}
}

// Active returns the number of pointers currently down
func (t *PointerTracker) Active() int {
	return len(t.pointers)
}

// Down adds a pointer. The first pointer yields ActionDown, later ones
// ActionPointerDown with the new pointer's index.
func (t *PointerTracker) Down(id int, x, y float64) (MotionEvent, error) {
	if t.index(id) >= 0 {
		return MotionEvent{}, fmt.Errorf("pointer %d is already down", id)
	}
	t.pointers = append(t.pointers, Pointer{ID: id, X: x, Y: y})
	action := ActionPointerDown
	if len(t.pointers) == 1 {
		action = ActionDown
	}
	return t.event(action, len(t.pointers)-1), nil
}

// Move updates the position of a pointer
func (t *PointerTracker) Move(id int, x, y float64) (MotionEvent, error) {
	i := t.index(id)
	if i < 0 {
		return MotionEvent{}, fmt.Errorf("pointer %d is not down", id)
	}
	t.pointers[i].X = x
	t.pointers[i].Y = y
	return t.event(ActionMove, i), nil
}

// Up lifts a pointer. The last pointer yields ActionUp.
func (t *PointerTracker) Up(id int) (MotionEvent, error) {
	i := t.index(id)
	if i < 0 {
		return MotionEvent{}, fmt.Errorf("pointer %d is not down", id)
	}
	action := ActionPointerUp
	if len(t.pointers) == 1 {
		action = ActionUp
	}
	ev := t.event(action, i)
	t.pointers = append(t.pointers[:i], t.pointers[i+1:]...)
	return ev, nil
}

// Cancel aborts the whole stream
func (t *PointerTracker) Cancel() MotionEvent {
	ev := t.event(ActionCancel, 0)
	t.pointers = nil
	return ev
}

func (t *PointerTracker) index(id int) int {
	for i, p := range t.pointers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (t *PointerTracker) event(action Action, index int) MotionEvent {
	return MotionEvent{
		Action:      action,
		ActionIndex: index,
		Pointers:    append([]Pointer(nil), t.pointers...),
		Time:        t.now(),
	}
}
