package view

import (
	"fmt"
	"time"
)

// Action is the masked action of a MotionEvent
type Action int

const (
	ActionDown Action = iota
	ActionUp
	ActionMove
	ActionCancel
	ActionPointerDown
	ActionPointerUp
)

var actionNames = map[Action]string{
	ActionDown:        "DOWN",
	ActionUp:          "UP",
	ActionMove:        "MOVE",
	ActionCancel:      "CANCEL",
	ActionPointerDown: "POINTER_DOWN",
	ActionPointerUp:   "POINTER_UP",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction resolves the names produced by Action.String
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown pointer action %q", s)
}

// Pointer is one active touch point. ID stays stable for the lifetime of the
// touch while its index in MotionEvent.Pointers may change.
type Pointer struct {
	ID int     `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// MotionEvent is a multi-touch sample. For ActionPointerDown and
// ActionPointerUp, ActionIndex is the index of the pointer going down or up;
// Pointers still contains that pointer.
type MotionEvent struct {
	Action      Action
	ActionIndex int
	Pointers    []Pointer
	Time        time.Time
}

// PointerCount returns the number of pointers in the sample
func (e MotionEvent) PointerCount() int {
	return len(e.Pointers)
}

// X returns the x coordinate of the pointer at index i
func (e MotionEvent) X(i int) float64 {
	return e.Pointers[i].X
}

// Y returns the y coordinate of the pointer at index i
func (e MotionEvent) Y(i int) float64 {
	return e.Pointers[i].Y
}

// PointerID returns the id of the pointer at index i
func (e MotionEvent) PointerID(i int) int {
	return e.Pointers[i].ID
}

// FindPointerIndex returns the index of the pointer with the given id, or -1
func (e MotionEvent) FindPointerIndex(id int) int {
	for i, p := range e.Pointers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// WithAction returns a copy of the event carrying a different action
func (e MotionEvent) WithAction(a Action) MotionEvent {
	out := e
	out.Action = a
	out.Pointers = append([]Pointer(nil), e.Pointers...)
	return out
}

// ActionPoint returns the coordinates of the pointer the action refers to
func (e MotionEvent) ActionPoint() (float64, float64) {
	i := e.ActionIndex
	if i < 0 || i >= len(e.Pointers) {
		i = 0
	}
	if len(e.Pointers) == 0 {
		return 0, 0
	}
	return e.Pointers[i].X, e.Pointers[i].Y
}

func (e MotionEvent) String() string {
	return fmt.Sprintf("%s[%d] %v", e.Action, e.ActionIndex, e.Pointers)
}
