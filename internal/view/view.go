// Package view is a small software view substrate: a tree of views that
// receive multi-touch MotionEvents and draw onto an RGBA Canvas. It plays the
// role a platform UI toolkit plays for the screenshot overlay.
package view

import (
	"errors"
	"image"
)

var (
	// ErrAlreadyAttached is returned when adding a view that already has a parent
	ErrAlreadyAttached = errors.New("view has been added into a view group")

	// ErrNotChild is returned when removing a view that is not a child of the group
	ErrNotChild = errors.New("view is not a child of this group")
)

// View is a node of the view tree
type View interface {
	// Layout assigns the view its bounds in window coordinates
	Layout(bounds image.Rectangle)

	// Bounds returns the bounds assigned by the last Layout
	Bounds() image.Rectangle

	// Draw renders the view onto the canvas
	Draw(c *Canvas)

	// DispatchTouch delivers a touch event and reports whether it was handled
	DispatchTouch(ev MotionEvent) bool

	node() *Node
}

// TouchInterceptor is implemented by groups that observe the touch stream of
// their children before the children do, and may claim it.
type TouchInterceptor interface {
	InterceptTouch(ev MotionEvent) bool
}

// Decorator is implemented by views that draw a layer over their content
type Decorator interface {
	DrawDecoration(c *Canvas)
}

// Node carries the state shared by every view. Embed it to implement View.
type Node struct {
	parent *Group
	bounds image.Rectangle
}

func (n *Node) node() *Node { return n }

// Parent returns the group holding this view, or nil
func (n *Node) Parent() *Group {
	return n.parent
}

// Bounds returns the view bounds
func (n *Node) Bounds() image.Rectangle {
	return n.bounds
}

// Layout stores the view bounds
func (n *Node) Layout(bounds image.Rectangle) {
	n.bounds = bounds
}

// Width returns the laid out width
func (n *Node) Width() int {
	return n.bounds.Dx()
}

// Height returns the laid out height
func (n *Node) Height() int {
	return n.bounds.Dy()
}

// Group is a view holding an ordered list of children, stacked like a frame:
// every child is laid out to the group's bounds and later children draw on
// top of earlier ones.
type Group struct {
	Node
	children []View

	// child receiving the current touch stream
	target View
}

// NewGroup creates an empty group
func NewGroup() *Group {
	return &Group{}
}

// Add appends a child. The child must not already have a parent.
func (g *Group) Add(v View) error {
	n := v.node()
	if n.parent != nil {
		return ErrAlreadyAttached
	}
	n.parent = g
	g.children = append(g.children, v)
	if !g.bounds.Empty() {
		v.Layout(g.bounds)
	}
	return nil
}

// Remove detaches a child
func (g *Group) Remove(v View) error {
	for i, c := range g.children {
		if c == v {
			g.children = append(g.children[:i], g.children[i+1:]...)
			v.node().parent = nil
			if g.target == v {
				g.target = nil
			}
			return nil
		}
	}
	return ErrNotChild
}

// ChildCount returns the number of children
func (g *Group) ChildCount() int {
	return len(g.children)
}

// ChildAt returns the child at index i, or nil when out of range
func (g *Group) ChildAt(i int) View {
	if i < 0 || i >= len(g.children) {
		return nil
	}
	return g.children[i]
}

// Layout stores the bounds and lays out every child to them
func (g *Group) Layout(bounds image.Rectangle) {
	g.bounds = bounds
	for _, c := range g.children {
		c.Layout(bounds)
	}
}

// Draw draws the children
func (g *Group) Draw(c *Canvas) {
	g.DrawChildren(c)
}

// DrawChildren draws every child in order
func (g *Group) DrawChildren(c *Canvas) {
	for _, child := range g.children {
		child.Draw(c)
	}
}

// DispatchTouch routes the stream that starts with a DOWN to the topmost
// child under the first pointer that accepts it, and keeps sending the rest
// of the stream there until UP or CANCEL.
func (g *Group) DispatchTouch(ev MotionEvent) bool {
	if ev.Action == ActionDown {
		g.target = nil
		x, y := ev.ActionPoint()
		pt := image.Pt(int(x), int(y))
		for i := len(g.children) - 1; i >= 0; i-- {
			child := g.children[i]
			if !pt.In(child.Bounds()) {
				continue
			}
			if child.DispatchTouch(ev) {
				g.target = child
				return true
			}
		}
		return false
	}

	target := g.target
	if ev.Action == ActionUp || ev.Action == ActionCancel {
		g.target = nil
	}
	if target == nil {
		return false
	}
	return target.DispatchTouch(ev)
}

// CancelTouch sends CANCEL to the current touch target and forgets it
func (g *Group) CancelTouch(ev MotionEvent) {
	if g.target == nil {
		return
	}
	target := g.target
	g.target = nil
	target.DispatchTouch(ev.WithAction(ActionCancel))
}
