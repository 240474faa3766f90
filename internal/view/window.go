package view

import (
	"image"
	"math"
)

// DefaultTouchSlopDp is the platform touch slop in density independent pixels
const DefaultTouchSlopDp = 8

// Host is an application window that can be augmented with an overlay
type Host interface {
	// Window returns the host window
	Window() *Window

	// PackageName identifies the host application
	PackageName() string
}

// Decor is the root group of a window. It paints its background before its
// children.
type Decor struct {
	Group
	Background Drawable
}

// Draw paints the background then the children
func (d *Decor) Draw(c *Canvas) {
	d.DrawBackground(c)
	d.DrawChildren(c)
}

// DrawBackground paints only the decor background
func (d *Decor) DrawBackground(c *Canvas) {
	if d.Background != nil {
		d.Background.Draw(c, d.bounds)
	}
}

// Window is the top of a view tree: it owns the decor, knows the display
// metrics and forwards input and invalidation.
type Window struct {
	decor      *Decor
	density    float64
	touchSlop  int
	invalidate func()
}

// NewWindow creates a window of the given pixel size and display density
func NewWindow(width, height int, density float64) *Window {
	if density <= 0 {
		density = 1
	}
	w := &Window{
		decor:     &Decor{},
		density:   density,
		touchSlop: int(math.Round(DefaultTouchSlopDp * density)),
	}
	w.decor.Layout(image.Rect(0, 0, width, height))
	return w
}

// Decor returns the root group
func (w *Window) Decor() *Decor {
	return w.decor
}

// Density returns the display density
func (w *Window) Density() float64 {
	return w.density
}

// TouchSlop returns the distance in pixels a touch can wander before it is a drag
func (w *Window) TouchSlop() int {
	return w.touchSlop
}

// SetTouchSlop overrides the platform touch slop
func (w *Window) SetTouchSlop(px int) {
	w.touchSlop = px
}

// Size returns the window size in pixels
func (w *Window) Size() image.Point {
	return w.decor.bounds.Size()
}

// Resize lays the tree out again at a new size
func (w *Window) Resize(width, height int) {
	w.decor.Layout(image.Rect(0, 0, width, height))
	w.Invalidate()
}

// SetContent installs v as the content view of the window
func (w *Window) SetContent(v View) error {
	return w.decor.Add(v)
}

// DispatchTouch delivers an input event to the view tree
func (w *Window) DispatchTouch(ev MotionEvent) bool {
	return w.decor.DispatchTouch(ev)
}

// OnInvalidate registers the callback run when any view requests a redraw
func (w *Window) OnInvalidate(f func()) {
	w.invalidate = f
}

// Invalidate requests a redraw of the window
func (w *Window) Invalidate() {
	if w.invalidate != nil {
		w.invalidate()
	}
}

// Render draws the whole tree into a new buffer
func (w *Window) Render() *image.RGBA {
	img := image.NewRGBA(w.decor.bounds)
	w.decor.Draw(NewCanvas(img, w.density))
	return img
}
