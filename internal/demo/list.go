// Package demo is the sample host application: a window holding a
// scrollable list of thirty rows, with the screenshot overlay attached.
package demo

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/bryanchriswhite/shotlayout/internal/view"
)

// RowHeightDp is the height of one list row
const RowHeightDp = 48

var (
	rowColor     = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	rowAltColor  = color.RGBA{R: 0xF5, G: 0xF5, B: 0xF5, A: 0xFF}
	dividerColor = color.RGBA{R: 0xDD, G: 0xDD, B: 0xDD, A: 0xFF}
	textColor    = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xFF}
)

// List is a vertically scrolling list of text rows. A single pointer drags
// it; a second pointer freezes the scroll until the stream ends.
type List struct {
	view.Node

	items     []string
	rowHeight int
	padding   int
	scrollY   float64

	activeID int
	lastY    float64
	scrolls  bool

	invalidate func()
}

// NewList creates a list of items with rows sized for density
func NewList(items []string, density float64) *List {
	return &List{
		items:     items,
		rowHeight: int(math.Round(RowHeightDp * density)),
		padding:   int(math.Round(16 * density)),
		activeID:  -1,
	}
}

// Numbers returns "1".."n"
func Numbers(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = strconv.Itoa(i + 1)
	}
	return items
}

// ScrollY returns the scroll offset in pixels
func (l *List) ScrollY() float64 {
	return l.scrollY
}

// RowHeight returns the row height in pixels
func (l *List) RowHeight() int {
	return l.rowHeight
}

// MaxScroll is how far the list can scroll
func (l *List) MaxScroll() float64 {
	over := len(l.items)*l.rowHeight - l.Height()
	if over < 0 {
		return 0
	}
	return float64(over)
}

// OnInvalidate registers the redraw request made when the list scrolls
func (l *List) OnInvalidate(f func()) {
	l.invalidate = f
}

// ScrollTo sets the scroll offset, clamped to the content
func (l *List) ScrollTo(y float64) {
	y = math.Max(0, math.Min(y, l.MaxScroll()))
	if y == l.scrollY {
		return
	}
	l.scrollY = y
	if l.invalidate != nil {
		l.invalidate()
	}
}

// RowAt returns the index of the row under window y, or -1
func (l *List) RowAt(y float64) int {
	i := int(math.Floor((y - float64(l.Bounds().Min.Y) + l.scrollY) / float64(l.rowHeight)))
	if i < 0 || i >= len(l.items) {
		return -1
	}
	return i
}

// Layout keeps the scroll inside the new bounds
func (l *List) Layout(bounds image.Rectangle) {
	l.Node.Layout(bounds)
	l.ScrollTo(l.scrollY)
}

// Draw paints the visible rows
func (l *List) Draw(c *view.Canvas) {
	b := l.Bounds()
	first := int(l.scrollY) / l.rowHeight
	for i := first; i < len(l.items); i++ {
		top := b.Min.Y + i*l.rowHeight - int(l.scrollY)
		if top >= b.Max.Y {
			break
		}
		row := image.Rect(b.Min.X, top, b.Max.X, top+l.rowHeight).Intersect(b)
		bg := rowColor
		if i%2 == 1 {
			bg = rowAltColor
		}
		c.FillRect(row, bg)
		c.FillRect(image.Rect(b.Min.X, top+l.rowHeight-1, b.Max.X, top+l.rowHeight).Intersect(b), dividerColor)

		baseline := top + (l.rowHeight+view.TextHeight())/2 - 2
		c.DrawText(l.items[i], b.Min.X+l.padding, baseline, textColor)
	}
}

// DispatchTouch scrolls the list with the first pointer
func (l *List) DispatchTouch(ev view.MotionEvent) bool {
	switch ev.Action {
	case view.ActionDown:
		l.activeID = ev.PointerID(0)
		l.lastY = ev.Y(0)
		l.scrolls = true

	case view.ActionPointerDown:
		l.scrolls = false

	case view.ActionMove:
		if !l.scrolls {
			return true
		}
		i := ev.FindPointerIndex(l.activeID)
		if i < 0 {
			return true
		}
		y := ev.Y(i)
		l.ScrollTo(l.scrollY - (y - l.lastY))
		l.lastY = y

	case view.ActionUp, view.ActionCancel:
		l.activeID = -1
		l.scrolls = false
	}
	return true
}
