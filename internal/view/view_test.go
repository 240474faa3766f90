package view

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	Node
	accept bool
	events []Action
}

func (r *recorder) Draw(c *Canvas) {}

func (r *recorder) DispatchTouch(ev MotionEvent) bool {
	r.events = append(r.events, ev.Action)
	return r.accept
}

func down(x, y float64) MotionEvent {
	return MotionEvent{Action: ActionDown, Pointers: []Pointer{{ID: 0, X: x, Y: y}}}
}

func TestGroup_AddRejectsParentedView(t *testing.T) {
	g1, g2 := NewGroup(), NewGroup()
	child := &recorder{}

	require.NoError(t, g1.Add(child))
	assert.ErrorIs(t, g2.Add(child), ErrAlreadyAttached)
	assert.Equal(t, g1, child.Parent())

	require.NoError(t, g1.Remove(child))
	assert.Nil(t, child.Parent())
	assert.NoError(t, g2.Add(child))
	assert.ErrorIs(t, g1.Remove(child), ErrNotChild)
}

func TestGroup_TouchTargetKeepsStream(t *testing.T) {
	g := NewGroup()
	g.Layout(image.Rect(0, 0, 100, 100))
	below := &recorder{accept: true}
	above := &recorder{accept: true}
	require.NoError(t, g.Add(below))
	require.NoError(t, g.Add(above))

	assert.True(t, g.DispatchTouch(down(10, 10)))
	move := down(10, 50).WithAction(ActionMove)
	assert.True(t, g.DispatchTouch(move))
	assert.True(t, g.DispatchTouch(move.WithAction(ActionUp)))
	assert.False(t, g.DispatchTouch(move))

	assert.Equal(t, []Action{ActionDown, ActionMove, ActionUp}, above.events)
	assert.Empty(t, below.events)
}

func TestGroup_CancelTouch(t *testing.T) {
	g := NewGroup()
	g.Layout(image.Rect(0, 0, 100, 100))
	child := &recorder{accept: true}
	require.NoError(t, g.Add(child))

	g.DispatchTouch(down(1, 1))
	g.CancelTouch(down(1, 1))
	g.CancelTouch(down(1, 1))

	assert.Equal(t, []Action{ActionDown, ActionCancel}, child.events)
}

func TestMotionEvent_Helpers(t *testing.T) {
	ev := MotionEvent{
		Action:      ActionPointerDown,
		ActionIndex: 1,
		Pointers:    []Pointer{{ID: 4, Y: 1}, {ID: 7, X: 3, Y: 2}},
	}
	assert.Equal(t, 2, ev.PointerCount())
	assert.Equal(t, 1, ev.FindPointerIndex(7))
	assert.Equal(t, -1, ev.FindPointerIndex(9))
	x, y := ev.ActionPoint()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 2.0, y)

	cp := ev.WithAction(ActionCancel)
	cp.Pointers[0].Y = 100
	assert.Equal(t, 1.0, ev.Y(0))

	a, err := ParseAction("POINTER_UP")
	require.NoError(t, err)
	assert.Equal(t, ActionPointerUp, a)
	_, err = ParseAction("HOVER")
	assert.Error(t, err)
}

func TestCanvas_DrawColorAndTranslate(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := NewCanvas(img, 2)
	assert.Equal(t, 2.0, c.Density())

	c.Save()
	c.Translate(2, 2)
	c.FillRect(image.Rect(0, 0, 1, 1), color.RGBA{255, 0, 0, 255})
	c.Restore()
	assert.Equal(t, image.Point{}, c.Offset())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))

	c.DrawColor(color.NRGBA{0, 0, 0, 0})
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
	c.DrawColor(color.RGBA{0, 0, 255, 255})
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(3, 3))
}

func TestCanvas_DrawArc(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	c := NewCanvas(img, 1)
	ring := CenteredSquare(100, 100, 60)
	assert.Equal(t, RectF{Left: 20, Top: 20, Right: 80, Bottom: 80}, ring)

	stroke := Stroke{Width: 6, Color: color.RGBA{255, 255, 255, 255}, Cap: CapRound}

	c.DrawArc(ring, 0, 0, stroke)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(80, 50))

	// quarter sweep clockwise from three o'clock covers the bottom right
	c.DrawArc(ring, 0, 90, stroke)
	assert.NotZero(t, img.RGBAAt(80, 50).A)
	assert.NotZero(t, img.RGBAAt(71, 71).A)
	assert.Zero(t, img.RGBAAt(29, 29).A)
	assert.Zero(t, img.RGBAAt(20, 50).A)
}

func TestWindow_RenderPaintsDecorBackground(t *testing.T) {
	w := NewWindow(8, 6, 2)
	assert.Equal(t, 16, w.TouchSlop())
	w.Decor().Background = ColorDrawable{Color: color.RGBA{10, 20, 30, 255}}

	invalidated := 0
	w.OnInvalidate(func() { invalidated++ })
	w.Resize(10, 6)
	assert.Equal(t, 1, invalidated)

	img := w.Render()
	assert.Equal(t, image.Rect(0, 0, 10, 6), img.Bounds())
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(9, 5))
}
