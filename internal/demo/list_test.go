package demo

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanchriswhite/shotlayout/internal/view"
)

func TestNumbers(t *testing.T) {
	items := Numbers(30)
	require.Len(t, items, 30)
	assert.Equal(t, "1", items[0])
	assert.Equal(t, "30", items[29])
}

func TestNewApp(t *testing.T) {
	app, err := NewApp("pkg", 200, 400, 1.5, 0)
	require.NoError(t, err)
	assert.Equal(t, "pkg", app.PackageName())
	assert.Equal(t, 12, app.Window().TouchSlop())
	assert.Same(t, app.List(), app.Window().Decor().ChildAt(0))
	assert.Equal(t, image.Rect(0, 0, 200, 400), app.List().Bounds())
	assert.Equal(t, 72, app.List().RowHeight())
	assert.Equal(t, "nothing more.", app.Context())

	app, err = NewApp("pkg", 200, 400, 1.5, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, app.Window().TouchSlop())
}

func TestList_Scroll(t *testing.T) {
	l := NewList(Numbers(30), 1)
	l.Layout(image.Rect(0, 0, 100, 480))
	assert.Equal(t, float64(30*48-480), l.MaxScroll())

	tr := view.NewPointerTracker()
	send := func(ev view.MotionEvent, err error) {
		require.NoError(t, err)
		l.DispatchTouch(ev)
	}

	send(tr.Down(0, 10, 300))
	send(tr.Move(0, 10, 200))
	assert.Equal(t, 100.0, l.ScrollY())
	assert.Equal(t, 2, l.RowAt(0))

	// a second pointer freezes the list
	send(tr.Down(1, 50, 200))
	send(tr.Move(0, 10, 100))
	assert.Equal(t, 100.0, l.ScrollY())
	send(tr.Up(1))
	send(tr.Up(0))

	// clamped at both ends
	send(tr.Down(0, 10, 0))
	send(tr.Move(0, 10, 5000))
	assert.Zero(t, l.ScrollY())
	send(tr.Move(0, 10, -5000))
	assert.Equal(t, l.MaxScroll(), l.ScrollY())
	send(tr.Up(0))

	assert.Equal(t, -1, l.RowAt(10000))
}

func TestList_Draw(t *testing.T) {
	l := NewList(Numbers(3), 1)
	l.Layout(image.Rect(0, 0, 100, 200))
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))
	l.Draw(view.NewCanvas(img, 1))

	assert.Equal(t, rowColor, img.RGBAAt(90, 10))
	assert.Equal(t, rowAltColor, img.RGBAAt(90, 60))
	assert.Equal(t, dividerColor, img.RGBAAt(90, 47))
	// below the last row nothing is painted
	assert.Zero(t, img.RGBAAt(90, 190).A)
}
