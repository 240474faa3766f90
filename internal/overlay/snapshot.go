package overlay

import (
	"errors"
	"image"

	"github.com/bryanchriswhite/shotlayout/internal/view"
)

// ErrSnapshotEmpty is returned when the overlay has no area to capture
var ErrSnapshotEmpty = errors.New("overlay has no area to capture")

// Snapshot is a raster of the host window without overlay decoration
type Snapshot struct {
	Image   *image.RGBA
	Density float64
}

// Bounds returns the snapshot bounds
func (s *Snapshot) Bounds() image.Rectangle {
	return s.Image.Bounds()
}

// takeSnapshot draws the decor background and the content subtree into a new
// buffer the size of the overlay. The phase is Capturing for the duration so
// no decoration can reach the buffer.
func (o *Overlay) takeSnapshot() (*Snapshot, error) {
	o.phase = PhaseCapturing
	defer func() { o.phase = PhaseIdle }()

	w, h := o.Width(), o.Height()
	if w <= 0 || h <= 0 {
		return nil, ErrSnapshotEmpty
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := view.NewCanvas(img, o.win.Density())
	// buffer origin is the overlay's top-left corner
	c.Translate(-o.Bounds().Min.X, -o.Bounds().Min.Y)
	c.Translate(-o.scroll.X, -o.scroll.Y)

	o.win.Decor().DrawBackground(c)
	o.DrawContent(c)
	o.DrawDecoration(c)

	return &Snapshot{Image: img, Density: o.win.Density()}, nil
}
