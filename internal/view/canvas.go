package view

import (
	"image"
	"image/color"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RectF is a float rectangle in window coordinates
type RectF struct {
	Left, Top, Right, Bottom float64
}

// Width returns the rectangle width
func (r RectF) Width() float64 { return r.Right - r.Left }

// Height returns the rectangle height
func (r RectF) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center
func (r RectF) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center
func (r RectF) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// CenteredSquare returns a square of the given side centered in a w×h area.
// Offsets use integer division so the square lands on whole pixels.
func CenteredSquare(w, h, side int) RectF {
	left := (w - side) / 2
	top := (h - side) / 2
	return RectF{
		Left:   float64(left),
		Top:    float64(top),
		Right:  float64(left + side),
		Bottom: float64(top + side),
	}
}

// Cap selects the shape drawn at the ends of an open stroke
type Cap int

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

// Stroke describes how a path outline is painted
type Stroke struct {
	Width float64
	Color color.Color
	Cap   Cap
}

func (s Stroke) capFunc() rasterx.CapFunc {
	switch s.Cap {
	case CapRound:
		return rasterx.RoundCap
	case CapSquare:
		return rasterx.SquareCap
	default:
		return rasterx.ButtCap
	}
}

// Drawable paints itself into a bounds rectangle
type Drawable interface {
	Draw(c *Canvas, bounds image.Rectangle)
}

// ColorDrawable fills its bounds with a solid color
type ColorDrawable struct {
	Color color.Color
}

// Draw fills bounds with the drawable color
func (d ColorDrawable) Draw(c *Canvas, bounds image.Rectangle) {
	c.FillRect(bounds, d.Color)
}

// Canvas draws onto an RGBA buffer. Coordinates passed to the drawing
// methods are shifted by the current translation.
type Canvas struct {
	img     *image.RGBA
	density float64
	offset  image.Point
	saved   []image.Point
}

// NewCanvas binds a canvas to img, tagged with the display density
func NewCanvas(img *image.RGBA, density float64) *Canvas {
	return &Canvas{img: img, density: density}
}

// Image returns the target buffer
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Density returns the density tag of the target
func (c *Canvas) Density() float64 {
	return c.density
}

// Translate shifts subsequent drawing by (dx, dy)
func (c *Canvas) Translate(dx, dy int) {
	c.offset = c.offset.Add(image.Pt(dx, dy))
}

// Offset returns the current translation
func (c *Canvas) Offset() image.Point {
	return c.offset
}

// Save pushes the current translation
func (c *Canvas) Save() {
	c.saved = append(c.saved, c.offset)
}

// Restore pops the translation pushed by the matching Save
func (c *Canvas) Restore() {
	if len(c.saved) == 0 {
		return
	}
	c.offset = c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
}

// DrawColor composites col over the whole buffer
func (c *Canvas) DrawColor(col color.Color) {
	if isTransparent(col) {
		return
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Over)
}

// FillRect composites col over r
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	if isTransparent(col) {
		return
	}
	r = r.Add(c.offset).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// DrawImage composites src with its top-left corner at at
func (c *Canvas) DrawImage(src image.Image, at image.Point) {
	sb := src.Bounds()
	dst := image.Rectangle{Min: at, Max: at.Add(sb.Size())}.Add(c.offset)
	draw.Draw(c.img, dst, src, sb.Min, draw.Over)
}

// DrawText draws a single line of text with its baseline at (x, y)
func (c *Canvas) DrawText(text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+c.offset.X, y+c.offset.Y),
	}
	d.DrawString(text)
}

// TextHeight is the line height used by DrawText
func TextHeight() int {
	return basicfont.Face7x13.Height
}

// DrawArc strokes the arc of the ellipse inscribed in oval, starting at
// startDeg and sweeping sweepDeg clockwise. 0° points at three o'clock.
func (c *Canvas) DrawArc(oval RectF, startDeg, sweepDeg float64, s Stroke) {
	if sweepDeg <= 0 || s.Width <= 0 || isTransparent(s.Color) {
		return
	}
	if sweepDeg > 360 {
		sweepDeg = 360
	}

	b := c.img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), c.img, b)
	stroker := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	stroker.SetStroke(fixed.Int26_6(s.Width*64), 4<<6, s.capFunc(), nil, rasterx.RoundGap, rasterx.Round)
	scanner.SetColor(s.Color)

	cx := oval.CenterX() + float64(c.offset.X) - float64(b.Min.X)
	cy := oval.CenterY() + float64(c.offset.Y) - float64(b.Min.Y)
	rx := oval.Width() / 2
	ry := oval.Height() / 2

	// one segment per two degrees keeps the polyline visually round
	steps := int(math.Ceil(sweepDeg / 2))
	if steps < 1 {
		steps = 1
	}
	point := func(deg float64) fixed.Point26_6 {
		rad := deg * math.Pi / 180
		return rasterx.ToFixedP(cx+rx*math.Cos(rad), cy+ry*math.Sin(rad))
	}

	stroker.Start(point(startDeg))
	for i := 1; i <= steps; i++ {
		stroker.Line(point(startDeg + sweepDeg*float64(i)/float64(steps)))
	}
	stroker.Stop(sweepDeg >= 360)
	stroker.Draw()
}

func isTransparent(col color.Color) bool {
	if col == nil {
		return true
	}
	_, _, _, a := col.RGBA()
	return a == 0
}
