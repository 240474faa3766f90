package overlay

import (
	"image/color"

	"github.com/bryanchriswhite/shotlayout/internal/view"
)

// Draw is the overlay's full draw path
func (o *Overlay) Draw(c *view.Canvas) {
	o.DispatchDraw(c)
}

// DispatchDraw draws the host content, shifted by the overlay scroll, then
// the decoration layer
func (o *Overlay) DispatchDraw(c *view.Canvas) {
	c.Save()
	c.Translate(-o.scroll.X, -o.scroll.Y)
	o.DrawContent(c)
	c.Restore()
	o.DrawDecoration(c)
}

// DrawContent draws only the host content
func (o *Overlay) DrawContent(c *view.Canvas) {
	o.DrawChildren(c)
}

// DrawDecoration draws the hover tint and progress ring, or the flash. It
// draws nothing while capturing.
func (o *Overlay) DrawDecoration(c *view.Canvas) {
	switch o.phase {
	case PhaseCapturing:
		return
	case PhaseFlashing:
		c.DrawColor(o.flash.color)
		return
	}

	p := o.recognizer.Progress()
	if p <= 0 {
		return
	}
	c.DrawColor(scaleAlpha(o.opts.HoverColor, p))
	c.DrawArc(o.ringRect, 0, 360*p, view.Stroke{
		Width: o.opts.RingStrokePx,
		Color: o.opts.RingColor,
		Cap:   view.CapRound,
	})
}

// HoverColor returns the tint drawn at progress p
func (o *Overlay) HoverColor(p float64) color.NRGBA {
	return scaleAlpha(o.opts.HoverColor, p)
}

// FlashColor returns the current flash colour
func (o *Overlay) FlashColor() color.NRGBA {
	return o.flash.color
}

func scaleAlpha(c color.NRGBA, f float64) color.NRGBA {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	c.A = uint8(float64(c.A) * f)
	return c
}
