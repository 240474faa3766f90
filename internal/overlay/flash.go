package overlay

import (
	"image/color"
	"time"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

// flashAnimator holds the state of the white wash played after a capture
type flashAnimator struct {
	duration time.Duration
	base     color.NRGBA

	start time.Time
	t     float64
	color color.NRGBA
}

// at returns the flash colour at interpolated time t
func (f *flashAnimator) at(t float64) color.NRGBA {
	return scaleAlpha(f.base, 1-t)
}

func (f *flashAnimator) progress(now time.Time) float64 {
	if f.duration <= 0 {
		return 1
	}
	t := float64(now.Sub(f.start)) / float64(f.duration)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t
}

// startFlash enters the Flashing phase and schedules the first frame
func (o *Overlay) startFlash() {
	o.phase = PhaseFlashing
	o.flash.t = 0
	o.flash.color = o.flash.at(0)
	o.invalidate()

	if o.frames == nil {
		o.finishFlash()
		return
	}
	o.flash.start = o.frames.Now()
	o.frames.PostFrame(o.onFlashFrame)
}

func (o *Overlay) onFlashFrame(now time.Time) {
	if o.closed || o.phase != PhaseFlashing {
		return
	}

	o.flash.t = o.flash.progress(now)
	o.flash.color = o.flash.at(o.flash.t)
	o.invalidate()

	if o.flash.t >= 1 {
		o.finishFlash()
		return
	}
	o.frames.PostFrame(o.onFlashFrame)
}

// finishFlash hands the snapshot to the sharer, releases it and lets the
// recognizer accept input again.
func (o *Overlay) finishFlash() {
	log := logger.WithComponent("overlay")

	shot := o.snapshot
	o.snapshot = nil
	o.phase = PhaseIdle
	o.flash.color = color.NRGBA{}
	o.invalidate()

	var err error
	switch {
	case shot == nil:
		log.Warn().Msg("No snapshot to share")
	case o.sharer == nil:
		log.Warn().Msg("No share dispatcher configured")
	default:
		err = o.sharer.Share(o.ctx, shot.Image)
		if err != nil {
			log.Warn().Err(err).Msg("Share flow ended without a chooser")
		}
	}
	o.emit(Event{Kind: EventFlashEnd, Err: err})
}
