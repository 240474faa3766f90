// Package overlay installs a full window view between a host window's decor
// and its content. The overlay sees every touch before the host, recognizes
// the three finger pull-down, and turns it into a screenshot: capture, white
// flash, then the share flow.
package overlay

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/bryanchriswhite/shotlayout/internal/gesture"
	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
	"github.com/bryanchriswhite/shotlayout/internal/view"
)

var (
	// ErrAlreadyAttached is returned by Install when the overlay already has a parent
	ErrAlreadyAttached = errors.New("this overlay has been added into a view group")

	// ErrNoContent is returned by Install when the host decor has no content view
	ErrNoContent = errors.New("host decor has no content view")
)

// Phase of the capture cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCapturing
	PhaseFlashing
)

func (p Phase) String() string {
	switch p {
	case PhaseCapturing:
		return "capturing"
	case PhaseFlashing:
		return "flashing"
	default:
		return "idle"
	}
}

// Options are the visual and timing parameters of the overlay
type Options struct {
	TriggerDistanceDp int
	RingSizePx        int
	RingStrokePx      float64
	FlashDuration     time.Duration
	HoverColor        color.NRGBA
	RingColor         color.NRGBA
	FlashColor        color.NRGBA
}

// DefaultOptions returns the stock look: a dark hover tint, a white ring and
// a 200ms white flash.
func DefaultOptions() Options {
	return Options{
		TriggerDistanceDp: gesture.TriggerDistanceDp,
		RingSizePx:        96,
		RingStrokePx:      8,
		FlashDuration:     200 * time.Millisecond,
		HoverColor:        color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xDD},
		RingColor:         color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xDD},
		FlashColor:        color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xCC},
	}
}

// Sharer receives the captured image once the flash is over
type Sharer interface {
	Share(ctx context.Context, img image.Image) error
}

// Deps are the collaborators of the overlay
type Deps struct {
	Frames   looper.FrameScheduler
	Sharer   Sharer
	Notifier notify.Notifier

	// Context bounds the share flow; defaults to context.Background
	Context context.Context
}

// EventKind identifies overlay events
type EventKind int

const (
	EventProgress EventKind = iota
	EventFire
	EventCaptured
	EventFlashEnd
)

// Event is reported to the listener registered with OnEvent
type Event struct {
	Kind     EventKind
	Progress float64
	Err      error
}

// Overlay is the screenshot overlay view. Every method must be called from
// the UI loop.
type Overlay struct {
	view.Group

	win      *view.Window
	opts     Options
	frames   looper.FrameScheduler
	sharer   Sharer
	notifier notify.Notifier
	ctx      context.Context
	cancel   context.CancelFunc

	recognizer *gesture.Recognizer
	phase      Phase
	claimed    bool
	ringRect   view.RectF
	scroll     image.Point

	snapshot *Snapshot
	flash    flashAnimator
	listener func(Event)
	closed   bool
}

var (
	_ view.View             = (*Overlay)(nil)
	_ view.TouchInterceptor = (*Overlay)(nil)
	_ view.Decorator        = (*Overlay)(nil)
)

// New creates an overlay for win. It is not installed yet.
func New(win *view.Window, opts Options, deps Deps) *Overlay {
	parent := deps.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Log{}
	}

	o := &Overlay{
		win:      win,
		opts:     opts,
		frames:   deps.Frames,
		sharer:   deps.Sharer,
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
		recognizer: gesture.NewRecognizer(
			gesture.NewGeometry(opts.TriggerDistanceDp, win.Density(), win.TouchSlop()),
		),
		flash: flashAnimator{duration: opts.FlashDuration, base: opts.FlashColor},
	}
	return o
}

// Attach creates an overlay and installs it into host
func Attach(host view.Host, opts Options, deps Deps) (*Overlay, error) {
	o := New(host.Window(), opts, deps)
	if err := o.Install(host); err != nil {
		return nil, err
	}
	return o, nil
}

// Install moves the host content view into the overlay and makes the overlay
// the only child of the host decor.
func (o *Overlay) Install(host view.Host) error {
	if o.Parent() != nil {
		return ErrAlreadyAttached
	}

	decor := host.Window().Decor()
	content := decor.ChildAt(0)
	if content == nil {
		return ErrNoContent
	}

	if err := decor.Remove(content); err != nil {
		return err
	}
	if err := o.Add(content); err != nil {
		return err
	}
	if err := decor.Add(o); err != nil {
		return err
	}
	o.Layout(decor.Bounds())

	logger.WithComponent("overlay").Info().
		Str("package", host.PackageName()).
		Int("width", o.Width()).
		Int("height", o.Height()).
		Int("trigger_distance_px", o.recognizer.Geometry().TriggerDistancePx).
		Int("touch_slop_px", o.recognizer.Geometry().TouchSlopPx).
		Msg("Overlay installed")
	return nil
}

// Close abandons any running flash and releases the snapshot
func (o *Overlay) Close() {
	o.closed = true
	o.cancel()
	o.snapshot = nil
	o.recognizer.Reset()
	o.claimed = false
	o.phase = PhaseIdle
}

// OnEvent registers a listener for overlay events
func (o *Overlay) OnEvent(f func(Event)) {
	o.listener = f
}

// Phase returns the capture phase
func (o *Overlay) Phase() Phase {
	return o.phase
}

// Progress returns the gesture progress in [0,1]
func (o *Overlay) Progress() float64 {
	return o.recognizer.Progress()
}

// GestureState returns the recognizer fields
func (o *Overlay) GestureState() gesture.State {
	return o.recognizer.State()
}

// Geometry returns the distances used for recognition
func (o *Overlay) Geometry() gesture.Geometry {
	return o.recognizer.Geometry()
}

// RingRect returns the rectangle the progress ring is drawn in
func (o *Overlay) RingRect() view.RectF {
	return o.ringRect
}

// Scroll sets the content scroll offset
func (o *Overlay) Scroll(x, y int) {
	o.scroll = image.Pt(x, y)
	o.invalidate()
}

// Layout lays out the children and recomputes the trigger geometry
func (o *Overlay) Layout(bounds image.Rectangle) {
	o.Group.Layout(bounds)
	o.ringRect = view.CenteredSquare(bounds.Dx(), bounds.Dy(), o.opts.RingSizePx)
	o.ringRect.Left += float64(bounds.Min.X)
	o.ringRect.Right += float64(bounds.Min.X)
	o.ringRect.Top += float64(bounds.Min.Y)
	o.ringRect.Bottom += float64(bounds.Min.Y)
	o.recognizer.SetGeometry(gesture.NewGeometry(o.opts.TriggerDistanceDp, o.win.Density(), o.win.TouchSlop()))
}

// DispatchTouch is the entry point for every host touch. While a capture is
// running events go straight to the host content. Otherwise the recognizer
// observes the stream first; once it claims the stream the content receives
// CANCEL and nothing else until the next DOWN.
func (o *Overlay) DispatchTouch(ev view.MotionEvent) bool {
	if o.phase != PhaseIdle {
		o.Group.DispatchTouch(ev)
		return true
	}

	if ev.Action == view.ActionDown && o.claimed {
		// a new stream; whatever was claimed before is over
		o.recognizer.Reset()
		o.claimed = false
	}

	if o.claimed {
		o.apply(o.recognizer.Handle(ev))
		if !o.recognizer.Dragging() {
			o.claimed = false
		}
		return true
	}

	if o.InterceptTouch(ev) {
		o.Group.CancelTouch(ev)
		return true
	}

	o.Group.DispatchTouch(ev)
	return true
}

// InterceptTouch feeds ev to the recognizer and reports whether the overlay
// takes the stream over from its content.
func (o *Overlay) InterceptTouch(ev view.MotionEvent) bool {
	d := o.recognizer.Handle(ev)
	if d.Claimed {
		o.claimed = o.recognizer.Dragging()
	}
	o.apply(d)
	return d.Claimed
}

func (o *Overlay) apply(d gesture.Decision) {
	if d.Redraw {
		o.emit(Event{Kind: EventProgress, Progress: o.recognizer.Progress()})
		o.invalidate()
	}
	if d.Fire {
		o.claimed = false
		o.fire()
	}
}

// fire runs capture then starts the flash
func (o *Overlay) fire() {
	log := logger.WithComponent("overlay")
	log.Info().Msg("Screenshot gesture fired")
	o.emit(Event{Kind: EventFire, Progress: 1})

	shot, err := o.takeSnapshot()
	if err != nil {
		log.Error().Err(err).Msg("Screenshot failed")
		o.notifier.Notify(notify.ScreenshotFailed)
	}
	o.snapshot = shot
	o.emit(Event{Kind: EventCaptured, Err: err})

	o.startFlash()
}

func (o *Overlay) emit(ev Event) {
	if o.listener != nil {
		o.listener(ev)
	}
}

func (o *Overlay) invalidate() {
	o.win.Invalidate()
}
