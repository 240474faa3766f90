// Package session assembles a running host: the demo window, the screenshot
// overlay attached to it and the share flow behind the overlay, all built
// from the loaded configuration.
package session

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/bryanchriswhite/shotlayout/internal/config"
	"github.com/bryanchriswhite/shotlayout/internal/demo"
	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/media"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
	"github.com/bryanchriswhite/shotlayout/internal/overlay"
	"github.com/bryanchriswhite/shotlayout/internal/share"
	"github.com/bryanchriswhite/shotlayout/internal/view"
)

// Deps are the outer services a session reports to
type Deps struct {
	Frames   looper.FrameScheduler
	Launcher share.Launcher
	Notifier notify.Notifier
	Device   share.DeviceInfo
	Context  context.Context
}

// Session is one host window with its overlay. Everything except New must
// run on the UI loop.
type Session struct {
	Host       *demo.App
	Overlay    *overlay.Overlay
	Dispatcher *share.Dispatcher
	Store      *media.FileStore

	tracker *view.PointerTracker
}

// New builds the demo host and attaches the overlay
func New(cfg *config.Config, deps Deps) (*Session, error) {
	opts, err := OverlayOptions(cfg.Overlay)
	if err != nil {
		return nil, err
	}

	host, err := demo.NewApp(cfg.Share.PackageName, cfg.Display.Width, cfg.Display.Height, cfg.Display.Density, cfg.Display.TouchSlopPx)
	if err != nil {
		return nil, fmt.Errorf("failed to create host: %w", err)
	}

	store := media.NewFileStore(cfg.Media.Dir)
	dispatcher := share.NewDispatcher(share.Config{
		PackageName:  cfg.Share.PackageName,
		Recipients:   cfg.Share.Recipients,
		MimeType:     cfg.Share.MimeType,
		ChooserLabel: cfg.Share.ChooserLabel,
		Context:      contextProvider(cfg.Share.Context, host),
	}, store, media.DirPermissions{Dir: cfg.Media.Dir}, deps.Launcher, deps.Notifier, deps.Device)

	o, err := overlay.Attach(host, opts, overlay.Deps{
		Frames:   deps.Frames,
		Sharer:   dispatcher,
		Notifier: deps.Notifier,
		Context:  deps.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach overlay: %w", err)
	}

	logger.WithComponent("session").Info().
		Str("package", cfg.Share.PackageName).
		Int("width", cfg.Display.Width).
		Int("height", cfg.Display.Height).
		Float64("density", cfg.Display.Density).
		Str("media_dir", cfg.Media.Dir).
		Msg("Session ready")

	return &Session{
		Host:       host,
		Overlay:    o,
		Dispatcher: dispatcher,
		Store:      store,
		tracker:    view.NewPointerTracker(),
	}, nil
}

// contextProvider prefers configured text and falls back to the host's own
func contextProvider(text string, host *demo.App) func() string {
	if text != "" {
		return func() string { return text }
	}
	return host.Context
}

// OverlayOptions converts the overlay section of the configuration
func OverlayOptions(c config.OverlayConfig) (overlay.Options, error) {
	opts := overlay.DefaultOptions()
	if c.TriggerDistanceDp > 0 {
		opts.TriggerDistanceDp = c.TriggerDistanceDp
	}
	if c.RingSizePx > 0 {
		opts.RingSizePx = c.RingSizePx
	}
	if c.RingStrokePx > 0 {
		opts.RingStrokePx = c.RingStrokePx
	}
	if c.FlashDurationMs > 0 {
		opts.FlashDuration = c.FlashDuration()
	}

	var err error
	if opts.HoverColor, err = parseColor("hover_color", c.HoverColor, opts.HoverColor); err != nil {
		return overlay.Options{}, err
	}
	if opts.RingColor, err = parseColor("ring_color", c.RingColor, opts.RingColor); err != nil {
		return overlay.Options{}, err
	}
	if opts.FlashColor, err = parseColor("flash_color", c.FlashColor, opts.FlashColor); err != nil {
		return overlay.Options{}, err
	}
	return opts, nil
}

func parseColor(name, raw string, def color.NRGBA) (color.NRGBA, error) {
	if raw == "" {
		return def, nil
	}
	c, err := config.ParseARGB(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Window returns the host window
func (s *Session) Window() *view.Window {
	return s.Host.Window()
}

// Pointer feeds one pointer transition into the window. kind is down, move,
// up or cancel.
func (s *Session) Pointer(kind string, id int, x, y float64) error {
	var (
		ev  view.MotionEvent
		err error
	)
	switch kind {
	case "down":
		ev, err = s.tracker.Down(id, x, y)
	case "move":
		ev, err = s.tracker.Move(id, x, y)
	case "up":
		ev, err = s.tracker.Up(id)
	case "cancel":
		if s.tracker.Active() == 0 {
			return nil
		}
		ev = s.tracker.Cancel()
	default:
		return fmt.Errorf("unknown pointer action: %s", kind)
	}
	if err != nil {
		return err
	}

	logger.WithComponent("session").Trace().Stringer("event", ev).Msg("Pointer event")
	s.Window().DispatchTouch(ev)
	return nil
}

// Close tears the overlay down
func (s *Session) Close() {
	s.Overlay.Close()
}

// NewLauncher builds the launcher named in the share configuration
func NewLauncher(c config.ShareConfig) (share.Launcher, error) {
	switch c.Launcher {
	case "", "xdg-email":
		return share.XDGEmailLauncher{}, nil
	case "log":
		return share.LogLauncher{}, nil
	}
	return nil, fmt.Errorf("unknown launcher: %s (use xdg-email or log)", c.Launcher)
}

// NewNotifier builds the notifier named in the share configuration. The
// returned closer must be closed on shutdown. A failing D-Bus connection
// falls back to the log.
func NewNotifier(c config.ShareConfig) (notify.Notifier, io.Closer) {
	log := logger.WithComponent("session")
	switch c.Notifier {
	case "log":
		return notify.Log{}, nopCloser{}
	case "", "dbus":
		d, err := notify.NewDBus(c.PackageName, 3*time.Second)
		if err != nil {
			log.Warn().Err(err).Msg("Desktop notifications unavailable, logging notices")
			return notify.Log{}, nopCloser{}
		}
		return notify.Multi{d, notify.Log{}}, d
	}
	log.Warn().Str("notifier", c.Notifier).Msg("Unknown notifier, logging notices")
	return notify.Log{}, nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
