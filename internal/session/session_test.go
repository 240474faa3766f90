package session

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanchriswhite/shotlayout/internal/config"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
	"github.com/bryanchriswhite/shotlayout/internal/overlay"
	"github.com/bryanchriswhite/shotlayout/internal/share"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.Display.Width = 400
	cfg.Display.Height = 800
	cfg.Display.Density = 2
	cfg.Display.TouchSlopPx = 16
	cfg.Media.Dir = t.TempDir()
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config) *Session {
	s, err := New(cfg, Deps{
		Frames:   looper.NewManual(time.Now()),
		Launcher: share.LogLauncher{},
		Notifier: &notify.Recorder{},
	})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newTestSession(t, testConfig(t))

	assert.Same(t, s.Overlay, s.Window().Decor().ChildAt(0))
	assert.Equal(t, 1, s.Window().Decor().ChildCount())
	assert.Equal(t, 300, s.Overlay.Geometry().TriggerDistancePx)
	assert.Equal(t, 16, s.Overlay.Geometry().TouchSlopPx)
	assert.Equal(t, overlay.PhaseIdle, s.Overlay.Phase())
}

func TestNew_BadColor(t *testing.T) {
	cfg := testConfig(t)
	cfg.Overlay.RingColor = "white"
	_, err := New(cfg, Deps{Frames: looper.NewManual(time.Now())})
	assert.ErrorContains(t, err, "ring_color")
}

func TestContextText(t *testing.T) {
	cfg := testConfig(t)
	cfg.Share.Context = ""
	s := newTestSession(t, cfg)
	assert.Contains(t, s.Dispatcher.Body(), "From Context: nothing more.\n")

	cfg = testConfig(t)
	cfg.Share.Context = "checkout page"
	s = newTestSession(t, cfg)
	assert.Contains(t, s.Dispatcher.Body(), "From Context: checkout page\n")
}

func TestOverlayOptions(t *testing.T) {
	opts, err := OverlayOptions(config.OverlayConfig{
		TriggerDistanceDp: 100,
		FlashDurationMs:   400,
		RingColor:         "#80FF0000",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, opts.TriggerDistanceDp)
	assert.Equal(t, 400*time.Millisecond, opts.FlashDuration)
	assert.Equal(t, color.NRGBA{R: 0xFF, A: 0x80}, opts.RingColor)
	assert.Equal(t, overlay.DefaultOptions().HoverColor, opts.HoverColor)
	assert.Equal(t, overlay.DefaultOptions().RingSizePx, opts.RingSizePx)

	_, err = OverlayOptions(config.OverlayConfig{FlashColor: "#12"})
	assert.ErrorContains(t, err, "flash_color")
}

func TestPointer(t *testing.T) {
	s := newTestSession(t, testConfig(t))

	assert.NoError(t, s.Pointer("cancel", 0, 0, 0))
	assert.Error(t, s.Pointer("hover", 0, 0, 0))
	assert.Error(t, s.Pointer("up", 3, 0, 0))

	require.NoError(t, s.Pointer("down", 0, 100, 600))
	require.NoError(t, s.Pointer("move", 0, 100, 500))
	require.NoError(t, s.Pointer("cancel", 0, 0, 0))
	assert.Equal(t, 100.0, s.Host.List().ScrollY())
}

func TestClose(t *testing.T) {
	s := newTestSession(t, testConfig(t))
	require.NoError(t, s.Pointer("down", 0, 10, 10))
	s.Close()
	assert.Equal(t, overlay.PhaseIdle, s.Overlay.Phase())
	assert.Zero(t, s.Overlay.Progress())
}

func TestNewLauncher(t *testing.T) {
	l, err := NewLauncher(config.ShareConfig{Launcher: "log"})
	require.NoError(t, err)
	assert.IsType(t, share.LogLauncher{}, l)

	l, err = NewLauncher(config.ShareConfig{})
	require.NoError(t, err)
	assert.IsType(t, share.XDGEmailLauncher{}, l)

	_, err = NewLauncher(config.ShareConfig{Launcher: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewNotifier(t *testing.T) {
	n, closer := NewNotifier(config.ShareConfig{Notifier: "log"})
	assert.IsType(t, notify.Log{}, n)
	assert.NoError(t, closer.Close())

	n, closer = NewNotifier(config.ShareConfig{Notifier: "smoke-signal"})
	assert.IsType(t, notify.Log{}, n)
	assert.NoError(t, closer.Close())
}
