package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanchriswhite/shotlayout/internal/config"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
	"github.com/bryanchriswhite/shotlayout/internal/session"
	"github.com/bryanchriswhite/shotlayout/internal/share"
)

type launcher struct {
	intents []share.Intent
}

func (l *launcher) StartChooser(_ context.Context, intent share.Intent, _ string) error {
	l.intents = append(l.intents, intent)
	return nil
}

func newSession(t *testing.T, mediaDir string) (*session.Session, *looper.Manual, *launcher, *notify.Recorder) {
	cfg := config.Defaults()
	cfg.Display.Width = 400
	cfg.Display.Height = 800
	cfg.Display.Density = 2
	cfg.Display.TouchSlopPx = 16
	cfg.Media.Dir = mediaDir

	m := looper.NewManual(time.Date(2024, 3, 9, 17, 5, 2, 0, time.UTC))
	l := &launcher{}
	n := &notify.Recorder{}
	s, err := session.New(cfg, session.Deps{Frames: m, Launcher: l, Notifier: n})
	require.NoError(t, err)
	return s, m, l, n
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`
frame_ms: 10
steps:
  - {action: down, id: 0, x: 10, y: 20}
  - {action: wait, ms: 100}
  - {action: up, id: 0}
`))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, s.Frame())
	require.Len(t, s.Steps, 3)
	assert.Equal(t, Step{Action: "down", X: 10, Y: 20}, s.Steps[0])
	assert.Equal(t, 100, s.Steps[1].Ms)

	for name, doc := range map[string]string{
		"empty":        "steps: []",
		"bad action":   "steps: [{action: jump}]",
		"zero wait":    "steps: [{action: wait}]",
		"invalid yaml": "steps: [",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: [{action: cancel}]"), 0644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultFrame, s.Frame())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_PullDownSharesScreenshot(t *testing.T) {
	dir := t.TempDir()
	s, m, l, n := newSession(t, dir)

	res, err := Run(s, m, PullDown(200, 100, 350))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fires)
	assert.Equal(t, 1, res.Shares)
	assert.Empty(t, res.Errors)
	assert.GreaterOrEqual(t, res.Duration, 200*time.Millisecond)

	require.Len(t, l.intents, 1)
	intent := l.intents[0]
	assert.Regexp(t, `^me\.yugy\.github\.screenshotlayout_\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, intent.Subject)
	assert.Contains(t, intent.Text, "From Context: nothing more.\n")
	assert.Empty(t, n.Notices())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_ShortPullDoesNotFire(t *testing.T) {
	s, m, l, _ := newSession(t, t.TempDir())

	res, err := Run(s, m, PullDown(200, 100, 299))
	require.NoError(t, err)
	assert.Zero(t, res.Fires)
	assert.Empty(t, l.intents)
}

func TestRun_SinglePointerScrollsList(t *testing.T) {
	s, m, _, _ := newSession(t, t.TempDir())

	res, err := Run(s, m, &Script{Steps: []Step{
		{Action: "down", ID: 0, X: 100, Y: 600},
		{Action: "move", ID: 0, X: 100, Y: 400},
		{Action: "move", ID: 0, X: 100, Y: 300},
		{Action: "up", ID: 0},
	}})
	require.NoError(t, err)
	assert.Zero(t, res.Fires)
	assert.Equal(t, 300.0, s.Host.List().ScrollY())
}

func TestRun_BadStep(t *testing.T) {
	s, m, _, _ := newSession(t, t.TempDir())
	_, err := Run(s, m, &Script{Steps: []Step{{Action: "up", ID: 4}}})
	assert.ErrorContains(t, err, "step 0")
}
