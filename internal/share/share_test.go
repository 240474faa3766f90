package share

import (
	"context"
	"errors"
	"image"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/bryanchriswhite/shotlayout/internal/notify"
)

type fakeSink struct {
	uri    string
	err    error
	titles []string
	descs  []string
}

func (s *fakeSink) Insert(_ context.Context, _ image.Image, title, description string) (string, error) {
	s.titles = append(s.titles, title)
	s.descs = append(s.descs, description)
	return s.uri, s.err
}

type fakeLauncher struct {
	intents []Intent
	labels  []string
}

func (l *fakeLauncher) StartChooser(_ context.Context, intent Intent, label string) error {
	l.intents = append(l.intents, intent)
	l.labels = append(l.labels, label)
	return nil
}

var testDevice = DeviceInfo{Device: "walleye", Brand: "google", Manufacturer: "Google", APILevel: "28"}

func newTestDispatcher(sink MediaSink, perms PermissionChecker) (*Dispatcher, *fakeLauncher, *notify.Recorder) {
	launcher := &fakeLauncher{}
	notices := &notify.Recorder{}
	d := NewDispatcher(Config{PackageName: "me.yugy.github.screenshotlayout"}, sink, perms, launcher, notices, testDevice)
	d.SetClock(func() time.Time { return time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC) })
	return d, launcher, notices
}

func TestDispatcher_Title(t *testing.T) {
	d, _, _ := newTestDispatcher(&fakeSink{}, Permissions{})
	title := d.Title(time.Date(2024, 3, 9, 17, 5, 2, 0, time.UTC))
	assert.Equal(t, "me.yugy.github.screenshotlayout_2024-03-09 17:05:02", title)
	assert.Regexp(t, regexp.MustCompile(`^me\.yugy\.github\.screenshotlayout_\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`), title)
}

func TestDispatcher_ShareLaunchesChooser(t *testing.T) {
	sink := &fakeSink{uri: "file:///tmp/shot.png"}
	d, launcher, notices := newTestDispatcher(sink, Permissions{WriteExternalStorage: true})

	require.NoError(t, d.Share(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1))))

	assert.Equal(t, []string{"me.yugy.github.screenshotlayout_2024-03-09 07:05:02"}, sink.titles)
	assert.Equal(t, []string{Description}, sink.descs)
	require.Len(t, launcher.intents, 1)
	intent := launcher.intents[0]
	assert.Equal(t, ActionSend, intent.Action)
	assert.Equal(t, "application/image", intent.Type)
	assert.Equal(t, []string{"me@yanghui.name"}, intent.Recipients)
	assert.Equal(t, sink.titles[0], intent.Subject)
	assert.Equal(t, "file:///tmp/shot.png", intent.Stream)
	assert.Equal(t, "From Context: me.yugy.github.screenshotlayout\n"+
		"Device: walleye\n"+
		"Brand: google\n"+
		"Manufacturer: Google\n"+
		"Api Level: 28\n"+
		"\n"+
		"Question Description: ", intent.Text)
	assert.Equal(t, []string{"Send mail..."}, launcher.labels)
	assert.Empty(t, notices.Notices())
}

func TestDispatcher_PermissionDenied(t *testing.T) {
	sink := &fakeSink{uri: "file:///tmp/shot.png"}
	d, launcher, notices := newTestDispatcher(sink, Permissions{})

	err := d.Share(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, sink.titles)
	assert.Empty(t, launcher.intents)
	assert.Equal(t, []string{"Permission Denial: requires android.permission.WRITE_EXTERNAL_STORAGE"}, notices.Notices())
}

func TestDispatcher_SaveFailed(t *testing.T) {
	for name, sink := range map[string]*fakeSink{
		"empty uri": {},
		"error":     {err: errors.New("disk full")},
	} {
		t.Run(name, func(t *testing.T) {
			d, launcher, notices := newTestDispatcher(sink, Permissions{WriteExternalStorage: true})
			err := d.Share(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
			assert.ErrorIs(t, err, ErrSaveFailed)
			assert.Empty(t, launcher.intents)
			assert.Equal(t, []string{"save screenshot failed."}, notices.Notices())
		})
	}
}

func TestDispatcher_ContextAndLocale(t *testing.T) {
	device := testDevice
	device.Locale = "de-CH"
	d := NewDispatcher(Config{
		PackageName: "pkg",
		Context:     func() string { return "nothing more." },
	}, &fakeSink{}, nil, nil, nil, device)

	body := d.Body()
	assert.Contains(t, body, "From Context: nothing more.\n")
	assert.Contains(t, body, "Api Level: 28\nLocale: de-CH\n\nQuestion Description: ")
}

func TestParsePOSIXLocale(t *testing.T) {
	tag, ok := parsePOSIXLocale("de_CH.UTF-8@euro")
	assert.True(t, ok)
	assert.Equal(t, language.MustParse("de-CH"), tag)

	for _, v := range []string{"", "C", "POSIX", "C.UTF-8", "!!"} {
		_, ok := parsePOSIXLocale(v)
		assert.False(t, ok, v)
	}
}

func TestXDGEmailLauncher_Args(t *testing.T) {
	args, err := XDGEmailLauncher{}.Args(Intent{
		Recipients: []string{"me@yanghui.name"},
		Subject:    "pkg_2024-01-01 00:00:00",
		Text:       "body",
		Stream:     "file:///tmp/a%20b.png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--utf8", "--subject", "pkg_2024-01-01 00:00:00", "--body", "body",
		"--attach", "/tmp/a b.png", "me@yanghui.name",
	}, args)

	_, err = XDGEmailLauncher{}.Args(Intent{Stream: "content://media/1"})
	assert.Error(t, err)
}
