// Package share persists a captured screenshot and hands it to a share
// surface as a mail-style intent carrying device metadata.
package share

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
)

const (
	// WriteExternalStorage is the permission needed to persist screenshots
	WriteExternalStorage = "android.permission.WRITE_EXTERNAL_STORAGE"

	// ActionSend is the intent action of the share flow
	ActionSend = "android.intent.action.SEND"

	DefaultMimeType     = "application/image"
	DefaultChooserLabel = "Send mail..."

	// TitleLayout formats the capture time in titles. Go layouts use plain
	// digits, so titles do not depend on the host locale.
	TitleLayout = "2006-01-02 15:04:05"

	// Description is stored with every persisted screenshot
	Description = "screenshot"
)

// DefaultRecipients receive the share intent unless configured otherwise
var DefaultRecipients = []string{"me@yanghui.name"}

var (
	// ErrPermissionDenied is returned when the host may not write media
	ErrPermissionDenied = errors.New("permission denied: " + WriteExternalStorage)

	// ErrSaveFailed is returned when the media sink did not store the image
	ErrSaveFailed = errors.New("save screenshot failed")
)

// Intent is the payload handed to the share surface
type Intent struct {
	Action     string   `json:"action" yaml:"action"`
	Type       string   `json:"type" yaml:"type"`
	Recipients []string `json:"recipients" yaml:"recipients"`
	Subject    string   `json:"subject" yaml:"subject"`
	Text       string   `json:"text" yaml:"text"`
	Stream     string   `json:"stream" yaml:"stream"`
}

// MediaSink stores an image and returns its URI
type MediaSink interface {
	Insert(ctx context.Context, img image.Image, title, description string) (string, error)
}

// PermissionChecker probes whether the host holds a permission
type PermissionChecker interface {
	Check(permission string) bool
}

// Permissions is a fixed permission table
type Permissions map[string]bool

// Check looks the permission up
func (p Permissions) Check(permission string) bool {
	return p[permission]
}

// Launcher presents an intent to the user through a chooser
type Launcher interface {
	StartChooser(ctx context.Context, intent Intent, label string) error
}

// Config configures a Dispatcher
type Config struct {
	PackageName  string
	Recipients   []string
	MimeType     string
	ChooserLabel string

	// Context returns extra text placed in the share body, supplied by the
	// host when the overlay is attached. Nil uses the package name.
	Context func() string
}

// Dispatcher runs the share flow at the end of the flash
type Dispatcher struct {
	cfg         Config
	sink        MediaSink
	permissions PermissionChecker
	launcher    Launcher
	notifier    notify.Notifier
	device      DeviceInfo
	now         func() time.Time
}

// NewDispatcher creates a dispatcher. Empty config fields take the defaults.
func NewDispatcher(cfg Config, sink MediaSink, permissions PermissionChecker, launcher Launcher, notifier notify.Notifier, device DeviceInfo) *Dispatcher {
	if len(cfg.Recipients) == 0 {
		cfg.Recipients = DefaultRecipients
	}
	if cfg.MimeType == "" {
		cfg.MimeType = DefaultMimeType
	}
	if cfg.ChooserLabel == "" {
		cfg.ChooserLabel = DefaultChooserLabel
	}
	if notifier == nil {
		notifier = notify.Log{}
	}
	return &Dispatcher{
		cfg:         cfg,
		sink:        sink,
		permissions: permissions,
		launcher:    launcher,
		notifier:    notifier,
		device:      device,
		now:         time.Now,
	}
}

// SetClock replaces the clock used for titles
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Title names a screenshot taken at t
func (d *Dispatcher) Title(t time.Time) string {
	return d.cfg.PackageName + "_" + t.Format(TitleLayout)
}

// Body builds the share text: caller context, device metadata and the
// question prompt.
func (d *Dispatcher) Body() string {
	ctxText := d.cfg.PackageName
	if d.cfg.Context != nil {
		ctxText = d.cfg.Context()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From Context: %s\n", ctxText)
	fmt.Fprintf(&b, "Device: %s\n", d.device.Device)
	fmt.Fprintf(&b, "Brand: %s\n", d.device.Brand)
	fmt.Fprintf(&b, "Manufacturer: %s\n", d.device.Manufacturer)
	fmt.Fprintf(&b, "Api Level: %s\n", d.device.APILevel)
	if d.device.Locale != "" {
		fmt.Fprintf(&b, "Locale: %s\n", d.device.Locale)
	}
	b.WriteString("\nQuestion Description: ")
	return b.String()
}

// Share persists img and launches the chooser. Permission and persistence
// failures are reported to the user through the notifier and also returned.
func (d *Dispatcher) Share(ctx context.Context, img image.Image) error {
	log := logger.WithComponent("share")

	if d.permissions == nil || !d.permissions.Check(WriteExternalStorage) {
		d.notifier.Notify(notify.PermissionDenied)
		log.Warn().Msg("Write permission missing, skipping save and share")
		return ErrPermissionDenied
	}

	title := d.Title(d.now())
	uri, err := d.sink.Insert(ctx, img, title, Description)
	if err != nil || uri == "" {
		d.notifier.Notify(notify.SaveFailed)
		if err == nil {
			return ErrSaveFailed
		}
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	log.Info().Str("uri", uri).Str("title", title).Msg("Screenshot saved")

	intent := Intent{
		Action:     ActionSend,
		Type:       d.cfg.MimeType,
		Recipients: append([]string(nil), d.cfg.Recipients...),
		Subject:    title,
		Text:       d.Body(),
		Stream:     uri,
	}
	if d.launcher == nil {
		return nil
	}
	if err := d.launcher.StartChooser(ctx, intent, d.cfg.ChooserLabel); err != nil {
		return fmt.Errorf("failed to start chooser: %w", err)
	}
	return nil
}
