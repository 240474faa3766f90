// Package notify shows short transient notices to the user.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

// Notices emitted by the overlay and the share flow
const (
	ScreenshotFailed = "screenshot failed"
	SaveFailed       = "save screenshot failed."
	PermissionDenied = "Permission Denial: requires android.permission.WRITE_EXTERNAL_STORAGE"
)

// Notifier shows a short message to the user
type Notifier interface {
	Notify(msg string)
}

// Func adapts a function to Notifier
type Func func(msg string)

// Notify calls f
func (f Func) Notify(msg string) { f(msg) }

// Log writes notices to the log
type Log struct{}

// Notify logs msg at warn level
func (Log) Notify(msg string) {
	logger.WithComponent("notify").Warn().Str("notice", msg).Msg("User notice")
}

// Multi fans a notice out to several notifiers
type Multi []Notifier

// Notify forwards msg to every notifier
func (m Multi) Notify(msg string) {
	for _, n := range m {
		if n != nil {
			n.Notify(msg)
		}
	}
}

// Recorder keeps every notice, for tests and for the server status endpoint
type Recorder struct {
	mu      sync.Mutex
	notices []string
}

// Notify records msg
func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

// Notices returns a copy of the recorded notices
func (r *Recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

// Desktop notification D-Bus constants
const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = "/org/freedesktop/Notifications"
	notifyMethod         = "org.freedesktop.Notifications.Notify"
)

// DBus shows notices as desktop notifications
type DBus struct {
	conn    *dbus.Conn
	appName string
	timeout time.Duration
}

// NewDBus connects to the session bus
func NewDBus(appName string, timeout time.Duration) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &DBus{conn: conn, appName: appName, timeout: timeout}, nil
}

// Notify sends a desktop notification. Failures are logged, never returned.
func (d *DBus) Notify(msg string) {
	obj := d.conn.Object(notificationsService, dbus.ObjectPath(notificationsPath))
	call := obj.Call(notifyMethod, 0,
		d.appName,
		uint32(0),
		"",
		d.appName,
		msg,
		[]string{},
		map[string]dbus.Variant{},
		int32(d.timeout/time.Millisecond),
	)
	if call.Err != nil {
		logger.WithComponent("notify").Warn().
			Err(call.Err).
			Str("notice", msg).
			Msg("Failed to send desktop notification")
	}
}

// Close releases the bus connection
func (d *DBus) Close() error {
	return d.conn.Close()
}
