package share

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

// LauncherFunc adapts a function to Launcher
type LauncherFunc func(ctx context.Context, intent Intent, label string) error

// StartChooser calls f
func (f LauncherFunc) StartChooser(ctx context.Context, intent Intent, label string) error {
	return f(ctx, intent, label)
}

// LogLauncher only logs the intent
type LogLauncher struct{}

// StartChooser logs the intent
func (LogLauncher) StartChooser(_ context.Context, intent Intent, label string) error {
	logger.WithComponent("share").Info().
		Str("label", label).
		Str("action", intent.Action).
		Str("type", intent.Type).
		Strs("recipients", intent.Recipients).
		Str("subject", intent.Subject).
		Str("stream", intent.Stream).
		Msg("Share intent")
	return nil
}

// XDGEmailLauncher opens the desktop mail composer through xdg-email with
// the screenshot attached.
type XDGEmailLauncher struct {
	// Command defaults to "xdg-email"
	Command string
}

// Args builds the xdg-email command line for intent
func (l XDGEmailLauncher) Args(intent Intent) ([]string, error) {
	args := []string{"--utf8", "--subject", intent.Subject, "--body", intent.Text}
	if intent.Stream != "" {
		path, err := localPath(intent.Stream)
		if err != nil {
			return nil, err
		}
		args = append(args, "--attach", path)
	}
	return append(args, intent.Recipients...), nil
}

// StartChooser starts the mail composer without waiting for it to exit
func (l XDGEmailLauncher) StartChooser(ctx context.Context, intent Intent, label string) error {
	command := l.Command
	if command == "" {
		command = "xdg-email"
	}
	args, err := l.Args(intent)
	if err != nil {
		return err
	}

	cmd := exec.Command(command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", command, err)
	}
	logger.WithComponent("share").Info().
		Str("label", label).
		Str("command", command).
		Int("pid", cmd.Process.Pid).
		Msg("Mail composer started")

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.WithComponent("share").Warn().Err(err).Str("command", command).Msg("Mail composer exited with error")
		}
	}()
	return nil
}

// localPath converts a file URI to a path
func localPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid stream uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("stream uri %q is not a local file", uri)
	}
	return u.Path, nil
}
