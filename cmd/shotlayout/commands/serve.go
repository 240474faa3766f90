package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/shotlayout/internal/api"
	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
	"github.com/bryanchriswhite/shotlayout/internal/output"
	"github.com/bryanchriswhite/shotlayout/internal/session"
	"github.com/bryanchriswhite/shotlayout/internal/share"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo host with the screenshot overlay",
	Long: `Start the demo host window with the screenshot overlay attached and
serve it over HTTP.

The page at / shows the live window as an MJPEG stream and forwards mouse and
touch input over a websocket. On a touch screen pull down with three fingers
to take a screenshot; elsewhere the "Simulate three finger pull" button runs
the same gesture.`,
	Example: `  # Start server on default port (8080)
  shotlayout serve

  # Start server on custom port
  shotlayout serve --port 9090

  # Start with specific config file
  shotlayout serve --config /path/to/config.yaml

  # Start with debug logging
  shotlayout serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	configMgr, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().
		Str("path", configMgr.GetConfigPath()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	launcher, err := session.NewLauncher(cfg.Share)
	if err != nil {
		return err
	}
	desktop, closer := session.NewNotifier(cfg.Share)
	defer closer.Close()

	hub := api.NewHub(launcher)
	loop := looper.New(cfg.Display.FPS)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := session.New(cfg, session.Deps{
		Frames:   loop,
		Launcher: hub,
		Notifier: notify.Multi{hub, desktop},
		Device:   share.DetectDevice(),
		Context:  ctx,
	})
	if err != nil {
		return err
	}

	stream := output.NewMJPEGOutput(output.Config{
		Width:  cfg.Display.Width,
		Height: cfg.Display.Height,
		FPS:    cfg.Display.FPS,
	})
	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	server := api.NewServer(loop, sess, configMgr, stream, hub)

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(cfg.ServerPort)
	}()

	log.Info().
		Str("web_ui", fmt.Sprintf("http://localhost:%d", cfg.ServerPort)).
		Str("api", fmt.Sprintf("http://localhost:%d/api", cfg.ServerPort)).
		Msg("shotlayout is running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info().Stringer("signal", sig).Msg("Shutting down gracefully")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown failed")
	}

	closed := make(chan struct{})
	loop.Post(func() {
		sess.Close()
		close(closed)
	})
	select {
	case <-closed:
	case <-shutdownCtx.Done():
	}

	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("UI loop stopped with error")
	}
	return runErr
}
