package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/notify"
	"github.com/bryanchriswhite/shotlayout/internal/replay"
	"github.com/bryanchriswhite/shotlayout/internal/session"
	"github.com/bryanchriswhite/shotlayout/internal/share"
)

var (
	replayPullDown bool
	replayLaunch   bool
	replayOut      string
)

var replayCmd = &cobra.Command{
	Use:   "replay [SCRIPT]",
	Short: "Replay a pointer script against the demo host",
	Long: `Run a scripted pointer sequence through the demo host and its overlay on a
simulated clock. No display is needed; a fired gesture still writes the PNG
to the media directory and runs the share flow.

A script is YAML:

  frame_ms: 16
  steps:
    - {action: down, id: 0, x: 160, y: 100}
    - {action: move, id: 0, x: 160, y: 400}
    - {action: wait, ms: 250}
    - {action: up, id: 0}`,
	Example: `  # Run the built-in three finger pull-down
  shotlayout replay --pulldown

  # Run a script and save the last rendered frame
  shotlayout replay gesture.yaml --out frame.png

  # Open the mail composer instead of logging the share
  shotlayout replay --pulldown --launch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayPullDown, "pulldown", false, "replay the built-in three finger pull-down")
	replayCmd.Flags().BoolVar(&replayLaunch, "launch", false, "use the configured launcher instead of logging the share")
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "save the final rendered frame to this image file")
}

func runReplay(cmd *cobra.Command, args []string) error {
	script, err := replayScript(args)
	if err != nil {
		return err
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var launcher share.Launcher = share.LogLauncher{}
	if replayLaunch {
		if launcher, err = session.NewLauncher(cfg.Share); err != nil {
			return err
		}
	}

	clock := looper.NewManual(time.Now())
	sess, err := session.New(cfg, session.Deps{
		Frames:   clock,
		Launcher: launcher,
		Notifier: notify.Log{},
		Device:   share.DetectDevice(),
		Context:  context.Background(),
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := replay.Run(sess, clock, script)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "steps:    %d\n", len(script.Steps))
	fmt.Fprintf(out, "fires:    %d\n", res.Fires)
	fmt.Fprintf(out, "shares:   %d\n", res.Shares)
	fmt.Fprintf(out, "frames:   %d\n", res.Frames)
	fmt.Fprintf(out, "duration: %s\n", res.Duration)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "error:    %v\n", e)
	}

	if replayOut != "" {
		if err := imaging.Save(sess.Window().Render(), replayOut); err != nil {
			return fmt.Errorf("failed to save frame: %w", err)
		}
		fmt.Fprintf(out, "frame:    %s\n", replayOut)
	}
	return nil
}

func replayScript(args []string) (*replay.Script, error) {
	switch {
	case replayPullDown && len(args) > 0:
		return nil, fmt.Errorf("use either a script file or --pulldown, not both")
	case replayPullDown:
		_, cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		w, h := float64(cfg.Display.Width), float64(cfg.Display.Height)
		y0 := h / 8
		travel := float64(cfg.Overlay.TriggerDistanceDp)*cfg.Display.Density + 20
		return replay.PullDown(w/2, y0, min(travel, h-y0-1)), nil
	case len(args) == 1:
		return replay.Load(args[0])
	}
	return nil, fmt.Errorf("a script file or --pulldown is required")
}
