// Package replay feeds a scripted pointer sequence through a session on a
// manual clock, so a whole gesture, flash and share can run without a screen.
package replay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/overlay"
	"github.com/bryanchriswhite/shotlayout/internal/session"
)

// DefaultFrame is the frame length used when a script does not set one
const DefaultFrame = 16 * time.Millisecond

// Step is one scripted action: a pointer transition or a pause
type Step struct {
	Action string  `yaml:"action"`
	ID     int     `yaml:"id,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	// Ms is the pause length of a wait step
	Ms int `yaml:"ms,omitempty"`
}

// Script is a replayable pointer sequence
type Script struct {
	FrameMs int    `yaml:"frame_ms,omitempty"`
	Steps   []Step `yaml:"steps"`
}

// Frame returns the frame length of the script
func (s *Script) Frame() time.Duration {
	if s.FrameMs <= 0 {
		return DefaultFrame
	}
	return time.Duration(s.FrameMs) * time.Millisecond
}

// Validate checks every step
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "down", "move", "up", "cancel":
		case "wait":
			if st.Ms <= 0 {
				return fmt.Errorf("step %d: wait needs a positive ms", i)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i, st.Action)
		}
	}
	return nil
}

// Load reads a YAML script
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML script
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// PullDown builds the three finger screenshot gesture: two resting pointers,
// a third dragged from y0 down by travel pixels, then every pointer lifted.
func PullDown(x, y0, travel float64) *Script {
	steps := []Step{
		{Action: "down", ID: 0, X: x - 80, Y: y0},
		{Action: "down", ID: 1, X: x, Y: y0},
		{Action: "down", ID: 2, X: x + 80, Y: y0},
	}
	const moves = 10
	for i := 1; i <= moves; i++ {
		steps = append(steps, Step{Action: "move", ID: 2, X: x + 80, Y: y0 + travel*float64(i)/moves})
	}
	steps = append(steps,
		Step{Action: "up", ID: 2},
		Step{Action: "up", ID: 1},
		Step{Action: "up", ID: 0},
	)
	return &Script{Steps: steps}
}

// Result summarizes a replay
type Result struct {
	Fires    int
	Shares   int
	Errors   []error
	Frames   int
	Duration time.Duration
}

// Run plays script against s, advancing m by one frame after every step and
// draining pending frames at the end.
func Run(s *session.Session, m *looper.Manual, script *Script) (*Result, error) {
	log := logger.WithComponent("replay")
	res := &Result{}
	start := m.Now()

	s.Overlay.OnEvent(func(ev overlay.Event) {
		switch ev.Kind {
		case overlay.EventFire:
			res.Fires++
		case overlay.EventFlashEnd:
			if ev.Err != nil {
				res.Errors = append(res.Errors, ev.Err)
			} else {
				res.Shares++
			}
		case overlay.EventCaptured:
			if ev.Err != nil {
				res.Errors = append(res.Errors, ev.Err)
			}
		}
	})
	defer s.Overlay.OnEvent(nil)

	frame := script.Frame()
	for i, st := range script.Steps {
		if st.Action == "wait" {
			wait := time.Duration(st.Ms) * time.Millisecond
			for elapsed := time.Duration(0); elapsed < wait; elapsed += frame {
				m.Frame(frame)
			}
			continue
		}
		if err := s.Pointer(st.Action, st.ID, st.X, st.Y); err != nil {
			return res, fmt.Errorf("step %d: %w", i, err)
		}
		m.Frame(frame)
	}
	m.RunFor(time.Minute, frame)

	res.Frames = m.Frames
	res.Duration = m.Now().Sub(start)
	log.Info().
		Int("steps", len(script.Steps)).
		Int("fires", res.Fires).
		Int("shares", res.Shares).
		Int("frames", res.Frames).
		Dur("duration", res.Duration).
		Msg("Replay finished")
	return res, nil
}
