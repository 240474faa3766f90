package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/shotlayout/internal/logger"
)

// Config represents the application configuration
type Config struct {
	Display    DisplayConfig `json:"display" yaml:"display"`
	Overlay    OverlayConfig `json:"overlay" yaml:"overlay"`
	Share      ShareConfig   `json:"share" yaml:"share"`
	Media      MediaConfig   `json:"media" yaml:"media"`
	ServerPort int           `json:"server_port" yaml:"server_port"`
	LogLevel   string        `json:"log_level" yaml:"log_level"`
}

// DisplayConfig describes the simulated screen the host window lives on
type DisplayConfig struct {
	Width   int     `json:"width" yaml:"width"`
	Height  int     `json:"height" yaml:"height"`
	Density float64 `json:"density" yaml:"density"`
	// TouchSlopPx overrides the platform touch slop when > 0
	TouchSlopPx int `json:"touch_slop_px" yaml:"touch_slop_px"`
	FPS         int `json:"fps" yaml:"fps"`
}

// OverlayConfig represents overlay configuration. Colours are #AARRGGBB.
type OverlayConfig struct {
	TriggerDistanceDp int     `json:"trigger_distance_dp" yaml:"trigger_distance_dp"`
	RingSizePx        int     `json:"ring_size_px" yaml:"ring_size_px"`
	RingStrokePx      float64 `json:"ring_stroke_px" yaml:"ring_stroke_px"`
	FlashDurationMs   int     `json:"flash_duration_ms" yaml:"flash_duration_ms"`
	HoverColor        string  `json:"hover_color" yaml:"hover_color"`
	RingColor         string  `json:"ring_color" yaml:"ring_color"`
	FlashColor        string  `json:"flash_color" yaml:"flash_color"`
}

// FlashDuration returns the flash length
func (o OverlayConfig) FlashDuration() time.Duration {
	return time.Duration(o.FlashDurationMs) * time.Millisecond
}

// ShareConfig controls the share flow
type ShareConfig struct {
	PackageName  string   `json:"package_name" yaml:"package_name"`
	Recipients   []string `json:"recipients" yaml:"recipients"`
	MimeType     string   `json:"mime_type" yaml:"mime_type"`
	ChooserLabel string   `json:"chooser_label" yaml:"chooser_label"`
	// Context is appended to the mail body as "From Context"
	Context string `json:"context" yaml:"context"`
	// Launcher is "xdg-email" or "log"
	Launcher string `json:"launcher" yaml:"launcher"`
	// Notifier is "dbus" or "log"
	Notifier string `json:"notifier" yaml:"notifier"`
}

// MediaConfig is where screenshots are written
type MediaConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns ~/.config/shotlayout/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "shotlayout", "config.yaml"), nil
}

// NewManager loads configFile, or the default path when empty. A missing
// file is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		actualConfigPath = p
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = Defaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("package", m.config.Share.PackageName).
		Msg("Config loaded")

	return m, nil
}

// Defaults returns the default configuration
func Defaults() *Config {
	mediaDir := "Screenshots"
	if home, err := os.UserHomeDir(); err == nil {
		mediaDir = filepath.Join(home, "Pictures", "Screenshots")
	}

	return &Config{
		Display: DisplayConfig{
			Width:   480,
			Height:  800,
			Density: 2.0,
			FPS:     60,
		},
		Overlay: OverlayConfig{
			TriggerDistanceDp: 150,
			RingSizePx:        96,
			RingStrokePx:      8,
			FlashDurationMs:   200,
			HoverColor:        "#DD000000",
			RingColor:         "#DDFFFFFF",
			FlashColor:        "#CCFFFFFF",
		},
		Share: ShareConfig{
			PackageName:  "me.yugy.github.screenshotlayout",
			Recipients:   []string{"me@yanghui.name"},
			MimeType:     "application/image",
			ChooserLabel: "Send mail...",
			Context:      "nothing more.",
			Launcher:     "xdg-email",
			Notifier:     "dbus",
		},
		Media: MediaConfig{
			Dir: mediaDir,
		},
		ServerPort: 8080,
		LogLevel:   "info",
	}
}

// load reads the configuration from disk. Fields missing from the file keep
// their defaults.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Validate checks ranges and colour syntax
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Display.Density <= 0 {
		return fmt.Errorf("display density must be positive, got %v", c.Display.Density)
	}
	if c.Overlay.TriggerDistanceDp <= 0 {
		return fmt.Errorf("trigger distance must be positive, got %d", c.Overlay.TriggerDistanceDp)
	}
	if c.Overlay.FlashDurationMs < 0 {
		return fmt.Errorf("flash duration must not be negative, got %d", c.Overlay.FlashDurationMs)
	}
	for name, v := range map[string]string{
		"hover_color": c.Overlay.HoverColor,
		"ring_color":  c.Overlay.RingColor,
		"flash_color": c.Overlay.FlashColor,
	} {
		if _, err := ParseARGB(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}

	cfg := *m.config
	cfg.Share.Recipients = append([]string(nil), m.config.Share.Recipients...)
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = Defaults()
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Saving config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("config_dir", configDir).
			Msg("Failed to create config directory")
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config saved successfully")
	return nil
}

// Update replaces the entire configuration
func (m *Manager) Update(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

// Set assigns a single value addressed by its dotted yaml key, e.g.
// "overlay.ring_color" or "server_port", and saves.
func (m *Manager) Set(key, value string) error {
	cfg := m.Get()
	if err := setField(cfg, key, value); err != nil {
		return err
	}
	return m.Update(cfg)
}

// Value returns a single value addressed by its dotted yaml key
func (m *Manager) Value(key string) (string, error) {
	cfg := m.Get()
	for _, f := range fields(cfg) {
		if f.key == key {
			return f.get(), nil
		}
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Keys lists every settable key
func Keys() []string {
	var keys []string
	for _, f := range fields(Defaults()) {
		keys = append(keys, f.key)
	}
	return keys
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetConfigDir returns the config directory path
func (m *Manager) GetConfigDir() string {
	return filepath.Dir(m.configPath)
}

type field struct {
	key string
	get func() string
	set func(string) error
}

func intField(key string, p *int) field {
	return field{
		key: key,
		get: func() string { return strconv.Itoa(*p) },
		set: func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %s", key, v)
			}
			*p = n
			return nil
		},
	}
}

func floatField(key string, p *float64) field {
	return field{
		key: key,
		get: func() string { return strconv.FormatFloat(*p, 'f', -1, 64) },
		set: func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number for %s: %s", key, v)
			}
			*p = f
			return nil
		},
	}
}

func stringField(key string, p *string) field {
	return field{
		key: key,
		get: func() string { return *p },
		set: func(v string) error { *p = v; return nil },
	}
}

func fields(c *Config) []field {
	return []field{
		intField("display.width", &c.Display.Width),
		intField("display.height", &c.Display.Height),
		floatField("display.density", &c.Display.Density),
		intField("display.touch_slop_px", &c.Display.TouchSlopPx),
		intField("display.fps", &c.Display.FPS),
		intField("overlay.trigger_distance_dp", &c.Overlay.TriggerDistanceDp),
		intField("overlay.ring_size_px", &c.Overlay.RingSizePx),
		floatField("overlay.ring_stroke_px", &c.Overlay.RingStrokePx),
		intField("overlay.flash_duration_ms", &c.Overlay.FlashDurationMs),
		stringField("overlay.hover_color", &c.Overlay.HoverColor),
		stringField("overlay.ring_color", &c.Overlay.RingColor),
		stringField("overlay.flash_color", &c.Overlay.FlashColor),
		stringField("share.package_name", &c.Share.PackageName),
		{
			key: "share.recipients",
			get: func() string { return strings.Join(c.Share.Recipients, ",") },
			set: func(v string) error {
				c.Share.Recipients = nil
				for _, r := range strings.Split(v, ",") {
					if r = strings.TrimSpace(r); r != "" {
						c.Share.Recipients = append(c.Share.Recipients, r)
					}
				}
				return nil
			},
		},
		stringField("share.mime_type", &c.Share.MimeType),
		stringField("share.chooser_label", &c.Share.ChooserLabel),
		stringField("share.context", &c.Share.Context),
		stringField("share.launcher", &c.Share.Launcher),
		stringField("share.notifier", &c.Share.Notifier),
		stringField("media.dir", &c.Media.Dir),
		intField("server_port", &c.ServerPort),
		{
			key: "log_level",
			get: func() string { return c.LogLevel },
			set: func(v string) error {
				switch v {
				case "trace", "debug", "info", "warn", "error":
					c.LogLevel = v
					return nil
				}
				return fmt.Errorf("invalid log level: %s (use: trace, debug, info, warn, error)", v)
			},
		},
	}
}

func setField(c *Config, key, value string) error {
	for _, f := range fields(c) {
		if f.key == key {
			return f.set(value)
		}
	}
	return fmt.Errorf("unknown config key: %s", key)
}

// ParseARGB parses #AARRGGBB (or #RRGGBB, fully opaque) into a
// non-premultiplied colour.
func ParseARGB(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex = "FF" + hex
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: want #AARRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}
