// Package settings loads the host node's YAML settings and validates
// composition documents against their JSON schema.
package settings

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sensornode-go/services/config"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration notation.
func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

func (d Duration) Duration() time.Duration { return time.Duration(d) }

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTP struct {
	Listen string `yaml:"listen"`
}

type Watchdog struct {
	Timeout Duration `yaml:"timeout"`
}

// Settings configures a host node run.
type Settings struct {
	// Device selects the embedded composition when Composition is empty.
	Device string `yaml:"device"`
	// Composition is a path to a composition document.
	Composition    string   `yaml:"composition"`
	StatusInterval Duration `yaml:"status_interval"`
	TickInterval   Duration `yaml:"tick_interval"`
	Log            Log      `yaml:"log"`
	HTTP           HTTP     `yaml:"http"`
	Watchdog       Watchdog `yaml:"watchdog"`
	// ResetHook is a command line run on every platform reset.
	ResetHook string `yaml:"reset_hook"`
}

// Defaults are applied for every field left empty.
func Defaults() Settings {
	return Settings{
		Device:         "host-demo",
		StatusInterval: Duration(60 * time.Second),
		TickInterval:   Duration(time.Second),
		Log:            Log{Level: "info", Format: "text"},
		HTTP:           HTTP{Listen: ":9102"},
	}
}

// Load reads and parses a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML settings over the defaults.
func Parse(data []byte) (*Settings, error) {
	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.Device == "" && s.Composition == "" {
		return fmt.Errorf("one of device or composition is required")
	}
	if s.StatusInterval.Duration() < 0 || s.TickInterval.Duration() < 0 || s.Watchdog.Timeout.Duration() < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if _, err := parseLevel(s.Log.Level); err != nil {
		return err
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the log section.
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := parseLevel(s.Log.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if s.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// CompositionText returns the composition file's contents, or the
// device's embedded composition when no file is set.
func (s *Settings) CompositionText() ([]byte, error) {
	if s.Composition != "" {
		b, err := os.ReadFile(s.Composition)
		if err != nil {
			return nil, fmt.Errorf("failed to read composition: %w", err)
		}
		return b, nil
	}
	return config.Composition(s.Device)
}
