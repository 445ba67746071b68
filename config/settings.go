package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSettings []byte

var ErrInvalidSettings = errors.New("config: invalid settings")

type ApplicationMode string

const (
	ModeDeveloper ApplicationMode = "developer"
	ModeDebug     ApplicationMode = "debug"
	ModeRelease   ApplicationMode = "release"
)

// TimerSpec declares a timed action created at startup.
type TimerSpec struct {
	Name     string  `yaml:"name"`
	Interval float64 `yaml:"interval"`
	Once     bool    `yaml:"once"`
	// Emit names an event pushed on every firing.
	Emit string `yaml:"emit"`
	// Script is tengo source run on every firing.
	Script string `yaml:"script"`
	// ScriptPath is read into Script on Load, relative to the settings file.
	ScriptPath string `yaml:"script_path"`
}

// Settings are read once before the game starts. Changing them afterwards
// has no effect on a running game except through hot reload.
type Settings struct {
	Title             string          `yaml:"title"`
	Width             int             `yaml:"width"`
	Height            int             `yaml:"height"`
	Version           string          `yaml:"version"`
	ApplicationMode   ApplicationMode `yaml:"application_mode"`
	MenuEnabled       bool            `yaml:"menu_enabled"`
	ProfilingEnabled  bool            `yaml:"profiling_enabled"`
	CloseConfirmation bool            `yaml:"close_confirmation"`
	MusicVolume       float64         `yaml:"music_volume"`
	TPS               int             `yaml:"tps"`
	Playlist          []string        `yaml:"playlist"`
	Timers            []TimerSpec     `yaml:"timers"`
}

// Defaults returns the built-in settings without any timers.
func Defaults() Settings {
	return Settings{
		Title:             "Untitled Game",
		Width:             800,
		Height:            600,
		Version:           "0.0",
		ApplicationMode:   ModeDeveloper,
		MenuEnabled:       true,
		ProfilingEnabled:  true,
		CloseConfirmation: true,
		MusicVolume:       1,
		TPS:               60,
	}
}

type envOverrides struct {
	Title       string          `env:"TICKTIMER_TITLE"`
	Width       int             `env:"TICKTIMER_WIDTH"`
	Height      int             `env:"TICKTIMER_HEIGHT"`
	Mode        ApplicationMode `env:"TICKTIMER_MODE"`
	MusicVolume float64         `env:"TICKTIMER_MUSIC_VOLUME"`
	TPS         int             `env:"TICKTIMER_TPS"`
}

// Load reads settings from path, falling back to the embedded defaults
// when the file does not exist, then applies environment overrides.
func Load(path string) (Settings, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment; nil uses the process
// environment.
func LoadWithEnv(path string, environ map[string]string) (Settings, error) {
	data, dir, err := read(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := decode(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	for i := range s.Timers {
		spec := &s.Timers[i]
		if spec.ScriptPath == "" {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(spec.ScriptPath)))
		if err != nil {
			return Settings{}, fmt.Errorf("config: timer %q script: %w", spec.Name, err)
		}
		spec.Script = string(src)
	}
	if err := ApplyEnv(&s, environ); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Parse decodes and validates settings from YAML. Missing keys keep
// their defaults.
func Parse(data []byte) (Settings, error) {
	s, err := decode(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func decode(data []byte) (Settings, error) {
	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func read(path string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, filepath.Dir(path), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return defaultSettings, ".", nil
}

// ApplyEnv overrides s with TICKTIMER_* variables.
func ApplyEnv(s *Settings, environ map[string]string) error {
	ov := envOverrides{
		Title:       s.Title,
		Width:       s.Width,
		Height:      s.Height,
		Mode:        s.ApplicationMode,
		MusicVolume: s.MusicVolume,
		TPS:         s.TPS,
	}
	if err := env.ParseWithOptions(&ov, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	s.Title = ov.Title
	s.Width = ov.Width
	s.Height = ov.Height
	s.ApplicationMode = ov.Mode
	s.MusicVolume = ov.MusicVolume
	s.TPS = ov.TPS
	return nil
}

// Validate reports the first problem found, wrapped in ErrInvalidSettings.
func (s Settings) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
	}
	if s.Width <= 0 || s.Height <= 0 {
		return invalid("size %dx%d", s.Width, s.Height)
	}
	if s.TPS <= 0 {
		return invalid("tps %d", s.TPS)
	}
	if math.IsNaN(s.MusicVolume) || s.MusicVolume < 0 || s.MusicVolume > 1 {
		return invalid("music volume %v", s.MusicVolume)
	}
	switch s.ApplicationMode {
	case ModeDeveloper, ModeDebug, ModeRelease:
	default:
		return invalid("application mode %q", s.ApplicationMode)
	}

	seen := make(map[string]bool, len(s.Timers))
	for i, t := range s.Timers {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return invalid("timer %d has no name", i)
		}
		if seen[name] {
			return invalid("duplicate timer %q", name)
		}
		seen[name] = true
		if math.IsNaN(t.Interval) || math.IsInf(t.Interval, 0) || t.Interval <= 0 {
			return invalid("timer %q interval %v", name, t.Interval)
		}
	}
	return nil
}

// ReadOnly returns a copy that does not share slices with s.
func (s Settings) ReadOnly() Settings {
	s.Timers = append([]TimerSpec(nil), s.Timers...)
	s.Playlist = append([]string(nil), s.Playlist...)
	return s
}

// Debug reports whether the game runs in a non-release mode.
func (s Settings) Debug() bool {
	return s.ApplicationMode != ModeRelease
}
