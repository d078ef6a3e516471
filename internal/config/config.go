package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	MaxSupportedDisplays = 16
	minSaveInterval      = time.Second
)

// Resolution is a display mode in pixels.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config holds the application configuration.
type Config struct {
	SaveInterval       time.Duration `yaml:"save_interval"`
	TopologySettle     time.Duration `yaml:"topology_settle"`
	MaxDisplays        int           `yaml:"max_displays"`
	FallbackResolution Resolution    `yaml:"fallback_resolution"`
	StartEnabled       bool          `yaml:"start_enabled"`
	LogWindowsOnTick   bool          `yaml:"log_windows_on_tick"`
	ActivityLines      int           `yaml:"activity_lines"`
	ShellWindowClasses []string      `yaml:"shell_window_classes"`
	WatchSleep         bool          `yaml:"watch_sleep"`
	LogLevel           string        `yaml:"log_level"`
	LogFile            string        `yaml:"log_file,omitempty"`
	Display            string        `yaml:"display,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		SaveInterval:   60 * time.Second,
		TopologySettle: 2 * time.Second,
		MaxDisplays:    5,
		FallbackResolution: Resolution{
			Width:  640,
			Height: 480,
		},
		StartEnabled:     true,
		LogWindowsOnTick: false,
		ActivityLines:    100,
		ShellWindowClasses: []string{
			"Nautilus",
			"org.gnome.Nautilus",
			"Thunar",
			"dolphin",
			"Nemo",
			"Caja",
			"Pcmanfm",
		},
		WatchSleep: true,
		LogLevel:   "info",
	}
}

// Save writes the configuration to path, or to the standard location when
// path is empty.
//
// Comments in an existing file are not preserved.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.SaveInterval < minSaveInterval {
		return &ValidationError{Path: "save_interval", Err: fmt.Errorf("save_interval must be >= %s", minSaveInterval)}
	}
	if c.TopologySettle < 0 {
		return &ValidationError{Path: "topology_settle", Err: fmt.Errorf("topology_settle must be >= 0")}
	}
	if c.MaxDisplays < 1 || c.MaxDisplays > MaxSupportedDisplays {
		return &ValidationError{Path: "max_displays", Err: fmt.Errorf("max_displays must be between 1 and %d", MaxSupportedDisplays)}
	}
	if c.FallbackResolution.Width <= 0 {
		return &ValidationError{Path: "fallback_resolution.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.FallbackResolution.Height <= 0 {
		return &ValidationError{Path: "fallback_resolution.height", Err: fmt.Errorf("height must be > 0")}
	}
	if c.ActivityLines < 1 {
		return &ValidationError{Path: "activity_lines", Err: fmt.Errorf("activity_lines must be >= 1")}
	}
	for i, class := range c.ShellWindowClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "shell_window_classes", Err: fmt.Errorf("entry %d is empty", i)}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}
