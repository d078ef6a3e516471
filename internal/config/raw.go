package config

import "time"

type RawResolution struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

// RawConfig mirrors Config with optional fields so that a file only
// overrides the keys it sets.
type RawConfig struct {
	SaveInterval       *time.Duration `yaml:"save_interval"`
	TopologySettle     *time.Duration `yaml:"topology_settle"`
	MaxDisplays        *int           `yaml:"max_displays"`
	FallbackResolution *RawResolution `yaml:"fallback_resolution"`
	StartEnabled       *bool          `yaml:"start_enabled"`
	LogWindowsOnTick   *bool          `yaml:"log_windows_on_tick"`
	ActivityLines      *int           `yaml:"activity_lines"`
	ShellWindowClasses []string       `yaml:"shell_window_classes"`
	WatchSleep         *bool          `yaml:"watch_sleep"`
	LogLevel           *string        `yaml:"log_level"`
	LogFile            *string        `yaml:"log_file"`
	Display            *string        `yaml:"display"`
}
