package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.SaveInterval != nil {
		cfg.SaveInterval = *raw.SaveInterval
	}
	if raw.TopologySettle != nil {
		cfg.TopologySettle = *raw.TopologySettle
	}
	cfg.MaxDisplays = derefInt(raw.MaxDisplays, cfg.MaxDisplays)
	if raw.FallbackResolution != nil {
		cfg.FallbackResolution.Width = derefInt(raw.FallbackResolution.Width, cfg.FallbackResolution.Width)
		cfg.FallbackResolution.Height = derefInt(raw.FallbackResolution.Height, cfg.FallbackResolution.Height)
	}
	if raw.StartEnabled != nil {
		cfg.StartEnabled = *raw.StartEnabled
	}
	if raw.LogWindowsOnTick != nil {
		cfg.LogWindowsOnTick = *raw.LogWindowsOnTick
	}
	cfg.ActivityLines = derefInt(raw.ActivityLines, cfg.ActivityLines)
	if raw.ShellWindowClasses != nil {
		classes := make([]string, 0, len(raw.ShellWindowClasses))
		for _, class := range raw.ShellWindowClasses {
			classes = append(classes, strings.TrimSpace(class))
		}
		cfg.ShellWindowClasses = classes
	}
	if raw.WatchSleep != nil {
		cfg.WatchSleep = *raw.WatchSleep
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = normalizeLogLevel(*raw.LogLevel)
	}
	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}

	return cfg, nil
}

func normalizeLogLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return "warn"
	}
	return level
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
