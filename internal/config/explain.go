package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	save_interval
//	topology_settle
//	max_displays
//	fallback_resolution
//	fallback_resolution.width
//	fallback_resolution.height
//	start_enabled
//	log_windows_on_tick
//	activity_lines
//	shell_window_classes
//	watch_sleep
//	log_level
//	log_file
//	display
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "fallback_resolution" {
		switch {
		case len(parts) == 1:
			return cfg.FallbackResolution, nil
		case len(parts) == 2 && parts[1] == "width":
			return cfg.FallbackResolution.Width, nil
		case len(parts) == 2 && parts[1] == "height":
			return cfg.FallbackResolution.Height, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch parts[0] {
	case "save_interval":
		return cfg.SaveInterval, nil
	case "topology_settle":
		return cfg.TopologySettle, nil
	case "max_displays":
		return cfg.MaxDisplays, nil
	case "start_enabled":
		return cfg.StartEnabled, nil
	case "log_windows_on_tick":
		return cfg.LogWindowsOnTick, nil
	case "activity_lines":
		return cfg.ActivityLines, nil
	case "shell_window_classes":
		return cfg.ShellWindowClasses, nil
	case "watch_sleep":
		return cfg.WatchSleep, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_file":
		return cfg.LogFile, nil
	case "display":
		return cfg.Display, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
