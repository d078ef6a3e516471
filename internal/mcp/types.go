package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// SlotOutput summarizes one saved arrangement.
type SlotOutput struct {
	DisplayCount int    `json:"display_count"`
	Windows      int    `json:"windows"`
	SavedAt      string `json:"saved_at"`
}

// StatusOutput is the output for get_status, save_arrangement and
// restore_arrangement.
type StatusOutput struct {
	Enabled           bool         `json:"enabled"`
	DisplayCount      int          `json:"display_count"`
	AllDisconnected   bool         `json:"all_disconnected"`
	MaxDisplays       int          `json:"max_displays"`
	LastSnapshotCount int          `json:"last_snapshot_count,omitempty"`
	LastSnapshotAt    string       `json:"last_snapshot_at,omitempty"`
	UptimeSeconds     int64        `json:"uptime_seconds"`
	Slots             []SlotOutput `json:"slots"`
}

// SaveArrangementInput is the input for the save_arrangement tool.
type SaveArrangementInput struct{}

// RestoreArrangementInput is the input for the restore_arrangement tool.
type RestoreArrangementInput struct{}

// ToggleEnabledInput is the input for the toggle_enabled tool.
type ToggleEnabledInput struct{}

// ToggleEnabledOutput is the output for the toggle_enabled tool.
type ToggleEnabledOutput struct {
	Enabled bool `json:"enabled"`
}

// ListArrangementsInput is the input for the list_arrangements tool.
type ListArrangementsInput struct {
	DisplayCount int `json:"display_count,omitempty" jsonschema:"Only return the arrangement saved for this display count (default: all)"`
}

// WindowOutput is one window of a saved arrangement.
type WindowOutput struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title,omitempty"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ArrangementOutput is one saved arrangement.
type ArrangementOutput struct {
	DisplayCount int            `json:"display_count"`
	SavedAt      string         `json:"saved_at"`
	Windows      []WindowOutput `json:"windows"`
}

// ListArrangementsOutput is the output for the list_arrangements tool.
type ListArrangementsOutput struct {
	Arrangements []ArrangementOutput `json:"arrangements"`
}

// ReadActivityInput is the input for the read_activity tool.
type ReadActivityInput struct {
	Lines int `json:"lines,omitempty" jsonschema:"Number of most recent lines to return (default: 50, max: 100)"`
}

// ReadActivityOutput is the output for the read_activity tool.
type ReadActivityOutput struct {
	Lines []string `json:"lines"`
}
