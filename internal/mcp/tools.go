package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/imember/internal/ipc"
)

const (
	defaultActivityLines = 50
	maxActivityLines     = 100
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, statusOutput(status), nil
}

func (s *Server) handleSaveArrangement(_ context.Context, _ *mcpsdk.CallToolRequest, _ SaveArrangementInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.SaveNow()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, statusOutput(status), nil
}

func (s *Server) handleRestoreArrangement(_ context.Context, _ *mcpsdk.CallToolRequest, _ RestoreArrangementInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.Restore()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, statusOutput(status), nil
}

func (s *Server) handleToggleEnabled(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleEnabledInput) (*mcpsdk.CallToolResult, ToggleEnabledOutput, error) {
	enabled, err := s.daemon.Toggle()
	if err != nil {
		return nil, ToggleEnabledOutput{}, err
	}
	return nil, ToggleEnabledOutput{Enabled: enabled}, nil
}

func (s *Server) handleListArrangements(_ context.Context, _ *mcpsdk.CallToolRequest, args ListArrangementsInput) (*mcpsdk.CallToolResult, ListArrangementsOutput, error) {
	if args.DisplayCount < 0 {
		return nil, ListArrangementsOutput{}, fmt.Errorf("display_count must be >= 0")
	}

	data, err := s.daemon.ListArrangements()
	if err != nil {
		return nil, ListArrangementsOutput{}, err
	}

	out := ListArrangementsOutput{Arrangements: []ArrangementOutput{}}
	for _, a := range data.Arrangements {
		if args.DisplayCount != 0 && a.DisplayCount != args.DisplayCount {
			continue
		}
		entry := ArrangementOutput{
			DisplayCount: a.DisplayCount,
			SavedAt:      formatTime(a.SavedAt),
			Windows:      make([]WindowOutput, 0, len(a.Windows)),
		}
		for _, w := range a.Windows {
			entry.Windows = append(entry.Windows, WindowOutput{
				ID:     w.ID,
				Title:  w.Title,
				Left:   w.Left,
				Top:    w.Top,
				Width:  w.Width,
				Height: w.Height,
			})
		}
		out.Arrangements = append(out.Arrangements, entry)
	}
	return nil, out, nil
}

func (s *Server) handleReadActivity(_ context.Context, _ *mcpsdk.CallToolRequest, args ReadActivityInput) (*mcpsdk.CallToolResult, ReadActivityOutput, error) {
	lines := args.Lines
	if lines <= 0 {
		lines = defaultActivityLines
	}
	if lines > maxActivityLines {
		lines = maxActivityLines
	}

	got, err := s.daemon.GetLogs(lines)
	if err != nil {
		return nil, ReadActivityOutput{}, err
	}
	if got == nil {
		got = []string{}
	}
	return nil, ReadActivityOutput{Lines: got}, nil
}

func statusOutput(status *ipc.StatusData) StatusOutput {
	out := StatusOutput{
		Enabled:           status.Enabled,
		DisplayCount:      status.DisplayCount,
		AllDisconnected:   status.AllDisconnected,
		MaxDisplays:       status.MaxDisplays,
		LastSnapshotCount: status.LastSnapshotCount,
		UptimeSeconds:     status.UptimeSeconds,
		Slots:             make([]SlotOutput, 0, len(status.Slots)),
	}
	if status.LastSnapshotAt != nil {
		out.LastSnapshotAt = formatTime(*status.LastSnapshotAt)
	}
	for _, slot := range status.Slots {
		out.Slots = append(out.Slots, SlotOutput{
			DisplayCount: slot.DisplayCount,
			Windows:      slot.Windows,
			SavedAt:      formatTime(slot.SavedAt),
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
