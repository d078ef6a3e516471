package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload           CommandType = "RELOAD"
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandSaveNow          CommandType = "SAVE_NOW"
	CommandToggle           CommandType = "TOGGLE"
	CommandRestore          CommandType = "RESTORE"
	CommandListArrangements CommandType = "LIST_ARRANGEMENTS"
	CommandGetLogs          CommandType = "GET_LOGS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SlotInfo summarizes one saved arrangement.
type SlotInfo struct {
	DisplayCount int       `json:"display_count"`
	Windows      int       `json:"windows"`
	SavedAt      time.Time `json:"saved_at"`
}

// StatusData represents the data returned by GET_STATUS, SAVE_NOW and RESTORE
type StatusData struct {
	DaemonRunning     bool       `json:"daemon_running"`
	Enabled           bool       `json:"enabled"`
	DisplayCount      int        `json:"display_count"`
	AllDisconnected   bool       `json:"all_disconnected"`
	MaxDisplays       int        `json:"max_displays"`
	LastSnapshotCount int        `json:"last_snapshot_count,omitempty"`
	LastSnapshotAt    *time.Time `json:"last_snapshot_at,omitempty"`
	UptimeSeconds     int64      `json:"uptime_seconds"`
	Slots             []SlotInfo `json:"slots"`
}

// ToggleData represents the data returned by TOGGLE
type ToggleData struct {
	Enabled bool `json:"enabled"`
}

// WindowInfo is one window of a saved arrangement.
type WindowInfo struct {
	ID     uint32 `json:"id"`
	Title  string `json:"title,omitempty"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Right  int    `json:"right"`
	Bottom int    `json:"bottom"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ArrangementInfo struct {
	DisplayCount int          `json:"display_count"`
	SavedAt      time.Time    `json:"saved_at"`
	Windows      []WindowInfo `json:"windows"`
}

// ArrangementsData represents the data returned by LIST_ARRANGEMENTS
type ArrangementsData struct {
	Arrangements []ArrangementInfo `json:"arrangements"`
}

// GetLogsPayload represents the payload for GET_LOGS. Zero lines means all.
type GetLogsPayload struct {
	Lines int `json:"lines,omitempty"`
}

type LogsData struct {
	Lines []string `json:"lines"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
