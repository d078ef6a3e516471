// Package mcp exposes the daemon's arrangement operations as Model Context
// Protocol tools over stdio. Every tool forwards to the running daemon.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/imember/internal/ipc"
)

const (
	ServerName    = "imember"
	ServerVersion = "0.1.0"
)

// Daemon is the control surface of a running daemon.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	SaveNow() (*ipc.StatusData, error)
	Restore() (*ipc.StatusData, error)
	Toggle() (bool, error)
	ListArrangements() (*ipc.ArrangementsData, error)
	GetLogs(lines int) ([]string, error)
}

// Server is the MCP server for imember.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that talks to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether window snapshots are enabled, how many displays are active, whether the displays look disconnected (single 640x480 fallback mode), and which display counts have a saved arrangement.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_arrangement",
		Description: "Snapshot the position of every visible window now and store it for the current display count, replacing any earlier snapshot for that count. Does nothing while snapshots are disabled.",
	}, s.handleSaveArrangement)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_arrangement",
		Description: "Move windows back to the positions saved for the current display count. Windows that have closed since the snapshot are skipped.",
	}, s.handleRestoreArrangement)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_enabled",
		Description: "Enable or disable periodic and manual snapshots. Restores after display changes still happen while disabled.",
	}, s.handleToggleEnabled)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_arrangements",
		Description: "List saved arrangements with the windows and rectangles each one holds. Arrangements live in memory and are lost when the daemon exits.",
	}, s.handleListArrangements)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "read_activity",
		Description: "Read the daemon's recent activity log, oldest line first.",
	}, s.handleReadActivity)
}
