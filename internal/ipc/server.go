package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/imember/internal/engine"
	"github.com/1broseidon/imember/internal/runtimepath"
	"github.com/rs/zerolog"
)

// Engine is the part of the controller the control socket drives.
type Engine interface {
	Status() engine.Status
	SaveNow()
	RestoreNow()
	ToggleEnabled() bool
	Arrangements() []engine.SlotDetail
}

// ActivitySource provides recent activity lines, oldest first.
type ActivitySource interface {
	Tail(n int) []string
}

// ReloadFunc rebuilds and applies the configuration.
type ReloadFunc func() error

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	activity     ActivitySource
	reload       ReloadFunc
	log          zerolog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the standard socket path.
func NewServer(eng Engine, activity ActivitySource, reload ReloadFunc, logger zerolog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, eng, activity, reload, logger), nil
}

// NewServerAt creates a server that will listen on socketPath.
func NewServerAt(socketPath string, eng Engine, activity ActivitySource, reload ReloadFunc, logger zerolog.Logger) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		engine:     eng,
		activity:   activity,
		reload:     reload,
		log:        logger.With().Str("component", "ipc").Logger(),
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info().Str("socket", s.socketPath).Msg("IPC server listening")

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.log.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Warn().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal response")
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Warn().Err(err).Msg("Failed to send response")
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSaveNow:
		s.engine.SaveNow()
		return s.handleGetStatus()
	case CommandRestore:
		s.engine.RestoreNow()
		return s.handleGetStatus()
	case CommandToggle:
		return s.handleToggle()
	case CommandListArrangements:
		return s.handleListArrangements()
	case CommandGetLogs:
		return s.handleGetLogs(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	s.log.Info().Msg("IPC: Received RELOAD command")

	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	resp, err := NewOKResponse(s.statusData())
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) statusData() StatusData {
	st := s.engine.Status()

	data := StatusData{
		DaemonRunning:     true,
		Enabled:           st.Enabled,
		DisplayCount:      st.DisplayCount,
		AllDisconnected:   st.AllDisconnected,
		MaxDisplays:       st.MaxDisplays,
		LastSnapshotCount: st.LastSnapshotCount,
		UptimeSeconds:     int64(time.Since(s.startTime).Seconds()),
		Slots:             make([]SlotInfo, 0, len(st.Slots)),
	}
	if !st.LastSnapshotAt.IsZero() {
		at := st.LastSnapshotAt
		data.LastSnapshotAt = &at
	}
	for _, slot := range st.Slots {
		data.Slots = append(data.Slots, SlotInfo{
			DisplayCount: slot.DisplayCount,
			Windows:      slot.Windows,
			SavedAt:      slot.SavedAt,
		})
	}
	return data
}

func (s *Server) handleToggle() *Response {
	enabled := s.engine.ToggleEnabled()
	resp, _ := NewOKResponse(ToggleData{Enabled: enabled})
	return resp
}

func (s *Server) handleListArrangements() *Response {
	slots := s.engine.Arrangements()

	data := ArrangementsData{Arrangements: make([]ArrangementInfo, 0, len(slots))}
	for _, slot := range slots {
		info := ArrangementInfo{
			DisplayCount: slot.DisplayCount,
			SavedAt:      slot.SavedAt,
			Windows:      make([]WindowInfo, 0, len(slot.Windows)),
		}
		for _, w := range slot.Windows {
			info.Windows = append(info.Windows, WindowInfo{
				ID:     uint32(w.ID),
				Title:  w.Title,
				Left:   w.Rect.Left,
				Top:    w.Rect.Top,
				Right:  w.Rect.Right,
				Bottom: w.Rect.Bottom,
				Width:  w.Rect.Width(),
				Height: w.Rect.Height(),
			})
		}
		data.Arrangements = append(data.Arrangements, info)
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleGetLogs(payload json.RawMessage) *Response {
	var req GetLogsPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid logs payload: %v", err))
		}
	}
	if req.Lines < 0 {
		return NewErrorResponse("lines must be >= 0")
	}

	lines := []string{}
	if s.activity != nil {
		lines = append(lines, s.activity.Tail(req.Lines)...)
	}

	resp, _ := NewOKResponse(LogsData{Lines: lines})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
