//go:build linux

package platform

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/imember/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	mu           sync.RWMutex
	shellClasses map[string]bool
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
// shellClasses lists the WM_CLASS values enumerated as shell windows.
func NewLinuxBackend(conn *x11.Connection, shellClasses []string) *LinuxBackend {
	b := &LinuxBackend{conn: conn}
	b.SetShellClasses(shellClasses)
	return b
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection. An empty display
// uses $DISPLAY.
func NewLinuxBackendFromDisplay(display string, shellClasses []string) (*LinuxBackend, error) {
	conn, err := x11.NewConnectionDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, shellClasses), nil
}

// SetShellClasses replaces the set of WM_CLASS values treated as shell windows.
// Matching is case-insensitive.
func (b *LinuxBackend) SetShellClasses(classes []string) {
	set := make(map[string]bool, len(classes))
	for _, class := range classes {
		set[strings.ToLower(strings.TrimSpace(class))] = true
	}
	b.mu.Lock()
	b.shellClasses = set
	b.mu.Unlock()
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// WatchTopology calls fn on every RandR screen, CRTC or output change.
func (b *LinuxBackend) WatchTopology(fn func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WatchScreenChanges(fn)
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: RectFromGeometry(m.X, m.Y, m.Width, m.Height),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ListWindows lists visible normal client windows on every desktop, leaving
// out shell windows.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	return b.listClients(func(class string) bool { return !b.isShellClass(class) })
}

// ListShellWindows lists visible client windows whose class is a configured
// shell class.
func (b *LinuxBackend) ListShellWindows() ([]Window, error) {
	return b.listClients(b.isShellClass)
}

// OwnWindow returns the client window whose _NET_WM_PID is this process.
func (b *LinuxBackend) OwnWindow() (Window, bool) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, false
	}
	clients, err := conn.ClientWindows()
	if err != nil {
		return Window{}, false
	}

	pid := os.Getpid()
	for _, windowID := range clients {
		if conn.WindowPID(windowID) != pid {
			continue
		}
		if w, ok := b.describe(windowID); ok {
			return w, true
		}
	}
	return Window{}, false
}

// WindowTitle returns the window's title, or "" if the window is gone.
func (b *LinuxBackend) WindowTitle(windowID WindowID) string {
	conn, err := b.connection()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(conn.WindowName(xproto.Window(windowID)))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.Left,
		bounds.Top,
		bounds.Width(),
		bounds.Height(),
	)
}

// Minimize minimizes a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Iconify(xproto.Window(windowID))
}

func (b *LinuxBackend) listClients(keep func(class string) bool) ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) || conn.IsHidden(windowID) {
			continue
		}
		if !keep(conn.WindowClass(windowID)) {
			continue
		}
		w, ok := b.describe(windowID)
		if !ok {
			continue
		}
		windows = append(windows, w)
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})

	return windows, nil
}

func (b *LinuxBackend) describe(windowID xproto.Window) (Window, bool) {
	conn := b.conn
	x, y, width, height, ok := conn.WindowGeometry(windowID)
	if !ok {
		return Window{}, false
	}
	return Window{
		ID:     WindowID(windowID),
		PID:    conn.WindowPID(windowID),
		AppID:  strings.TrimSpace(conn.WindowClass(windowID)),
		Title:  strings.TrimSpace(conn.WindowName(windowID)),
		Bounds: RectFromGeometry(x, y, width, height),
	}, true
}

func (b *LinuxBackend) isShellClass(class string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.shellClasses[strings.ToLower(strings.TrimSpace(class))]
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
