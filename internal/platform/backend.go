package platform

import "fmt"

// WindowID is a platform-neutral window identifier. It is only meaningful for
// the lifetime of the window server session that issued it.
type WindowID uint32

// Rect describes a window's bounding box in screen coordinates.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// RectFromGeometry builds a Rect from an origin and a size.
func RectFromGeometry(x, y, width, height int) Rect {
	return Rect{
		Left:   x,
		Top:    y,
		Right:  x + width,
		Bottom: y + height,
	}
}

// Width returns Right - Left.
func (r Rect) Width() int {
	return r.Right - r.Left
}

// Height returns Bottom - Top.
func (r Rect) Height() int {
	return r.Bottom - r.Top
}

func (r Rect) String() string {
	return fmt.Sprintf("Left: %d, Right: %d, Top: %d, Bottom: %d, Width: %d, Height: %d",
		r.Left, r.Right, r.Top, r.Bottom, r.Width(), r.Height())
}

// Display describes an active physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts the window-system capabilities the arrangement engine
// consumes. Implementations treat every call as best-effort: a window that
// disappears between calls is skipped rather than reported as an error.
type Backend interface {
	// Displays returns the currently active displays.
	Displays() ([]Display, error)
	// ListWindows returns visible top-level application windows.
	ListWindows() ([]Window, error)
	// ListShellWindows returns file-browser/shell windows, which are
	// enumerated separately from ordinary application windows.
	ListShellWindows() ([]Window, error)
	// OwnWindow returns the window owned by this process, if any.
	OwnWindow() (Window, bool)
	// WindowTitle returns a window's display text, or "" if unavailable.
	WindowTitle(windowID WindowID) string
	// MoveResize repositions a window without changing stacking order or focus.
	MoveResize(windowID WindowID, bounds Rect) error
	// Minimize iconifies a window.
	Minimize(windowID WindowID) error
}
