// Package autostart registers the daemon to start on login through an XDG
// autostart desktop entry.
package autostart

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppName keys the autostart entry.
const AppName = "imember"

// Entry is an XDG autostart registration.
type Entry struct {
	path string
}

// Default returns the entry under $XDG_CONFIG_HOME/autostart, falling back to
// ~/.config/autostart.
func Default() (*Entry, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return At(filepath.Join(dir, "autostart", AppName+".desktop")), nil
}

// At returns the entry stored at path.
func At(path string) *Entry {
	return &Entry{path: path}
}

// Path returns the desktop file location.
func (e *Entry) Path() string {
	return e.path
}

// Enable writes the desktop entry so that exe is started with "daemon" on login.
func (e *Entry) Enable(exe string) error {
	if strings.TrimSpace(exe) == "" {
		return fmt.Errorf("executable path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}
	if err := os.WriteFile(e.path, render(exe), 0644); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}
	return nil
}

// Disable removes the desktop entry. Removing a missing entry is not an error.
func (e *Entry) Disable() error {
	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove autostart entry: %w", err)
	}
	return nil
}

// Enabled reports whether an entry exists and is not hidden. exec is the
// entry's Exec line.
func (e *Entry) Enabled() (enabled bool, exec string, err error) {
	data, err := os.ReadFile(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to read autostart entry: %w", err)
	}

	hidden := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Exec":
			exec = value
		case "Hidden":
			if strings.EqualFold(value, "true") {
				hidden = true
			}
		case "X-GNOME-Autostart-enabled":
			if strings.EqualFold(value, "false") {
				hidden = true
			}
		}
	}
	return !hidden && exec != "", exec, nil
}

func render(exe string) []byte {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + AppName + "\n")
	b.WriteString("Comment=Restore window positions when displays change\n")
	b.WriteString("Exec=" + quoteExec(exe) + " daemon\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return []byte(b.String())
}

// quoteExec quotes an argument per the desktop entry Exec rules when needed.
func quoteExec(arg string) string {
	if !strings.ContainsAny(arg, " \t\"'\\$`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(arg) + `"`
}
