// Package runtimepath locates the per-user directory where a running imember
// daemon keeps its control socket and single-instance lock file.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	socketName = "imember.sock"
	pidName    = "imember.pid"
)

// Dir returns the directory shared by the daemon and its control commands.
// It is the first of XDG_RUNTIME_DIR, an existing /run/user/<uid>, or
// /tmp/imember-runtime-<uid>, which is created owner-only.
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	if runUserDir := fmt.Sprintf("/run/user/%d", uid); isDir(runUserDir) {
		return runUserDir, nil
	}

	fallback := fmt.Sprintf("/tmp/imember-runtime-%d", uid)
	if err := os.MkdirAll(fallback, 0o700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return fallback, nil
}

// SocketPath returns where the daemon listens for status, save and restore
// requests.
func SocketPath() (string, error) {
	return inDir(socketName)
}

// PIDPath returns the lock file that keeps a second daemon from starting in
// the same session.
func PIDPath() (string, error) {
	return inDir(pidName)
}

func inDir(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
