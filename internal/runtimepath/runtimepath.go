package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoDisplay is returned when WAYLAND_DISPLAY is not set. Without it there
// is no per-session socket name.
var ErrNoDisplay = errors.New("WAYLAND_DISPLAY is not set")

// SocketEnv is exported to child processes with the IPC socket path.
const SocketEnv = "SARTWC_IPC_SOCKET"

// Dir returns the runtime directory used for the IPC socket and the
// workspace mirror file. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/sartwc-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/sartwc-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// ServerSocketPath returns the socket the compositor listens on:
// $XDG_RUNTIME_DIR/sartwc-$WAYLAND_DISPLAY.sock. Both variables must be set;
// the compositor disables IPC otherwise.
func ServerSocketPath() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		return "", ErrNoDisplay
	}
	return filepath.Join(runtimeDir, socketName(display)), nil
}

// SocketPath returns the socket a client should dial. SARTWC_IPC_SOCKET wins
// when set, so tools launched from the compositor need no other environment.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		return "", ErrNoDisplay
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, socketName(display)), nil
}

// WorkspaceMirrorPath returns the JSON file mirroring the workspace list.
func WorkspaceMirrorPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "sartwc-workspaces.json"), nil
}

func socketName(display string) string {
	return "sartwc-" + display + ".sock"
}
