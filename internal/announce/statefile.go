// Package announce mirrors the workspace list to other processes. StateFile
// keeps a JSON snapshot in the runtime directory for scripts and status bars;
// Recorder is an in-memory announcer for tests.
package announce

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sartwc/sartwc/internal/workspace"
)

// State is the document written by StateFile.
type State struct {
	Workspaces []StateEntry `json:"workspaces"`
	Current    int          `json:"current"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// StateEntry is one workspace in State. Index is 1-based.
type StateEntry struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// StateFile is a workspace.Announcer that rewrites a JSON file on every
// change. It must be used from the event loop.
type StateFile struct {
	path    string
	handles []*fileHandle
	logger  *slog.Logger
	now     func() time.Time
}

var _ workspace.Announcer = (*StateFile)(nil)

// NewStateFile creates an announcer writing to path.
func NewStateFile(path string, logger *slog.Logger) *StateFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateFile{path: path, logger: logger, now: time.Now}
}

// Path returns the mirror file location.
func (s *StateFile) Path() string {
	return s.path
}

type fileHandle struct {
	s      *StateFile
	name   string
	active bool
}

// CreateWorkspace implements workspace.Announcer. A file has no way to send
// requests back, so onActivate is unused.
func (s *StateFile) CreateWorkspace(name string, _ func()) workspace.Handle {
	h := &fileHandle{s: s, name: name}
	s.handles = append(s.handles, h)
	s.flush()
	return h
}

func (h *fileHandle) SetName(name string) {
	if h.name == name {
		return
	}
	h.name = name
	h.s.flush()
}

func (h *fileHandle) SetActive(active bool) {
	if h.active == active {
		return
	}
	h.active = active
	h.s.flush()
}

func (h *fileHandle) Destroy() {
	i := slices.Index(h.s.handles, h)
	if i < 0 {
		return
	}
	h.s.handles = slices.Delete(h.s.handles, i, i+1)
	h.s.flush()
}

// Snapshot returns the state as it would be written now.
func (s *StateFile) Snapshot() State {
	st := State{Workspaces: make([]StateEntry, 0, len(s.handles)), UpdatedAt: s.now()}
	for i, h := range s.handles {
		st.Workspaces = append(st.Workspaces, StateEntry{Index: i + 1, Name: h.name, Active: h.active})
		if h.active {
			st.Current = i + 1
		}
	}
	return st
}

func (s *StateFile) flush() {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		s.logger.Error("failed to encode workspace mirror", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Error("failed to create runtime dir", "path", s.path, "error", err)
		return
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(append(data, '\n'))); err != nil {
		s.logger.Error("failed to write workspace mirror", "path", s.path, "error", err)
	}
}

// Close removes the mirror file.
func (s *StateFile) Close() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove workspace mirror: %w", err)
	}
	return nil
}

// ReadState loads a mirror written by a running daemon.
func ReadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace mirror: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse workspace mirror: %w", err)
	}
	return &st, nil
}
