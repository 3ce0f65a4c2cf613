package workspace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	stateDirName  = "sartwc"
	stateFileName = "workspaces.txt"
)

// Store persists workspace names to a newline-delimited file under the
// user's state directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// StateDir resolves $XDG_STATE_HOME/sartwc, falling back to
// $HOME/.local/state/sartwc.
func StateDir() (string, error) {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, stateDirName), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "state", stateDirName), nil
	}
	return "", ErrStateUnavailable
}

// NewStore creates a store rooted at the default state directory.
func NewStore(logger *slog.Logger) (*Store, error) {
	dir, err := StateDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(dir, logger), nil
}

// NewStoreAt creates a store rooted at dir.
func NewStoreAt(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFileName)
}

// Load reads the persisted names. It reports false when the file is missing,
// unreadable, or holds no names.
func (s *Store) Load() ([]string, bool) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("failed to read workspace state", "path", s.Path(), "error", err)
		}
		return nil, false
	}

	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), len(data)+1)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		s.logger.Error("failed to parse workspace state", "path", s.Path(), "error", err)
		return nil, false
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

// Save replaces the state file with names, one per line. The previous file
// is left untouched on failure.
func (s *Store) Save(names []string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	if err := atomic.WriteFile(s.Path(), &buf); err != nil {
		return fmt.Errorf("write workspace state: %w", err)
	}
	return nil
}
