package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	t.Setenv("HOME", "/home/u")
	dir, err := StateDir()
	require.NoError(t, err)
	assert.Equal(t, "/state/sartwc", dir)

	t.Setenv("XDG_STATE_HOME", "")
	dir, err = StateDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.local/state/sartwc", dir)

	t.Setenv("HOME", "")
	_, err = StateDir()
	assert.ErrorIs(t, err, ErrStateUnavailable)
}

func TestStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sartwc")
	s := NewStoreAt(dir, nil)

	_, ok := s.Load()
	assert.False(t, ok, "missing file")

	names := []string{"web", "mail", "2nd desktop", "ünïcode"}
	require.NoError(t, s.Save(names))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, names, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestStoreLoadSkipsBlankLinesAndCarriageReturns(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreAt(dir, nil)
	require.NoError(t, os.WriteFile(s.Path(), []byte("one\r\n\n\ntwo\r\nthree"), 0o600))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestStoreLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreAt(dir, nil)
	require.NoError(t, os.WriteFile(s.Path(), []byte("\n\r\n"), 0o600))

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestStoreSaveFailureKeepsPreviousFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	s := NewStoreAt(filepath.Join(blocker, "sartwc"), nil)
	assert.Error(t, s.Save([]string{"a"}))
}

func TestManagerPersistsThroughStore(t *testing.T) {
	s := NewStoreAt(t.TempDir(), nil)
	m := NewManager(Options{Shell: newFakeShell(), Store: s})
	m.Init()
	_, err := m.AddNamed("mail")
	require.NoError(t, err)
	require.NoError(t, m.RenameIndex(1, "web"))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, []string{"web", "mail"}, got)
}
