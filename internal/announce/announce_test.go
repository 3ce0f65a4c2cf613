package announce

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/workspace"
)

func newManager(announcers ...workspace.Announcer) *workspace.Manager {
	d := desktop.New(desktop.Options{})
	m := workspace.NewManager(workspace.Options{Shell: d, Announcers: announcers})
	m.Init()
	return m
}

func TestStateFileMirrorsWorkspaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "mirror.json")
	sf := NewStateFile(path, nil)
	sf.now = func() time.Time { return time.Unix(42, 0).UTC() }

	m := newManager(sf)
	m.Reconcile([]string{"main", "web", "chat"})
	m.SwitchTo(m.Registry().ByIndex(3), true)

	st, err := ReadState(path)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Current)
	assert.Equal(t, []StateEntry{
		{Index: 1, Name: "main"},
		{Index: 2, Name: "web"},
		{Index: 3, Name: "chat", Active: true},
	}, st.Workspaces)
	assert.True(t, st.UpdatedAt.Equal(time.Unix(42, 0)))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestStateFileTracksRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	sf := NewStateFile(path, nil)
	m := newManager(sf)
	m.Reconcile([]string{"a", "b"})

	require.NoError(t, m.RemoveIndex(1))

	st, err := ReadState(path)
	require.NoError(t, err)
	assert.Equal(t, []StateEntry{{Index: 1, Name: "b", Active: true}}, st.Workspaces)
	assert.Equal(t, 1, st.Current)
}

func TestStateFileClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	sf := NewStateFile(path, nil)
	newManager(sf)
	require.FileExists(t, path)

	require.NoError(t, sf.Close())
	assert.NoFileExists(t, path)
	assert.NoError(t, sf.Close())
}

func TestReadStateErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadState(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = ReadState(bad)
	assert.Error(t, err)
}

func TestRecorderSeesLifecycle(t *testing.T) {
	rec := &Recorder{}
	m := newManager(rec)

	assert.Equal(t, []string{"create 1", "active 1=true"}, rec.Calls)
	rec.Reset()

	m.Reconcile([]string{"1", "2"})
	require.NoError(t, m.RenameIndex(2, "two"))
	assert.Equal(t, []string{"create 2", "name 2->two"}, rec.Calls)
	assert.Equal(t, []string{"1", "two"}, rec.Names())
	assert.Equal(t, []string{"1"}, rec.Active())
}

func TestRecorderActivateSwitches(t *testing.T) {
	rec := &Recorder{}
	m := newManager(rec)
	m.Reconcile([]string{"1", "2"})

	require.True(t, rec.Activate("2"))
	assert.Equal(t, "2", m.Registry().Current().Name())
	assert.Equal(t, []string{"2"}, rec.Active())

	assert.False(t, rec.Activate("nope"))
}
