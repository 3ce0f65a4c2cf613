package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartwc/sartwc/internal/ipc"
)

type fakeClient struct {
	data   *ipc.WorkspacesData
	views  []ipc.ViewInfo
	calls  []string
	events []ipc.Event
	err    error
}

func (f *fakeClient) Workspaces(context.Context) (*ipc.WorkspacesData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeClient) Views(context.Context) (*ipc.ViewsData, error) {
	return &ipc.ViewsData{Views: f.views}, nil
}

func (f *fakeClient) AddWorkspace(_ context.Context, name string) error {
	f.calls = append(f.calls, "add "+name)
	return nil
}

func (f *fakeClient) RenameWorkspace(_ context.Context, index int, name string) error {
	f.calls = append(f.calls, fmt.Sprintf("rename %d %s", index, name))
	return nil
}

func (f *fakeClient) RemoveWorkspace(_ context.Context, index int) error {
	f.calls = append(f.calls, fmt.Sprintf("remove %d", index))
	return nil
}

func (f *fakeClient) Action(_ context.Context, name string, args map[string]string) error {
	f.calls = append(f.calls, name+" "+args["to"])
	return nil
}

func (f *fakeClient) Subscribe(ctx context.Context, fn func(ipc.Event)) error {
	for _, ev := range f.events {
		fn(ev)
	}
	return errors.New("connection reset")
}

func newFake() *fakeClient {
	return &fakeClient{
		data: &ipc.WorkspacesData{
			CurrentWorkspace:     1,
			CurrentWorkspaceName: "main",
			Workspaces: []ipc.WorkspaceInfo{
				{Index: 1, Name: "main", Active: true},
				{Index: 2, Name: "web"},
			},
		},
		views: []ipc.ViewInfo{
			{AppID: "foot", Title: "shell", Workspace: 1, W: 800, H: 600, Focused: true},
			{AppID: "firefox", Title: "docs", Workspace: 2},
		},
	}
}

// loaded returns a model that has processed one snapshot.
func loaded(t *testing.T, f *fakeClient) model {
	t.Helper()
	m := newModel(context.Background(), f)
	return update(t, m, m.refresh()())
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

// press sends a key and runs the resulting command once.
func press(t *testing.T, m model, key tea.KeyMsg) (model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(key)
	var msg tea.Msg
	if cmd != nil {
		msg = cmd()
	}
	return next.(model), msg
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSnapshotSelectsCurrentWorkspace(t *testing.T) {
	f := newFake()
	f.data.CurrentWorkspace = 2
	m := loaded(t, f)

	assert.True(t, m.connected)
	assert.Equal(t, 1, m.selected)

	// Manual selection survives refreshes that keep the same current.
	m, _ = press(t, m, runes("k"))
	m = update(t, m, m.refresh()())
	assert.Equal(t, 0, m.selected)
}

func TestSelectionIsClamped(t *testing.T) {
	m := loaded(t, newFake())
	m, _ = press(t, m, runes("k"))
	assert.Equal(t, 0, m.selected)
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 1, m.selected)
}

func TestEnterSwitchesToSelected(t *testing.T) {
	f := newFake()
	m := loaded(t, f)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, msg := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.IsType(t, actionDoneMsg{}, msg)
	assert.Equal(t, []string{"GoToDesktop 2"}, f.calls)

	m = update(t, m, msg)
	assert.Equal(t, "switched to web", m.status)
}

func TestRelativeAndRemoveKeys(t *testing.T) {
	f := newFake()
	m := loaded(t, f)
	m, _ = press(t, m, runes("l"))
	m, _ = press(t, m, runes("h"))
	m, _ = press(t, m, runes("j"))
	_, _ = press(t, m, runes("d"))
	assert.Equal(t, []string{"GoToDesktop right", "GoToDesktop left", "remove 2"}, f.calls)
}

func TestAddWorkspaceThroughInput(t *testing.T) {
	f := newFake()
	m := loaded(t, f)

	m, _ = press(t, m, runes("a"))
	assert.Equal(t, modeAdd, m.mode)
	for _, r := range "chat" {
		m, _ = press(t, m, runes(string(r)))
	}
	assert.Equal(t, "chat", m.input.Value())

	// Navigation keys are typed, not interpreted, while the input is open.
	assert.Empty(t, f.calls)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, []string{"add chat"}, f.calls)
}

func TestRenameStartsWithCurrentName(t *testing.T) {
	f := newFake()
	m := loaded(t, f)

	m, _ = press(t, m, runes("r"))
	assert.Equal(t, modeRename, m.mode)
	assert.Equal(t, "main", m.input.Value())

	m, _ = press(t, m, runes("2"))
	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"rename 1 main2"}, f.calls)
}

func TestEscapeCancelsInput(t *testing.T) {
	f := newFake()
	m := loaded(t, f)
	m, _ = press(t, m, runes("a"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, f.calls)
}

func TestSnapshotErrorMarksDisconnected(t *testing.T) {
	f := newFake()
	m := loaded(t, f)
	f.err = errors.New("dial unix: no such file")
	m = update(t, m, m.refresh()())

	assert.False(t, m.connected)
	assert.Contains(t, m.View(), "compositor not reachable")
	assert.Contains(t, m.View(), "no such file")
}

func TestEventsRefreshAndStreamCloses(t *testing.T) {
	f := newFake()
	f.events = []ipc.Event{{Name: ipc.EventWorkspaceChanged, Fields: map[string]string{"current": "2"}}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newModel(ctx, f)
	m.stream = subscribe(ctx, f)

	msg := m.waitForEvent()()
	require.IsType(t, eventMsg{}, msg)
	m = update(t, m, msg)
	assert.Equal(t, "workspace-changed current=2", m.lastEvent)

	msg = m.waitForEvent()()
	closed, ok := msg.(streamClosedMsg)
	require.True(t, ok)
	assert.EqualError(t, closed.err, "connection reset")

	m = update(t, m, closed)
	assert.False(t, m.connected)
	assert.Nil(t, m.stream)
}

func TestViewListsWorkspacesAndViews(t *testing.T) {
	m := loaded(t, newFake())
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()

	assert.Contains(t, out, "compositor connected")
	assert.Contains(t, out, "1 main")
	assert.Contains(t, out, "2 web")
	assert.Contains(t, out, "Views on main")
	assert.Contains(t, out, "foot")
	assert.Contains(t, out, "[focused]")
	assert.NotContains(t, out, "firefox")
}

func TestViewTruncatesLongTitles(t *testing.T) {
	f := newFake()
	f.views[0].Title = strings.Repeat("x", 300)
	m := loaded(t, f)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	for _, line := range strings.Split(m.View(), "\n") {
		assert.NotContains(t, line, strings.Repeat("x", 100))
	}
}
