package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sartwc/sartwc/internal/ipc"
)

const reconnectDelay = 2 * time.Second

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdd
	modeRename
)

// snapshotMsg carries a fresh copy of compositor state.
type snapshotMsg struct {
	workspaces *ipc.WorkspacesData
	views      []ipc.ViewInfo
	err        error
}

type eventMsg struct {
	ev ipc.Event
}

type streamClosedMsg struct {
	err error
}

type resubscribeMsg struct{}

// actionDoneMsg is sent after a command against the compositor completes.
type actionDoneMsg struct {
	text string
	err  error
}

type model struct {
	ctx    context.Context
	client Client
	stream *stream

	data        *ipc.WorkspacesData
	views       []ipc.ViewInfo
	selected    int // 0-based
	lastCurrent int
	connected   bool
	lastEvent   string
	status      string
	err         error

	mode  inputMode
	input textinput.Model

	width  int
	height int
}

func newModel(ctx context.Context, client Client) model {
	ti := textinput.New()
	ti.Prompt = "name: "
	ti.CharLimit = 64
	ti.Cursor.SetMode(cursor.CursorStatic)
	return model{
		ctx:    ctx,
		client: client,
		input:  ti,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitForEvent())
}

func (m model) refresh() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		ws, err := client.Workspaces(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		views, err := client.Views(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{workspaces: ws, views: views.Views}
	}
}

func (m model) waitForEvent() tea.Cmd {
	s := m.stream
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-s.events
		if !ok {
			return streamClosedMsg{err: s.err}
		}
		return eventMsg{ev: ev}
	}
}

func (m model) run(text string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{text: text, err: fn(ctx)}
	}
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.err = msg.err
			return m, nil
		}
		m.connected = true
		m.err = nil
		m.data = msg.workspaces
		m.views = msg.views
		if m.data.CurrentWorkspace != m.lastCurrent {
			m.lastCurrent = m.data.CurrentWorkspace
			m.selected = m.data.CurrentWorkspace - 1
		}
		m.clampSelection()
		return m, nil

	case eventMsg:
		m.lastEvent = describeEvent(msg.ev)
		return m, tea.Batch(m.refresh(), m.waitForEvent())

	case streamClosedMsg:
		m.connected = false
		m.err = msg.err
		if m.err == nil {
			m.err = errors.New("event stream closed")
		}
		m.stream = nil
		return m, tea.Tick(reconnectDelay, func(time.Time) tea.Msg { return resubscribeMsg{} })

	case resubscribeMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		m.stream = subscribe(m.ctx, m.client)
		return m, tea.Batch(m.refresh(), m.waitForEvent())

	case actionDoneMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
		} else {
			m.status = msg.text
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.selected--
		m.clampSelection()
	case "down", "j":
		m.selected++
		m.clampSelection()
	case "g":
		return m, m.refresh()
	}

	if m.data == nil || len(m.data.Workspaces) == 0 {
		return m, nil
	}
	index := m.selected + 1
	name := m.data.Workspaces[m.selected].Name

	switch msg.String() {
	case "enter":
		return m, m.run("switched to "+name, func(ctx context.Context) error {
			return m.client.Action(ctx, "GoToDesktop", map[string]string{"to": fmt.Sprint(index)})
		})
	case "left", "h":
		return m, m.run("moved left", func(ctx context.Context) error {
			return m.client.Action(ctx, "GoToDesktop", map[string]string{"to": "left"})
		})
	case "right", "l":
		return m, m.run("moved right", func(ctx context.Context) error {
			return m.client.Action(ctx, "GoToDesktop", map[string]string{"to": "right"})
		})
	case "o":
		return m, m.run("toggled omnipresent", func(ctx context.Context) error {
			return m.client.Action(ctx, "ToggleOmnipresent", nil)
		})
	case "d", "delete":
		return m, m.run("removed "+name, func(ctx context.Context) error {
			return m.client.RemoveWorkspace(ctx, index)
		})
	case "a":
		m.mode = modeAdd
		m.input.Reset()
		m.input.Placeholder = "next number"
		return m, m.input.Focus()
	case "r":
		m.mode = modeRename
		m.input.Reset()
		m.input.Placeholder = ""
		m.input.SetValue(name)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		if mode == modeAdd {
			return m, m.run("added workspace", func(ctx context.Context) error {
				return m.client.AddWorkspace(ctx, value)
			})
		}
		if value == "" || m.data == nil {
			return m, nil
		}
		index := m.selected + 1
		return m, m.run("renamed to "+value, func(ctx context.Context) error {
			return m.client.RenameWorkspace(ctx, index, value)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) clampSelection() {
	n := 0
	if m.data != nil {
		n = len(m.data.Workspaces)
	}
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// viewsOn returns the views on the 1-based workspace index.
func (m model) viewsOn(index int) []ipc.ViewInfo {
	var out []ipc.ViewInfo
	for _, v := range m.views {
		if v.Workspace == index {
			out = append(out, v)
		}
	}
	return out
}

func describeEvent(ev ipc.Event) string {
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{ev.Name}
	for _, k := range keys {
		parts = append(parts, k+"="+ev.Fields[k])
	}
	return strings.Join(parts, " ")
}
