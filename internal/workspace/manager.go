package workspace

import (
	"fmt"
	"log/slog"
	"strconv"
)

// InitialName is the name of the single workspace every session starts with.
const InitialName = "1"

// Options wires a Manager to its collaborators.
type Options struct {
	Shell      Shell
	Announcers []Announcer
	// Store persists the workspace list; nil disables persistence.
	Store    Persister
	Notifier Notifier
	Logger   *slog.Logger
}

// Manager is the only writer of the Registry. All methods must be called from
// the compositor's event loop.
type Manager struct {
	reg        *Registry
	shell      Shell
	announcers []Announcer
	store      Persister
	notifier   Notifier
	logger     *slog.Logger
}

// NewManager creates a manager with an empty registry. Call Init before use.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Manager{
		reg:        NewRegistry(),
		shell:      opts.Shell,
		announcers: opts.Announcers,
		store:      opts.Store,
		notifier:   notifier,
		logger:     logger,
	}
}

// Registry exposes the read-only view of workspace state.
func (m *Manager) Registry() *Registry {
	return m.reg
}

// SetNotifier replaces the change notification sink.
func (m *Manager) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	m.notifier = n
}

// Init starts a fresh session with exactly one workspace and overwrites any
// previously persisted list. Persisted and configured lists only apply on
// Reconfigure.
func (m *Manager) Init() {
	if m.reg.Len() > 0 {
		return
	}
	ws := m.create(InitialName)
	m.reg.current = ws
	ws.tree.SetEnabled(true)
	for _, h := range ws.handles {
		h.SetActive(true)
	}
	m.persist()
}

// SwitchTo makes target the current workspace. updateFocus is false only
// when the switch is caused by focusing a view, to avoid refocusing from
// inside the focus path.
func (m *Manager) SwitchTo(target *Workspace, updateFocus bool) {
	if target == nil || target == m.reg.current {
		return
	}
	if m.reg.position(target) < 0 {
		m.logger.Warn("refusing to switch to detached workspace", "name", target.name)
		return
	}
	old := m.reg.current

	if old != nil {
		old.tree.SetEnabled(false)
		for _, h := range old.handles {
			h.SetActive(false)
		}
	}

	m.shell.MigrateOmnipresent(target.id)
	target.tree.SetEnabled(true)

	m.reg.last = old
	m.reg.current = target

	if updateFocus && !m.shell.ActiveViewOmnipresent() {
		m.shell.FocusTopmost(target.id)
	}

	m.shell.ShowOSD(m.reg.Names(), m.reg.IndexOf(target))
	m.shell.RefreshCursorFocus()
	m.shell.UpdateTopLayerVisibility()

	for _, h := range target.handles {
		h.SetActive(true)
	}

	m.logger.Debug("switched workspace", "from", old.Name(), "to", target.name)
	m.notifier.WorkspaceChanged()
}

// Find resolves a navigation token relative to the current workspace.
func (m *Manager) Find(token string, wrap bool) *Workspace {
	ws := m.reg.Find(m.reg.current, token, wrap, func(w *Workspace) bool {
		return m.shell.Occupied(w.id)
	})
	if ws == nil {
		m.logger.Debug("workspace not found", "token", token)
	}
	return ws
}

// AddNamed appends a workspace without changing the current one.
func (m *Manager) AddNamed(name string) (*Workspace, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if m.reg.current == nil {
		return nil, ErrNotInitialized
	}
	ws := m.create(name)
	m.logger.Info("added workspace", "name", name, "index", m.reg.IndexOf(ws))
	m.persist()
	m.notifier.WorkspaceListChanged()
	return ws, nil
}

// NextName returns the name workspace-add uses when none is given.
func (m *Manager) NextName() string {
	return strconv.Itoa(m.reg.Len() + 1)
}

// RenameIndex renames the workspace at the 1-based index.
func (m *Manager) RenameIndex(index int, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ws := m.reg.ByIndex(index)
	if ws == nil {
		return fmt.Errorf("rename index %d: %w", index, ErrNoSuchWorkspace)
	}
	if ws.name == name {
		return nil
	}
	m.logger.Info("renamed workspace", "index", index, "from", ws.name, "to", name)
	m.rename(ws, name)
	m.persist()
	m.notifier.WorkspaceListChanged()
	return nil
}

// RemoveIndex destroys the workspace at the 1-based index. Its views move to
// the following workspace, or to the first one when it was the last.
func (m *Manager) RemoveIndex(index int) error {
	if m.reg.Len() <= 1 {
		return ErrLastWorkspace
	}
	ws := m.reg.ByIndex(index)
	if ws == nil {
		return fmt.Errorf("remove index %d: %w", index, ErrNoSuchWorkspace)
	}
	fallback := m.reg.ByIndex(index + 1)
	if fallback == nil {
		fallback = m.reg.ByIndex(1)
	}
	if fallback == ws {
		return ErrLastWorkspace
	}

	m.shell.FinishOverlay()
	m.evacuate(ws, fallback)
	m.destroy(ws)
	m.logger.Info("removed workspace", "name", ws.name, "index", index)

	m.persist()
	m.notifier.WorkspaceListChanged()
	return nil
}

// Reconcile brings the live registry in line with the desired name list.
// Existing workspaces are renamed in place so they keep their identity,
// views and handles; extra ones are appended and surplus ones destroyed.
// State is persisted and listeners notified at most once per call.
func (m *Manager) Reconcile(desired []string) {
	if m.reg.current == nil {
		return
	}
	changed := false
	live := len(m.reg.workspaces)

	for i, name := range desired {
		if i >= live {
			m.logger.Debug("adding workspace", "name", name)
			m.create(name)
			changed = true
			continue
		}
		ws := m.reg.workspaces[i]
		if ws.name != name {
			m.logger.Debug("renaming workspace", "from", ws.name, "to", name)
			m.rename(ws, name)
			changed = true
		}
	}

	if len(desired) > 0 && len(desired) < m.reg.Len() {
		m.shell.FinishOverlay()
		head := m.reg.workspaces[0]
		surplus := append([]*Workspace(nil), m.reg.workspaces[len(desired):]...)
		for _, ws := range surplus {
			m.logger.Debug("destroying workspace", "name", ws.name)
			m.evacuate(ws, head)
			m.destroy(ws)
			changed = true
		}
	}

	if changed {
		m.persist()
		m.notifier.WorkspaceListChanged()
	}
}

// Reconfigure reconciles against the previous session's persisted list when
// one exists, and against the configured names otherwise.
func (m *Manager) Reconfigure(configured []string) {
	desired := configured
	if m.store != nil {
		if names, ok := m.store.Load(); ok {
			desired = names
		}
	}
	m.Reconcile(desired)
}

// Destroy tears down every workspace. Used at shutdown.
func (m *Manager) Destroy() {
	for _, ws := range append([]*Workspace(nil), m.reg.workspaces...) {
		m.destroy(ws)
	}
	m.reg.current = nil
	m.reg.last = nil
}

func (m *Manager) create(name string) *Workspace {
	ws := m.reg.append(name)
	ws.tree = m.shell.NewSceneTree(ws.id)
	ws.tree.SetEnabled(false)
	for _, a := range m.announcers {
		ws.handles = append(ws.handles, a.CreateWorkspace(name, func() {
			m.logger.Info("activate requested by peer", "name", ws.name)
			m.SwitchTo(ws, true)
		}))
	}
	return ws
}

func (m *Manager) rename(ws *Workspace, name string) {
	ws.name = name
	for _, h := range ws.handles {
		h.SetName(name)
	}
}

// evacuate moves everything off ws so it can be destroyed: views go to
// fallback, and current/last stop pointing at it.
func (m *Manager) evacuate(ws, fallback *Workspace) {
	m.shell.ReassignViews(ws.id, fallback.id)
	if m.reg.current == ws {
		m.SwitchTo(fallback, true)
	}
	if m.reg.last == ws {
		m.reg.last = fallback
	}
}

func (m *Manager) destroy(ws *Workspace) {
	m.reg.remove(ws)
	if ws.tree != nil {
		ws.tree.Destroy()
	}
	for _, h := range ws.handles {
		h.Destroy()
	}
	ws.handles = nil
}

func (m *Manager) persist() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.reg.Names()); err != nil {
		m.logger.Error("failed to persist workspaces", "error", err)
	}
}
