package workspace

import (
	"slices"
)

type fakeTree struct {
	enabled   bool
	destroyed bool
}

func (t *fakeTree) SetEnabled(enabled bool) { t.enabled = enabled }
func (t *fakeTree) Destroy() { t.destroyed = true }

type fakeView struct {
	id          int
	ws          ID
	omnipresent bool
}

// fakeShell is a minimal window manager: a flat view list plus call counters.
type fakeShell struct {
	trees   map[ID]*fakeTree
	views   []*fakeView
	active  *fakeView
	focused []ID
	osd     []int
	overlay int
}

func newFakeShell() *fakeShell {
	return &fakeShell{trees: map[ID]*fakeTree{}}
}

func (s *fakeShell) NewSceneTree(id ID) SceneTree {
	t := &fakeTree{}
	s.trees[id] = t
	return t
}

func (s *fakeShell) Occupied(id ID) bool {
	return slices.ContainsFunc(s.views, func(v *fakeView) bool {
		return v.ws == id && !v.omnipresent
	})
}

func (s *fakeShell) ReassignViews(from, to ID) {
	for _, v := range s.views {
		if v.ws == from {
			v.ws = to
		}
	}
}

func (s *fakeShell) MigrateOmnipresent(to ID) {
	for _, v := range s.views {
		if v.omnipresent {
			v.ws = to
		}
	}
}

func (s *fakeShell) ActiveViewOmnipresent() bool {
	return s.active != nil && s.active.omnipresent
}

func (s *fakeShell) FocusTopmost(id ID) { s.focused = append(s.focused, id) }
func (s *fakeShell) RefreshCursorFocus() {}
func (s *fakeShell) UpdateTopLayerVisibility() {}
func (s *fakeShell) ShowOSD(_ []string, cur int) { s.osd = append(s.osd, cur) }
func (s *fakeShell) FinishOverlay() { s.overlay++ }

func (s *fakeShell) addView(ws *Workspace) *fakeView {
	v := &fakeView{id: len(s.views) + 1, ws: ws.ID()}
	s.views = append(s.views, v)
	return v
}

type fakeHandle struct {
	name      string
	active    bool
	destroyed bool
	activate  func()
}

func (h *fakeHandle) SetName(name string) { h.name = name }
func (h *fakeHandle) SetActive(active bool) { h.active = active }
func (h *fakeHandle) Destroy() { h.destroyed = true }

type fakeAnnouncer struct {
	handles []*fakeHandle
}

func (a *fakeAnnouncer) CreateWorkspace(name string, onActivate func()) Handle {
	h := &fakeHandle{name: name, activate: onActivate}
	a.handles = append(a.handles, h)
	return h
}

func (a *fakeAnnouncer) live() []*fakeHandle {
	var out []*fakeHandle
	for _, h := range a.handles {
		if !h.destroyed {
			out = append(out, h)
		}
	}
	return out
}

type countingNotifier struct {
	changed     int
	listChanged int
}

func (n *countingNotifier) WorkspaceChanged() { n.changed++ }
func (n *countingNotifier) WorkspaceListChanged() { n.listChanged++ }

type memStore struct {
	names []string
	saves int
	err   error
}

func (s *memStore) Load() ([]string, bool) {
	if len(s.names) == 0 {
		return nil, false
	}
	return slices.Clone(s.names), true
}

func (s *memStore) Save(names []string) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.names = slices.Clone(names)
	return nil
}

type harness struct {
	m        *Manager
	shell    *fakeShell
	ann      *fakeAnnouncer
	notifier *countingNotifier
	store    *memStore
}

func newHarness() *harness {
	h := &harness{
		shell:    newFakeShell(),
		ann:      &fakeAnnouncer{},
		notifier: &countingNotifier{},
		store:    &memStore{},
	}
	h.m = NewManager(Options{
		Shell:      h.shell,
		Announcers: []Announcer{h.ann},
		Store:      h.store,
		Notifier:   h.notifier,
	})
	h.m.Init()
	return h
}

// withNames grows the registry to the given names without going through
// the store.
func (h *harness) withNames(names ...string) *harness {
	h.m.Reconcile(names)
	h.notifier.changed, h.notifier.listChanged = 0, 0
	return h
}
