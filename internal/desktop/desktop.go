// Package desktop is a headless model of the compositor's window management:
// views in stacking order, keyboard focus, per-workspace scene trees, outputs
// and the workspace switch OSD. It implements workspace.Shell.
package desktop

import (
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/sartwc/sartwc/internal/workspace"
)

// Listener is told about focus and view lifecycle changes.
type Listener interface {
	// FocusChanged is called with nil when nothing holds focus.
	FocusChanged(v *View)
	ViewMapped(v *View)
	ViewUnmapped(v *View)
}

type nopListener struct{}

func (nopListener) FocusChanged(*View) {}
func (nopListener) ViewMapped(*View)   {}
func (nopListener) ViewUnmapped(*View) {}

// Options configures a Desktop.
type Options struct {
	// PopupTime is how long the workspace OSD stays up. Zero disables it.
	PopupTime time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// Desktop must only be used from the event loop.
type Desktop struct {
	views   []*View // topmost first
	active  *View
	grabbed *View
	hovered *View
	pointer struct{ x, y int }

	trees   map[workspace.ID]*sceneTree
	outputs []*Output

	topLayerHidden map[string]bool
	osd            OSD
	overlay        *Geometry
	popupTime      time.Duration

	listener Listener
	switchTo func(workspace.ID)

	nextID ViewID
	now    func() time.Time
	logger *slog.Logger
}

var _ workspace.Shell = (*Desktop)(nil)

// New creates an empty desktop.
func New(opts Options) *Desktop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Desktop{
		trees:          make(map[workspace.ID]*sceneTree),
		topLayerHidden: make(map[string]bool),
		popupTime:      opts.PopupTime,
		listener:       nopListener{},
		nextID:         1,
		now:            now,
		logger:         logger,
	}
}

// SetListener installs the receiver for focus and view events.
func (d *Desktop) SetListener(l Listener) {
	if l == nil {
		l = nopListener{}
	}
	d.listener = l
}

// SetWorkspaceSwitcher installs the callback used when focus lands on a view
// whose workspace is hidden. It must switch without refocusing.
func (d *Desktop) SetWorkspaceSwitcher(fn func(workspace.ID)) {
	d.switchTo = fn
}

// SetPopupTime updates the OSD duration on reconfigure.
func (d *Desktop) SetPopupTime(t time.Duration) {
	d.popupTime = t
}

// Views iterates views in stacking order, topmost first.
func (d *Desktop) Views() iter.Seq[*View] {
	return slices.Values(d.views)
}

// ViewByID returns the view with id, or nil.
func (d *Desktop) ViewByID(id ViewID) *View {
	for _, v := range d.views {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// ViewByExternal returns the view mirroring the given foreign window.
func (d *Desktop) ViewByExternal(xid uint32) *View {
	for _, v := range d.views {
		if v.External == xid {
			return v
		}
	}
	return nil
}

// ActiveView returns the focused view, or nil.
func (d *Desktop) ActiveView() *View {
	return d.active
}

// CurrentWorkspace returns the workspace whose tree is enabled.
func (d *Desktop) CurrentWorkspace() workspace.ID {
	for id, t := range d.trees {
		if t.enabled {
			return id
		}
	}
	return 0
}

// MapView creates a mapped view on top of the stack and focuses it. A zero
// spec.Workspace places it on the current workspace.
func (d *Desktop) MapView(spec ViewSpec) *View {
	ws := spec.Workspace
	if ws == 0 {
		ws = d.CurrentWorkspace()
	}
	v := &View{
		ID:          d.nextID,
		AppID:       spec.AppID,
		Title:       spec.Title,
		Current:     spec.Geometry,
		Mapped:      true,
		Maximized:   spec.Maximized,
		Fullscreen:  spec.Fullscreen,
		Tiled:       spec.Tiled,
		Omnipresent: spec.Sticky,
		Workspace:   ws,
		External:    spec.External,
	}
	d.nextID++
	v.Output = d.outputFor(v.Current)
	d.views = slices.Insert(d.views, 0, v)

	d.logger.Debug("view mapped", "view", v.ID, "app_id", v.AppID)
	d.listener.ViewMapped(v)
	if d.visible(v) {
		d.FocusView(v)
	}
	d.UpdateTopLayerVisibility()
	return v
}

// UnmapView removes a view. If it held focus, the topmost view on the
// current workspace takes over.
func (d *Desktop) UnmapView(v *View) {
	i := slices.Index(d.views, v)
	if i < 0 {
		return
	}
	d.views = slices.Delete(d.views, i, i+1)
	v.Mapped = false
	if d.grabbed == v {
		d.grabbed = nil
	}
	if d.hovered == v {
		d.hovered = nil
	}

	d.logger.Debug("view unmapped", "view", v.ID, "app_id", v.AppID)
	d.listener.ViewUnmapped(v)
	if d.active == v {
		d.active = nil
		d.FocusTopmost(d.CurrentWorkspace())
		if d.active == nil {
			d.listener.FocusChanged(nil)
		}
	}
	d.UpdateTopLayerVisibility()
}

// SetTitle updates a view's title.
func (d *Desktop) SetTitle(v *View, title string) {
	v.Title = title
}

// SetGeometry moves or resizes a view.
func (d *Desktop) SetGeometry(v *View, g Geometry) {
	v.Current = g
	v.Output = d.outputFor(g)
	d.UpdateTopLayerVisibility()
}

// SetMinimized minimizes or restores a view.
func (d *Desktop) SetMinimized(v *View, minimized bool) {
	if v.Minimized == minimized {
		return
	}
	v.Minimized = minimized
	if minimized && d.active == v {
		d.active = nil
		d.FocusTopmost(d.CurrentWorkspace())
	}
	d.UpdateTopLayerVisibility()
}

// SetFullscreen toggles fullscreen state.
func (d *Desktop) SetFullscreen(v *View, fullscreen bool) {
	v.Fullscreen = fullscreen
	d.UpdateTopLayerVisibility()
}

// SetMaximized toggles maximized state.
func (d *Desktop) SetMaximized(v *View, maximized bool) {
	v.Maximized = maximized
}

// SetOmnipresent pins or unpins a view across workspaces. A pinned view is
// moved to the current workspace so it stays with the user.
func (d *Desktop) SetOmnipresent(v *View, on bool) {
	v.Omnipresent = on
	if on {
		if cur := d.CurrentWorkspace(); cur != 0 {
			v.Workspace = cur
		}
	}
}

// MoveToWorkspace reassigns a view. A focused view that becomes hidden
// gives focus to the topmost view on the current workspace.
func (d *Desktop) MoveToWorkspace(v *View, ws workspace.ID) {
	if v.Workspace == ws {
		return
	}
	v.Workspace = ws
	if d.active == v && !d.visible(v) {
		d.active = nil
		d.FocusTopmost(d.CurrentWorkspace())
	}
	d.UpdateTopLayerVisibility()
}

// BeginGrab marks v as being moved interactively. A grabbed view follows
// workspace switches.
func (d *Desktop) BeginGrab(v *View) {
	d.grabbed = v
}

// EndGrab releases the interactive move.
func (d *Desktop) EndGrab() {
	d.grabbed = nil
	d.FinishOverlay()
}

// ShowOverlay displays the snap preview box during a grab.
func (d *Desktop) ShowOverlay(g Geometry) {
	d.overlay = &g
}

// Overlay returns the snap preview box, if one is shown.
func (d *Desktop) Overlay() (Geometry, bool) {
	if d.overlay == nil {
		return Geometry{}, false
	}
	return *d.overlay, true
}

// MovePointer updates the pointer position and cursor focus.
func (d *Desktop) MovePointer(x, y int) {
	d.pointer.x, d.pointer.y = x, y
	d.RefreshCursorFocus()
}

// Hovered returns the view under the pointer.
func (d *Desktop) Hovered() *View {
	return d.hovered
}

// TopLayerHidden reports whether panels on the output are hidden behind a
// fullscreen view.
func (d *Desktop) TopLayerHidden(output string) bool {
	return d.topLayerHidden[output]
}

// visible reports whether v is on the current workspace.
func (d *Desktop) visible(v *View) bool {
	t := d.trees[v.Workspace]
	return t != nil && t.enabled
}

// NewSceneTree creates the subtree holding a workspace's views.
func (d *Desktop) NewSceneTree(id workspace.ID) workspace.SceneTree {
	t := &sceneTree{id: id, desktop: d}
	d.trees[id] = t
	return t
}

// Occupied reports whether ws hosts a view that is not omnipresent.
func (d *Desktop) Occupied(ws workspace.ID) bool {
	return slices.ContainsFunc(d.views, func(v *View) bool {
		return v.Workspace == ws && !v.Omnipresent
	})
}

// ReassignViews moves every view on from to to.
func (d *Desktop) ReassignViews(from, to workspace.ID) {
	for _, v := range d.views {
		if v.Workspace == from {
			v.Workspace = to
		}
	}
}

// MigrateOmnipresent moves pinned views and the grabbed view to ws.
func (d *Desktop) MigrateOmnipresent(ws workspace.ID) {
	for _, v := range d.views {
		if v.Omnipresent || v == d.grabbed {
			v.Workspace = ws
		}
	}
}

// ActiveViewOmnipresent reports whether the focused view is pinned.
func (d *Desktop) ActiveViewOmnipresent() bool {
	return d.active != nil && d.active.Omnipresent
}

// FocusTopmost focuses the highest focusable view on ws, or clears focus.
func (d *Desktop) FocusTopmost(ws workspace.ID) {
	for _, v := range d.views {
		if v.Workspace == ws && v.Focusable() {
			d.FocusView(v)
			return
		}
	}
	d.FocusView(nil)
}

// FocusView gives keyboard focus to v and raises it. Focusing a view on a
// hidden workspace switches to that workspace first.
func (d *Desktop) FocusView(v *View) {
	if v == nil {
		if d.active != nil {
			d.active = nil
			d.listener.FocusChanged(nil)
		}
		return
	}
	if !v.Focusable() {
		return
	}
	if !d.visible(v) && d.switchTo != nil {
		d.switchTo(v.Workspace)
	}
	d.raise(v)
	if d.active == v {
		return
	}
	d.active = v
	d.logger.Debug("focus changed", "view", v.ID, "app_id", v.AppID)
	d.listener.FocusChanged(v)
}

func (d *Desktop) raise(v *View) {
	i := slices.Index(d.views, v)
	if i <= 0 {
		return
	}
	d.views = slices.Delete(d.views, i, i+1)
	d.views = slices.Insert(d.views, 0, v)
}

// RefreshCursorFocus recomputes the view under the pointer after the set of
// visible views changed.
func (d *Desktop) RefreshCursorFocus() {
	d.hovered = nil
	for _, v := range d.views {
		if d.visible(v) && !v.Minimized && v.Current.contains(d.pointer.x, d.pointer.y) {
			d.hovered = v
			return
		}
	}
}

// UpdateTopLayerVisibility hides the top layer on outputs whose topmost
// visible view is fullscreen.
func (d *Desktop) UpdateTopLayerVisibility() {
	clear(d.topLayerHidden)
	seen := make(map[*Output]bool)
	for _, v := range d.views {
		if v.Output == nil || seen[v.Output] || !d.visible(v) || v.Minimized {
			continue
		}
		seen[v.Output] = true
		if v.Fullscreen {
			d.topLayerHidden[v.Output.Name] = true
		}
	}
}

// FinishOverlay hides the snap preview box.
func (d *Desktop) FinishOverlay() {
	d.overlay = nil
}
