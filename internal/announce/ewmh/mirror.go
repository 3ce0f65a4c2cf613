package ewmh

import (
	"log/slog"

	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/workspace"
	"github.com/sartwc/sartwc/internal/x11"
)

// Mirror keeps one desktop view per X client window. Apply must run on the
// event loop.
type Mirror struct {
	desktop *desktop.Desktop
	reg     *workspace.Registry
	logger  *slog.Logger
}

// NewMirror creates a mirror that maps X desktops onto registry positions.
func NewMirror(d *desktop.Desktop, reg *workspace.Registry, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{desktop: d, reg: reg, logger: logger}
}

// Apply reconciles mirrored views with the current client list: new windows
// are mapped, known ones updated and vanished ones unmapped.
func (m *Mirror) Apply(windows []x11.ClientWindow) {
	seen := make(map[uint32]bool, len(windows))
	for _, w := range windows {
		if w.ID == 0 {
			continue
		}
		seen[w.ID] = true
		geom := desktop.Geometry{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}

		v := m.desktop.ViewByExternal(w.ID)
		if v == nil {
			m.desktop.MapView(desktop.ViewSpec{
				AppID:      w.AppID,
				Title:      w.Title,
				Geometry:   geom,
				Workspace:  m.workspaceFor(w.Desktop),
				Maximized:  w.Maximized,
				Fullscreen: w.Fullscreen,
				Sticky:     w.Desktop < 0,
				External:   w.ID,
			})
			continue
		}
		if v.Title != w.Title {
			m.desktop.SetTitle(v, w.Title)
		}
		if v.Current != geom {
			m.desktop.SetGeometry(v, geom)
		}
		if v.Minimized != w.Hidden {
			m.desktop.SetMinimized(v, w.Hidden)
		}
		if v.Fullscreen != w.Fullscreen {
			m.desktop.SetFullscreen(v, w.Fullscreen)
		}
		if v.Maximized != w.Maximized {
			m.desktop.SetMaximized(v, w.Maximized)
		}
	}

	var gone []*desktop.View
	for v := range m.desktop.Views() {
		if v.External != 0 && !seen[v.External] {
			gone = append(gone, v)
		}
	}
	for _, v := range gone {
		m.desktop.UnmapView(v)
	}
	if len(gone) > 0 {
		m.logger.Debug("unmapped vanished X windows", "count", len(gone))
	}
}

// workspaceFor maps a 0-based X desktop to a workspace. Sticky windows and
// out-of-range desktops land on the current workspace.
func (m *Mirror) workspaceFor(xdesk int) workspace.ID {
	if ws := m.reg.ByIndex(xdesk + 1); xdesk >= 0 && ws != nil {
		return ws.ID()
	}
	return m.reg.Current().ID()
}
