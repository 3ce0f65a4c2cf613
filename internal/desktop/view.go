package desktop

import "github.com/sartwc/sartwc/internal/workspace"

// Geometry is a rectangle in layout coordinates.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

func (g Geometry) empty() bool {
	return g.Width <= 0 || g.Height <= 0
}

func (g Geometry) contains(x, y int) bool {
	return x >= g.X && x < g.X+g.Width && y >= g.Y && y < g.Y+g.Height
}

// ViewID identifies a view for its lifetime.
type ViewID uint64

// View is a toplevel window.
type View struct {
	ID    ViewID
	AppID string
	Title string

	Current Geometry
	Output  *Output

	Mapped      bool
	Maximized   bool
	Minimized   bool
	Fullscreen  bool
	Tiled       bool
	Omnipresent bool

	// Workspace is a non-owning reference; the view never keeps a
	// workspace alive.
	Workspace workspace.ID

	// External is set for views mirrored from another window system.
	External uint32
}

// Focusable reports whether the view can take keyboard focus.
func (v *View) Focusable() bool {
	return v != nil && v.Mapped && !v.Minimized
}

// ViewSpec describes a view to map.
type ViewSpec struct {
	AppID      string
	Title      string
	Geometry   Geometry
	Workspace  workspace.ID
	Maximized  bool
	Fullscreen bool
	Tiled      bool
	Sticky     bool
	External   uint32
}
