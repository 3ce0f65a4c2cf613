package workspace

import (
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Navigation tokens understood by Registry.Find.
const (
	TokenCurrent       = "current"
	TokenLast          = "last"
	TokenLeft          = "left"
	TokenRight         = "right"
	TokenLeftOccupied  = "left-occupied"
	TokenRightOccupied = "right-occupied"
)

// Registry is the ordered collection of workspaces plus the current and last
// pointers. Order defines external indices and navigation adjacency. Only the
// Manager mutates it.
type Registry struct {
	workspaces []*Workspace
	current    *Workspace
	last       *Workspace
	nextID     ID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nextID: 1}
}

// Len returns the number of workspaces.
func (r *Registry) Len() int {
	return len(r.workspaces)
}

// Current returns the active workspace.
func (r *Registry) Current() *Workspace {
	return r.current
}

// Last returns the most recently deactivated workspace, or nil.
func (r *Registry) Last() *Workspace {
	return r.last
}

// All iterates workspaces with their 1-based index.
func (r *Registry) All() iter.Seq2[int, *Workspace] {
	return func(yield func(int, *Workspace) bool) {
		for i, ws := range r.workspaces {
			if !yield(i+1, ws) {
				return
			}
		}
	}
}

// Names returns the workspace names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.workspaces))
	for i, ws := range r.workspaces {
		names[i] = ws.name
	}
	return names
}

// IndexOf returns the 1-based position of ws, or 0 when ws is nil or absent.
func (r *Registry) IndexOf(ws *Workspace) int {
	if ws == nil {
		return 0
	}
	return r.position(ws) + 1
}

// IndexOfID is IndexOf for a workspace reference held by a view.
func (r *Registry) IndexOfID(id ID) int {
	return r.IndexOf(r.ByID(id))
}

// ByIndex returns the nth workspace (1-based), or nil when out of range.
func (r *Registry) ByIndex(n int) *Workspace {
	if n < 1 || n > len(r.workspaces) {
		return nil
	}
	return r.workspaces[n-1]
}

// ByID returns the workspace with the given id, or nil.
func (r *Registry) ByID(id ID) *Workspace {
	for _, ws := range r.workspaces {
		if ws.id == id {
			return ws
		}
	}
	return nil
}

// ByName returns the first workspace with exactly the given name, or nil.
func (r *Registry) ByName(name string) *Workspace {
	for _, ws := range r.workspaces {
		if ws.name == name {
			return ws
		}
	}
	return nil
}

// Find resolves a navigation token relative to anchor. occupied reports
// whether a workspace hosts a non-omnipresent view; it is only consulted for
// the *-occupied tokens. Anything that is not a keyword is tried as a strict
// positive index and then as an exact name.
func (r *Registry) Find(anchor *Workspace, token string, wrap bool, occupied func(*Workspace) bool) *Workspace {
	if anchor == nil || r.position(anchor) < 0 {
		return nil
	}
	switch strings.ToLower(token) {
	case TokenCurrent:
		return anchor
	case TokenLast:
		return r.last
	case TokenLeft:
		return r.adjacent(anchor, -1, wrap)
	case TokenRight:
		return r.adjacent(anchor, 1, wrap)
	case TokenLeftOccupied:
		return r.adjacentOccupied(anchor, -1, wrap, occupied)
	case TokenRightOccupied:
		return r.adjacentOccupied(anchor, 1, wrap, occupied)
	}
	if n := parseIndex(token); n > 0 {
		if ws := r.ByIndex(n); ws != nil {
			return ws
		}
	}
	return r.ByName(token)
}

func (r *Registry) adjacent(anchor *Workspace, step int, wrap bool) *Workspace {
	i := r.position(anchor) + step
	if i < 0 || i >= len(r.workspaces) {
		if !wrap {
			return nil
		}
		i = (i + len(r.workspaces)) % len(r.workspaces)
	}
	return r.workspaces[i]
}

// adjacentOccupied scans away from anchor for an occupied workspace. The scan
// wraps at most once and stops when it comes back around to the anchor.
func (r *Registry) adjacentOccupied(anchor *Workspace, step int, wrap bool, occupied func(*Workspace) bool) *Workspace {
	if occupied == nil {
		return nil
	}
	n := len(r.workspaces)
	start := r.position(anchor)
	wrapped := false
	for i := start + step; ; i += step {
		if i < 0 || i >= n {
			if !wrap || wrapped {
				return nil
			}
			wrapped = true
			if step < 0 {
				i = n - 1
			} else {
				i = 0
			}
		}
		if i == start {
			return nil
		}
		if ws := r.workspaces[i]; occupied(ws) {
			return ws
		}
	}
}

func (r *Registry) position(ws *Workspace) int {
	return slices.Index(r.workspaces, ws)
}

func (r *Registry) append(name string) *Workspace {
	ws := &Workspace{id: r.nextID, name: name}
	r.nextID++
	r.workspaces = append(r.workspaces, ws)
	return ws
}

func (r *Registry) remove(ws *Workspace) {
	if i := r.position(ws); i >= 0 {
		r.workspaces = slices.Delete(r.workspaces, i, i+1)
	}
}

// parseIndex accepts only strings that are entirely a base-10 integer with an
// optional leading '+'. "2nd desktop", "-50", "1.24" and "0" all yield 0.
func parseIndex(s string) int {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 0)
	if err != nil || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}
