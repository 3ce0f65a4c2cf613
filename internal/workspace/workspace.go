// Package workspace owns the compositor's ordered set of virtual desktops:
// the registry with its current/last pointers, the lifecycle operations that
// mutate it, and the on-disk list of workspace names.
package workspace

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName        = errors.New("workspace name is required")
	ErrInvalidName      = errors.New("workspace name contains a line break or NUL")
	ErrNoSuchWorkspace  = errors.New("no such workspace")
	ErrLastWorkspace    = errors.New("cannot remove the last workspace")
	ErrNotInitialized   = errors.New("workspaces not initialized")
	ErrStateUnavailable = errors.New("workspace state directory unavailable")
)

// ValidateName rejects names that cannot round-trip through the
// line-oriented state file.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, "\r\n\x00") {
		return ErrInvalidName
	}
	return nil
}

// ID identifies a workspace for its whole lifetime. IDs are never reused, so
// views can hold one as a non-owning reference.
type ID uint64

// Workspace is a named virtual desktop. Its position is not stored; ask the
// Registry for IndexOf.
type Workspace struct {
	id      ID
	name    string
	tree    SceneTree
	handles []Handle
}

// ID returns the workspace's stable identifier.
func (w *Workspace) ID() ID {
	if w == nil {
		return 0
	}
	return w.id
}

// Name returns the display name.
func (w *Workspace) Name() string {
	if w == nil {
		return ""
	}
	return w.name
}

// SceneTree is the scene-graph subtree holding a workspace's views.
type SceneTree interface {
	SetEnabled(enabled bool)
	Destroy()
}

// Shell is the window-management side of the compositor that workspace
// operations drive: scene trees, views, focus, cursor and the switch OSD.
type Shell interface {
	NewSceneTree(id ID) SceneTree
	// Occupied reports whether the workspace hosts a view that is not
	// visible on all workspaces.
	Occupied(id ID) bool
	ReassignViews(from, to ID)
	// MigrateOmnipresent moves every omnipresent view, and any view being
	// dragged, onto the target workspace.
	MigrateOmnipresent(to ID)
	ActiveViewOmnipresent() bool
	FocusTopmost(id ID)
	RefreshCursorFocus()
	UpdateTopLayerVisibility()
	ShowOSD(names []string, current int)
	FinishOverlay()
}

// Announcer mirrors workspaces to other processes.
type Announcer interface {
	// CreateWorkspace registers a workspace. onActivate is invoked on the
	// event loop when a remote peer asks for the workspace to be shown.
	CreateWorkspace(name string, onActivate func()) Handle
}

// Handle is one announced workspace.
type Handle interface {
	SetName(name string)
	SetActive(active bool)
	Destroy()
}

// Notifier receives workspace change notifications.
type Notifier interface {
	WorkspaceChanged()
	WorkspaceListChanged()
}

// Persister stores the ordered list of workspace names between sessions.
type Persister interface {
	Load() ([]string, bool)
	Save(names []string) error
}

type nopNotifier struct{}

func (nopNotifier) WorkspaceChanged()     {}
func (nopNotifier) WorkspaceListChanged() {}
