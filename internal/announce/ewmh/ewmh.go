// Package ewmh announces workspaces to X11 pagers through the EWMH desktop
// properties on the root window, and mirrors X client windows into the
// headless desktop.
package ewmh

import (
	"log/slog"
	"slices"

	"github.com/sartwc/sartwc/internal/workspace"
)

// Publisher writes the desktop list. *x11.Connection implements it.
type Publisher interface {
	PublishDesktops(names []string, current int) error
}

// Announcer is a workspace.Announcer backed by EWMH root properties.
// Handle methods run on the event loop; RequestDesktop may be called from
// any goroutine.
type Announcer struct {
	pub     Publisher
	post    func(func()) error
	handles []*handle
	logger  *slog.Logger
}

var _ workspace.Announcer = (*Announcer)(nil)

type handle struct {
	a          *Announcer
	name       string
	active     bool
	onActivate func()
}

// New creates an announcer. post queues work on the event loop.
func New(pub Publisher, post func(func()) error, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{pub: pub, post: post, logger: logger}
}

// CreateWorkspace implements workspace.Announcer.
func (a *Announcer) CreateWorkspace(name string, onActivate func()) workspace.Handle {
	h := &handle{a: a, name: name, onActivate: onActivate}
	a.handles = append(a.handles, h)
	a.publish()
	return h
}

func (h *handle) SetName(name string) {
	h.name = name
	h.a.publish()
}

func (h *handle) SetActive(active bool) {
	h.active = active
	// Deactivation is always followed by activating the next workspace.
	if active {
		h.a.publish()
	}
}

func (h *handle) Destroy() {
	h.a.handles = slices.DeleteFunc(h.a.handles, func(o *handle) bool { return o == h })
	h.a.publish()
}

func (a *Announcer) publish() {
	names := make([]string, len(a.handles))
	current := -1
	for i, h := range a.handles {
		names[i] = h.name
		if h.active {
			current = i
		}
	}
	if err := a.pub.PublishDesktops(names, current); err != nil {
		a.logger.Warn("failed to publish desktops", "error", err)
	}
}

// RequestDesktop handles a pager asking for the 0-based desktop index.
func (a *Announcer) RequestDesktop(index int) {
	err := a.post(func() {
		if index < 0 || index >= len(a.handles) {
			a.logger.Debug("ignoring request for unknown desktop", "index", index)
			return
		}
		a.handles[index].onActivate()
	})
	if err != nil {
		a.logger.Debug("dropping desktop request", "index", index, "error", err)
	}
}
