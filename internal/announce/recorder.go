package announce

import (
	"fmt"
	"slices"

	"github.com/sartwc/sartwc/internal/workspace"
)

// Recorder is an announcer that logs every call as a short string and lets
// tests play the role of a remote peer.
type Recorder struct {
	Calls   []string
	handles []*recordedHandle
}

var _ workspace.Announcer = (*Recorder)(nil)

type recordedHandle struct {
	r          *Recorder
	name       string
	active     bool
	onActivate func()
}

// CreateWorkspace implements workspace.Announcer.
func (r *Recorder) CreateWorkspace(name string, onActivate func()) workspace.Handle {
	h := &recordedHandle{r: r, name: name, onActivate: onActivate}
	r.handles = append(r.handles, h)
	r.Calls = append(r.Calls, "create "+name)
	return h
}

func (h *recordedHandle) SetName(name string) {
	h.r.Calls = append(h.r.Calls, fmt.Sprintf("name %s->%s", h.name, name))
	h.name = name
}

func (h *recordedHandle) SetActive(active bool) {
	h.active = active
	h.r.Calls = append(h.r.Calls, fmt.Sprintf("active %s=%t", h.name, active))
}

func (h *recordedHandle) Destroy() {
	h.r.handles = slices.DeleteFunc(h.r.handles, func(o *recordedHandle) bool { return o == h })
	h.r.Calls = append(h.r.Calls, "destroy "+h.name)
}

// Names returns the live handle names in creation order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.handles))
	for i, h := range r.handles {
		names[i] = h.name
	}
	return names
}

// Active returns the names of handles currently marked active.
func (r *Recorder) Active() []string {
	var out []string
	for _, h := range r.handles {
		if h.active {
			out = append(out, h.name)
		}
	}
	return out
}

// Activate simulates a peer asking for the named workspace. It reports
// whether a live handle had that name.
func (r *Recorder) Activate(name string) bool {
	for _, h := range r.handles {
		if h.name == name {
			h.onActivate()
			return true
		}
	}
	return false
}

// Reset clears the call log.
func (r *Recorder) Reset() {
	r.Calls = nil
}
