package desktop

import (
	"time"

	"github.com/sartwc/sartwc/internal/workspace"
)

type sceneTree struct {
	id      workspace.ID
	enabled bool
	desktop *Desktop
}

func (t *sceneTree) SetEnabled(enabled bool) {
	t.enabled = enabled
}

func (t *sceneTree) Destroy() {
	if t.desktop.trees[t.id] == t {
		delete(t.desktop.trees, t.id)
	}
}

// OSD is the transient workspace switch indicator.
type OSD struct {
	Names   []string
	Current int
	Until   time.Time
}

// ShowOSD displays the workspace list with the current one highlighted.
func (d *Desktop) ShowOSD(names []string, current int) {
	if d.popupTime <= 0 {
		return
	}
	d.osd = OSD{
		Names:   append([]string(nil), names...),
		Current: current,
		Until:   d.now().Add(d.popupTime),
	}
}

// OSD returns the indicator state and whether it is still on screen.
func (d *Desktop) OSD() (OSD, bool) {
	if d.osd.Names == nil || !d.now().Before(d.osd.Until) {
		return OSD{}, false
	}
	return d.osd, true
}
