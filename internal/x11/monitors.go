package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Rect is an X screen rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Intersect returns the overlap of r and o, or a zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Monitor is an active RandR output.
type Monitor struct {
	Name   string
	Bounds Rect
	// Usable is Bounds clipped to the EWMH work area when one is published.
	Usable Rect
}

// GetMonitors lists active outputs via RandR.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	workArea, haveWorkArea := c.workArea()

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("X11-%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		bounds := Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)}
		usable := bounds
		if haveWorkArea {
			if clipped := bounds.Intersect(workArea); clipped.Width > 0 {
				usable = clipped
			}
		}
		monitors = append(monitors, Monitor{Name: name, Bounds: bounds, Usable: usable})
	}
	return monitors, nil
}

func (c *Connection) workArea() (Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return Rect{}, false
	}
	wa := areas[0]
	return Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}, true
}
