package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	atomClientList = "_NET_CLIENT_LIST"
	allDesktops    = 0xFFFFFFFF
)

// ClientWindow is a managed X client as listed in _NET_CLIENT_LIST.
type ClientWindow struct {
	ID     uint32
	Title  string
	AppID  string
	X      int
	Y      int
	Width  int
	Height int
	// Desktop is 0-based, or -1 for windows on all desktops.
	Desktop    int
	Maximized  bool
	Fullscreen bool
	Hidden     bool
}

// ClientWindows reads every normal application window from the client list.
// Windows that vanish mid-query are skipped.
func (c *Connection) ClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	out := make([]ClientWindow, 0, len(clients))
	for _, win := range clients {
		if !c.IsNormalWindow(win) {
			continue
		}
		geom, err := xwindow.New(c.XUtil, win).DecorGeometry()
		if err != nil {
			continue
		}
		cw := ClientWindow{
			ID:     uint32(win),
			X:      geom.X(),
			Y:      geom.Y(),
			Width:  geom.Width(),
			Height: geom.Height(),
		}
		if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil {
			cw.Title = name
		}
		if class, err := icccm.WmClassGet(c.XUtil, win); err == nil {
			cw.AppID = class.Class
		}
		cw.Desktop = c.windowDesktop(win)
		c.applyStates(win, &cw)
		out = append(out, cw)
	}
	return out, nil
}

func (c *Connection) windowDesktop(win xproto.Window) int {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return 0
	}
	if desktop == allDesktops {
		return -1
	}
	return int(desktop)
}

func (c *Connection) applyStates(win xproto.Window, cw *ClientWindow) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	var horz, vert bool
	for _, s := range states {
		switch s {
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			horz = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			vert = true
		case "_NET_WM_STATE_FULLSCREEN":
			cw.Fullscreen = true
		case "_NET_WM_STATE_HIDDEN":
			cw.Hidden = true
		case "_NET_WM_STATE_STICKY":
			cw.Desktop = -1
		}
	}
	cw.Maximized = horz && vert
}

// IsNormalWindow reports whether a window is an application window rather
// than a dock, desktop, splash or notification.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// OnClientListChange calls fn on the X event goroutine whenever the root
// window's _NET_CLIENT_LIST changes.
func (c *Connection) OnClientListChange(fn func()) error {
	if err := c.listenRoot(); err != nil {
		return fmt.Errorf("failed to select root events: %w", err)
	}
	want, err := xprop.Atm(c.XUtil, atomClientList)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomClientList, err)
	}
	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom == want {
			fn()
		}
	}).Connect(c.XUtil, c.Root)
	return nil
}
