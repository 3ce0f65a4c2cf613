package x11

import (
	"fmt"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

const atomCurrentDesktop = "_NET_CURRENT_DESKTOP"

// PublishDesktops writes _NET_NUMBER_OF_DESKTOPS, _NET_DESKTOP_NAMES and
// _NET_CURRENT_DESKTOP on the root window. current is 0-based.
func (c *Connection) PublishDesktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("failed to set desktop names: %w", err)
	}
	if current < 0 || current >= len(names) {
		return nil
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

// GetCurrentDesktop returns the 0-based _NET_CURRENT_DESKTOP value.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// OnDesktopRequest calls fn with the requested 0-based index whenever a pager
// sends a _NET_CURRENT_DESKTOP client message to the root window. fn runs on
// the X event goroutine.
func (c *Connection) OnDesktopRequest(fn func(index int)) error {
	if err := c.listenRoot(); err != nil {
		return fmt.Errorf("failed to select root events: %w", err)
	}
	want, err := xprop.Atm(c.XUtil, atomCurrentDesktop)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomCurrentDesktop, err)
	}
	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Type != want || ev.Format != 32 {
			return
		}
		fn(int(ev.Data.Data32[0]))
	}).Connect(c.XUtil, c.Root)
	return nil
}
