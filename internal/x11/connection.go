// Package x11 is the X11 side of the EWMH bridge: it publishes the
// compositor's desktops on the root window, reports pager requests, and reads
// client windows and monitors for the headless desktop.
package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and the root window.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	listenOnce sync.Once
	listenErr  error
}

// NewConnection connects to the display named by $DISPLAY.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// listenRoot selects the root window events the bridge relies on. Pager
// requests arrive as client messages, which SubstructureNotify delivers.
func (c *Connection) listenRoot() error {
	c.listenOnce.Do(func() {
		c.listenErr = xwindow.New(c.XUtil, c.Root).Listen(
			xproto.EventMaskPropertyChange,
			xproto.EventMaskSubstructureNotify,
		)
	})
	return c.listenErr
}

// EventLoop dispatches X events to registered callbacks until Quit.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes EventLoop return.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
