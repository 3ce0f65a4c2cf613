package ewmh

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sartwc/sartwc/internal/x11"
)

// Bridge owns the X connection behind the announcer and the window mirror.
type Bridge struct {
	conn      *x11.Connection
	announcer *Announcer
	post      func(func()) error
	mirror    *Mirror
	logger    *slog.Logger
}

// Connect opens the X display and starts listening for pager requests.
func Connect(post func(func()) error, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	a := New(conn, post, logger)
	if err := conn.OnDesktopRequest(a.RequestDesktop); err != nil {
		conn.Close()
		return nil, err
	}
	return &Bridge{conn: conn, announcer: a, post: post, logger: logger}, nil
}

// Announcer returns the workspace announcer for the manager.
func (b *Bridge) Announcer() *Announcer {
	return b.announcer
}

// Monitors lists the X outputs, for seeding desktop outputs.
func (b *Bridge) Monitors() ([]x11.Monitor, error) {
	return b.conn.GetMonitors()
}

// MirrorWindows feeds the client list into m now and on every change.
func (b *Bridge) MirrorWindows(m *Mirror) error {
	b.mirror = m
	if err := b.conn.OnClientListChange(b.Resync); err != nil {
		return fmt.Errorf("failed to watch client list: %w", err)
	}
	b.Resync()
	return nil
}

// Resync reads the full client list and posts it to the mirror. It is a
// no-op until MirrorWindows has been called.
func (b *Bridge) Resync() {
	m := b.mirror
	if m == nil {
		return
	}
	windows, err := b.conn.ClientWindows()
	if err != nil {
		b.logger.Debug("failed to read client list", "error", err)
		return
	}
	if err := b.post(func() { m.Apply(windows) }); err != nil {
		b.logger.Debug("dropping client list update", "error", err)
	}
}

// Run pumps X events until ctx is done. The connection stays open for
// final announcements; call Close afterwards.
func (b *Bridge) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.conn.EventLoop()
	}()
	select {
	case <-ctx.Done():
		b.conn.Quit()
		<-done
	case <-done:
	}
	return nil
}

// Close disconnects from the display.
func (b *Bridge) Close() {
	b.conn.Close()
}
