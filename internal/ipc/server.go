package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sartwc/sartwc/internal/eventloop"
	"github.com/sartwc/sartwc/internal/runtimepath"
	"github.com/sartwc/sartwc/internal/workspace"
)

const (
	readBufferSize      = 4096
	defaultWriteTimeout = 50 * time.Millisecond
	closeTimeout        = 2 * time.Second
)

// Config configures the IPC server.
type Config struct {
	// SocketPath overrides the default per-display socket location.
	SocketPath string
	// WriteTimeout bounds how long one write may hold the event loop.
	WriteTimeout time.Duration
	// ExportEnv sets SARTWC_IPC_SOCKET in the process environment once the
	// socket is listening, so spawned clients inherit it.
	ExportEnv bool
	Logger    *slog.Logger
}

// Server accepts line-protocol clients on a Unix socket. The client set and
// all command handling live on the event loop; the accept and per-client
// reader goroutines only post work to it.
type Server struct {
	cfg        Config
	loop       *eventloop.Loop
	dispatcher *Dispatcher
	logger     *slog.Logger

	listener *net.UnixListener
	clients  map[*client]struct{}

	closing   atomic.Bool
	wg        sync.WaitGroup
	acceptLog rate.Sometimes
}

type client struct {
	id         uuid.UUID
	conn       net.Conn
	framer     LineFramer
	subscribed bool
	closed     bool
}

var _ workspace.Notifier = (*Server)(nil)

// NewServer creates a server. Call Start to begin listening.
func NewServer(cfg Config, loop *eventloop.Loop, d *Dispatcher) *Server {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		loop:       loop,
		dispatcher: d,
		logger:     logger,
		clients:    make(map[*client]struct{}),
		acceptLog:  rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// SocketPath returns the path the server listens on once started.
func (s *Server) SocketPath() string {
	return s.cfg.SocketPath
}

// Start binds the socket and begins accepting connections.
func (s *Server) Start() error {
	if s.cfg.SocketPath == "" {
		path, err := runtimepath.ServerSocketPath()
		if err != nil {
			return fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		s.cfg.SocketPath = path
	}

	// Remove a stale socket left by a previous run.
	if err := os.Remove(s.cfg.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove stale socket", "path", s.cfg.SocketPath, "error", err)
	}

	addr := &net.UnixAddr{Name: s.cfg.SocketPath, Net: "unix"}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	listener.SetUnlinkOnClose(true)
	s.listener = listener

	if err := os.Chmod(s.cfg.SocketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	if s.cfg.ExportEnv {
		if err := os.Setenv(runtimepath.SocketEnv, s.cfg.SocketPath); err != nil {
			s.logger.Error("unable to export socket path", "env", runtimepath.SocketEnv, "error", err)
		}
	}

	s.logger.Info("IPC server listening", "path", s.cfg.SocketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.acceptLog.Do(func() {
				s.logger.Error("IPC accept failed", "error", err)
			})
			time.Sleep(50 * time.Millisecond)
			continue
		}

		c := &client{id: uuid.New(), conn: conn}
		if cred, err := peerCredentials(conn); err == nil {
			s.logger.Debug("IPC client connected", "client", c.id, "pid", cred.PID, "uid", cred.UID)
		} else {
			s.logger.Debug("IPC client connected", "client", c.id)
		}

		// The reader's WaitGroup slot is taken here, while acceptLoop still
		// holds its own, so Close never races Add against Wait.
		s.wg.Add(1)
		if err := s.loop.Post(func() { s.register(c) }); err != nil {
			s.wg.Done()
			conn.Close()
			return
		}
	}
}

// register runs on the loop.
func (s *Server) register(c *client) {
	if s.closing.Load() {
		c.conn.Close()
		s.wg.Done()
		return
	}
	s.clients[c] = struct{}{}
	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.wg.Done()
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			if perr := s.loop.Post(func() { s.handleData(c, data) }); perr != nil {
				c.conn.Close()
				return
			}
		}
		if err != nil {
			_ = s.loop.Post(func() { s.destroy(c, err) })
			return
		}
	}
}

// handleData runs on the loop.
func (s *Server) handleData(c *client, data []byte) {
	if c.closed {
		return
	}
	if err := c.framer.Feed(data); err != nil {
		s.write(c, []byte(errLineTooLong))
		s.destroy(c, err)
		return
	}
	for line := range c.framer.Lines() {
		r := s.dispatcher.Dispatch(line)
		if r.Subscribe {
			c.subscribed = true
		}
		if len(r.Data) > 0 && !s.write(c, r.Data) {
			return
		}
		// A broadcast triggered by this command may have torn c down.
		if c.closed {
			return
		}
	}
}

// write sends data once with a deadline. On failure the client is destroyed.
func (s *Server) write(c *client, data []byte) bool {
	if c.closed {
		return false
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		s.destroy(c, err)
		return false
	}
	if _, err := c.conn.Write(data); err != nil {
		s.destroy(c, err)
		return false
	}
	return true
}

// destroy runs on the loop and is idempotent.
func (s *Server) destroy(c *client, reason error) {
	if c.closed {
		return
	}
	c.closed = true
	delete(s.clients, c)
	c.conn.Close()
	c.framer.Reset()
	s.logger.Debug("IPC client disconnected", "client", c.id, "reason", reason)
}

// Clients returns the number of connected clients. Call on the loop.
func (s *Server) Clients() int {
	return len(s.clients)
}

// Close stops accepting, disconnects every client and removes the socket.
// It must not be called from the loop goroutine, and should be called
// before the loop stops so queued connections are torn down in order.
func (s *Server) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	closeAll := func() {
		for c := range s.clients {
			s.destroy(c, net.ErrClosed)
		}
	}
	if perr := s.loop.Post(closeAll); perr != nil {
		// The loop has exited, so nothing else touches the client set.
		closeAll()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeTimeout):
		s.logger.Warn("IPC readers did not exit in time")
	}

	if s.cfg.ExportEnv {
		os.Unsetenv(runtimepath.SocketEnv)
	}
	s.logger.Info("IPC server stopped", "path", s.cfg.SocketPath)
	return err
}
