package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sartwc/sartwc/internal/runtimepath"
)

// ErrRemote wraps an ERROR reply from the compositor.
var ErrRemote = errors.New("compositor error")

// Client handles IPC communication with the compositor. Each request uses
// its own connection.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the socket in SARTWC_IPC_SOCKET or the
// current display's default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; requests surface connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	if c.socketPath == "" {
		return nil, errors.New("no IPC socket: set SARTWC_IPC_SOCKET or WAYLAND_DISPLAY")
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor: %w (is sartwc running?)", err)
	}
	return conn, nil
}

// Send writes one command line and returns the raw reply. Listing commands
// are read up to and including their END line.
func (c *Client) Send(ctx context.Context, line string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	if _, err := conn.Write([]byte(strings.TrimRight(line, "\n") + "\n")); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	multiline := isListing(line)
	reader := bufio.NewReader(conn)
	var sb strings.Builder
	for {
		l, err := reader.ReadString('\n')
		sb.WriteString(l)
		if err != nil {
			return sb.String(), fmt.Errorf("failed to read response: %w", err)
		}
		if !multiline || strings.TrimRight(l, "\n") == ReplyEnd {
			break
		}
	}
	reply := sb.String()
	if strings.HasPrefix(reply, errPrefix) {
		return reply, fmt.Errorf("%w: %s", ErrRemote, strings.TrimSpace(strings.TrimPrefix(reply, errPrefix)))
	}
	return reply, nil
}

func isListing(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case CommandListViews, CommandListWorkspaces:
		return true
	}
	return false
}

// Ping checks that the compositor answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Send(ctx, CommandPing)
	return err
}

// Workspaces returns the workspace list.
func (c *Client) Workspaces(ctx context.Context) (*WorkspacesData, error) {
	var data WorkspacesData
	if err := c.query(ctx, CommandListWorkspacesJSON, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Views returns the mapped views.
func (c *Client) Views(ctx context.Context) (*ViewsData, error) {
	var data ViewsData
	if err := c.query(ctx, CommandListViewsJSON, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) query(ctx context.Context, cmd string, out any) error {
	reply, err := c.Send(ctx, cmd)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(reply), out); err != nil {
		return fmt.Errorf("failed to parse %s reply: %w", cmd, err)
	}
	return nil
}

// AddWorkspace appends a workspace. An empty name lets the compositor pick
// one.
func (c *Client) AddWorkspace(ctx context.Context, name string) error {
	cmd := CommandWorkspaceAdd
	if name != "" {
		cmd += " name=" + PercentEncode(name)
	}
	_, err := c.Send(ctx, cmd)
	return err
}

// RenameWorkspace renames the workspace at a 1-based index.
func (c *Client) RenameWorkspace(ctx context.Context, index int, name string) error {
	_, err := c.Send(ctx, CommandWorkspaceRename+" index="+strconv.Itoa(index)+" name="+PercentEncode(name))
	return err
}

// RemoveWorkspace removes the workspace at a 1-based index.
func (c *Client) RemoveWorkspace(ctx context.Context, index int) error {
	_, err := c.Send(ctx, CommandWorkspaceRemove+" index="+strconv.Itoa(index))
	return err
}

// Action runs a named compositor action. Values must not contain spaces.
func (c *Client) Action(ctx context.Context, name string, args map[string]string) error {
	var sb strings.Builder
	sb.WriteString(name)
	for k, v := range args {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	_, err := c.Send(ctx, sb.String())
	return err
}

// Event is one parsed EVENT line.
type Event struct {
	Name   string
	Fields map[string]string
}

// Int returns a numeric field, or 0.
func (e Event) Int(key string) int {
	n, _ := strconv.Atoi(e.Fields[key])
	return n
}

// ParseEvent parses "EVENT <name> k=v ...".
func ParseEvent(line string) (Event, error) {
	line = strings.TrimRight(line, "\r\n")
	rest, ok := strings.CutPrefix(line, eventPrefix)
	if !ok {
		return Event{}, fmt.Errorf("not an event line: %q", line)
	}
	fields := splitFields(rest)
	if len(fields) == 0 {
		return Event{}, fmt.Errorf("event without a name: %q", line)
	}
	ev := Event{Name: fields[0], Fields: make(map[string]string, len(fields)-1)}
	for _, f := range fields[1:] {
		if k, v, ok := strings.Cut(f, "="); ok {
			ev.Fields[k] = v
		}
	}
	return ev, nil
}

// Subscribe streams events to fn until ctx is cancelled or the connection
// drops. It returns nil when ctx ends the stream.
func (c *Client) Subscribe(ctx context.Context, fn func(Event)) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := conn.Write([]byte(CommandSubscribe + "\n")); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	reader := bufio.NewReader(conn)
	first, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read subscription reply: %w", err)
	}
	if strings.TrimRight(first, "\n") != subscribedReplyLine {
		return fmt.Errorf("%w: unexpected subscription reply %q", ErrRemote, strings.TrimSpace(first))
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("event stream closed: %w", err)
		}
		ev, err := ParseEvent(line)
		if err != nil {
			continue
		}
		fn(ev)
	}
}
