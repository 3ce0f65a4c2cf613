// Package tui is a terminal monitor for a running compositor. It follows the
// event stream and lets the user switch, add, rename and remove workspaces.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/sartwc/sartwc/internal/ipc"
)

// Client is the part of the IPC client the monitor drives.
type Client interface {
	Workspaces(ctx context.Context) (*ipc.WorkspacesData, error)
	Views(ctx context.Context) (*ipc.ViewsData, error)
	AddWorkspace(ctx context.Context, name string) error
	RenameWorkspace(ctx context.Context, index int, name string) error
	RemoveWorkspace(ctx context.Context, index int) error
	Action(ctx context.Context, name string, args map[string]string) error
	Subscribe(ctx context.Context, fn func(ipc.Event)) error
}

var _ Client = (*ipc.Client)(nil)

// Run opens the monitor until the user quits or ctx is cancelled.
func Run(ctx context.Context, client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, client)
	m.stream = subscribe(ctx, client)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// stream carries events from one subscription. err is valid once events
// is closed.
type stream struct {
	events chan ipc.Event
	err    error
}

func subscribe(ctx context.Context, client Client) *stream {
	s := &stream{events: make(chan ipc.Event, 16)}
	go func() {
		s.err = client.Subscribe(ctx, func(ev ipc.Event) {
			select {
			case s.events <- ev:
			case <-ctx.Done():
			}
		})
		close(s.events)
	}()
	return s
}
