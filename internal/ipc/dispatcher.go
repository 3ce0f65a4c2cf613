package ipc

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sartwc/sartwc/internal/action"
	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/workspace"
)

// Reply is the dispatcher's answer to one command line.
type Reply struct {
	Data      []byte
	Subscribe bool
}

// Dispatcher interprets command lines. It runs on the event loop.
type Dispatcher struct {
	manager *workspace.Manager
	desktop *desktop.Desktop
	actions *action.Registry
	logger  *slog.Logger
}

// NewDispatcher wires a dispatcher to the state it queries and mutates.
func NewDispatcher(m *workspace.Manager, d *desktop.Desktop, actions *action.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{manager: m, desktop: d, actions: actions, logger: logger}
}

// Dispatch executes one line. Blank lines produce no reply.
func (d *Dispatcher) Dispatch(line string) Reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reply{}
	}

	switch strings.ToLower(line) {
	case CommandPing:
		return reply(ReplyOK)
	case CommandSubscribe:
		return Reply{Data: []byte(ReplySubscribed), Subscribe: true}
	case CommandListViews:
		return Reply{Data: d.listViews()}
	case CommandListViewsJSON:
		return Reply{Data: d.listViewsJSON()}
	case CommandListWorkspaces:
		return Reply{Data: d.listWorkspaces()}
	case CommandListWorkspacesJSON:
		return Reply{Data: d.listWorkspacesJSON()}
	}

	fields := splitFields(line)
	if len(fields) == 0 {
		return reply(errNoAction)
	}
	name, args := fields[0], parseArgs(fields[1:])

	switch strings.ToLower(name) {
	case CommandWorkspaceAdd:
		return reply(d.workspaceAdd(args))
	case CommandWorkspaceRename:
		return reply(d.workspaceRename(args))
	case CommandWorkspaceRemove:
		return reply(d.workspaceRemove(args))
	}
	return reply(d.runAction(name, args))
}

func reply(s string) Reply {
	return Reply{Data: []byte(s)}
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
}

// parseArgs collects key=value tokens. Keys are lower-cased, tokens without
// '=' are ignored and a repeated key keeps its last value.
func parseArgs(tokens []string) action.Args {
	args := action.Args{}
	for _, tok := range tokens {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		args[strings.ToLower(k)] = v
	}
	return args
}

func (d *Dispatcher) workspaceAdd(args action.Args) string {
	name := args["name"]
	if name == "" {
		name = d.manager.NextName()
	} else {
		decoded, err := PercentDecode(name)
		if err != nil {
			return errBadEncoding
		}
		name = decoded
	}
	if _, err := d.manager.AddNamed(name); err != nil {
		d.logger.Warn("workspace-add failed", "name", name, "error", err)
		return errAddFailed
	}
	return ReplyOK
}

func (d *Dispatcher) workspaceRename(args action.Args) string {
	index := parsePositive(args["index"])
	name := args["name"]
	if index < 1 || name == "" {
		return errRenameUsage
	}
	decoded, err := PercentDecode(name)
	if err != nil {
		return errBadEncoding
	}
	if err := d.manager.RenameIndex(index, decoded); err != nil {
		d.logger.Warn("workspace-rename failed", "index", index, "error", err)
		return errRenameFailed
	}
	return ReplyOK
}

func (d *Dispatcher) workspaceRemove(args action.Args) string {
	index := parsePositive(args["index"])
	if index < 1 {
		return errRemoveUsage
	}
	if err := d.manager.RemoveIndex(index); err != nil {
		d.logger.Warn("workspace-remove failed", "index", index, "error", err)
		return errRemoveFailed
	}
	return ReplyOK
}

func parsePositive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func (d *Dispatcher) runAction(name string, args action.Args) string {
	if d.actions == nil {
		return errUnknownAction
	}
	a, err := d.actions.Create(name, args)
	switch {
	case errors.Is(err, action.ErrUnknownAction):
		return errUnknownAction
	case err != nil:
		d.logger.Debug("action rejected", "action", name, "error", err)
		return errMissingArgument
	}
	d.actions.Run(a)
	return ReplyOK
}
