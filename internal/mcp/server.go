// Package mcp exposes compositor workspace control as MCP tools. Every tool
// call is translated into IPC commands against a running daemon.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sartwc/sartwc/internal/ipc"
)

const (
	ServerName    = "sartwc"
	ServerVersion = "0.1.0"
)

// Controller is the subset of the IPC client the tools need.
type Controller interface {
	Workspaces(ctx context.Context) (*ipc.WorkspacesData, error)
	Views(ctx context.Context) (*ipc.ViewsData, error)
	AddWorkspace(ctx context.Context, name string) error
	RenameWorkspace(ctx context.Context, index int, name string) error
	RemoveWorkspace(ctx context.Context, index int) error
	Action(ctx context.Context, name string, args map[string]string) error
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for sartwc.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
	logger    *slog.Logger
}

// NewServer creates a server that drives the compositor through ctl.
func NewServer(ctl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{ctl: ctl, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List the compositor's workspaces in order, with 1-based indexes and the current one marked active.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_views",
		Description: "List mapped views (windows) with their workspace, geometry and state. Optionally filter by workspace index or name.",
	}, s.handleListViews)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_workspace",
		Description: "Append a workspace. Without a name the next free number is used. The current workspace does not change.",
	}, s.handleAddWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rename_workspace",
		Description: "Rename a workspace given by index or name.",
	}, s.handleRenameWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_workspace",
		Description: "Remove a workspace given by index or name. Its views move to the following workspace (or the first one). The last remaining workspace cannot be removed.",
	}, s.handleRemoveWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_workspace",
		Description: "Switch to a workspace by index, name, or relative keyword (left, right, last, left-occupied, right-occupied).",
	}, s.handleSwitchWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_view_to_workspace",
		Description: "Move the focused view to another workspace, optionally following it.",
	}, s.handleSendView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_omnipresent",
		Description: "Pin or unpin the focused view so it shows on every workspace.",
	}, s.handleToggleOmnipresent)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reconfigure",
		Description: "Reload the compositor configuration and reconcile workspaces.",
	}, s.handleReconfigure)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_action",
		Description: "Run any compositor action by name with key/value arguments. Actions are fire-and-forget; only unknown actions and missing arguments are reported.",
	}, s.handleRunAction)
}
