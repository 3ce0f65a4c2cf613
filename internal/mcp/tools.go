package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sartwc/sartwc/internal/ipc"
)

func workspacesOutput(data *ipc.WorkspacesData) ListWorkspacesOutput {
	out := ListWorkspacesOutput{
		Current:     data.CurrentWorkspace,
		CurrentName: data.CurrentWorkspaceName,
		Workspaces:  make([]WorkspaceInfo, 0, len(data.Workspaces)),
	}
	for _, ws := range data.Workspaces {
		out.Workspaces = append(out.Workspaces, WorkspaceInfo{Index: ws.Index, Name: ws.Name, Active: ws.Active})
	}
	return out
}

// resolveIndex maps an index or exact name to a 1-based index. Numeric
// tokens are indexes first, like the compositor's own lookup.
func resolveIndex(data *ipc.WorkspacesData, token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, fmt.Errorf("workspace is required")
	}
	if n, err := strconv.Atoi(token); err == nil && n >= 1 && n <= len(data.Workspaces) {
		return n, nil
	}
	for _, ws := range data.Workspaces {
		if ws.Name == token {
			return ws.Index, nil
		}
	}
	return 0, fmt.Errorf("no workspace %q", token)
}

func (s *Server) refreshed(ctx context.Context) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	data, err := s.ctl.Workspaces(ctx)
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return nil, workspacesOutput(data), nil
}

func (s *Server) handleListWorkspaces(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	return s.refreshed(ctx)
}

func (s *Server) handleListViews(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListViewsInput) (*mcpsdk.CallToolResult, ListViewsOutput, error) {
	filter := 0
	if args.Workspace != "" {
		wsData, err := s.ctl.Workspaces(ctx)
		if err != nil {
			return nil, ListViewsOutput{}, err
		}
		filter, err = resolveIndex(wsData, args.Workspace)
		if err != nil {
			return nil, ListViewsOutput{}, err
		}
	}

	data, err := s.ctl.Views(ctx)
	if err != nil {
		return nil, ListViewsOutput{}, err
	}
	out := ListViewsOutput{Current: data.CurrentWorkspace, Views: []ViewInfo{}}
	for _, v := range data.Views {
		if filter != 0 && v.Workspace != filter {
			continue
		}
		out.Views = append(out.Views, ViewInfo{
			AppID:         v.AppID,
			Title:         v.Title,
			Workspace:     v.Workspace,
			WorkspaceName: v.WorkspaceName,
			X:             v.X,
			Y:             v.Y,
			Width:         v.W,
			Height:        v.H,
			Output:        v.Output,
			Maximized:     v.Maximized,
			Minimized:     v.Minimized,
			Fullscreen:    v.Fullscreen,
			Focused:       v.Focused,
		})
	}
	return nil, out, nil
}

func (s *Server) handleAddWorkspace(ctx context.Context, _ *mcpsdk.CallToolRequest, args AddWorkspaceInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if strings.ContainsAny(args.Name, "\r\n") {
		return nil, ListWorkspacesOutput{}, fmt.Errorf("name must not contain line breaks")
	}
	if err := s.ctl.AddWorkspace(ctx, args.Name); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	s.logger.Info("workspace added via mcp", "name", args.Name)
	return s.refreshed(ctx)
}

func (s *Server) handleRenameWorkspace(ctx context.Context, _ *mcpsdk.CallToolRequest, args RenameWorkspaceInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if strings.TrimSpace(args.Name) == "" {
		return nil, ListWorkspacesOutput{}, fmt.Errorf("name is required")
	}
	data, err := s.ctl.Workspaces(ctx)
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	index, err := resolveIndex(data, args.Workspace)
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	if err := s.ctl.RenameWorkspace(ctx, index, args.Name); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}

func (s *Server) handleRemoveWorkspace(ctx context.Context, _ *mcpsdk.CallToolRequest, args RemoveWorkspaceInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	data, err := s.ctl.Workspaces(ctx)
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	index, err := resolveIndex(data, args.Workspace)
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	if err := s.ctl.RemoveWorkspace(ctx, index); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}

// checkWord rejects values the line protocol cannot carry in an action
// argument.
func checkWord(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if strings.ContainsAny(v, " \t\r\n") {
		return fmt.Errorf("%s must not contain whitespace", field)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (s *Server) handleSwitchWorkspace(ctx context.Context, _ *mcpsdk.CallToolRequest, args SwitchWorkspaceInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if err := checkWord("to", args.To); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	actionArgs := map[string]string{"to": args.To}
	if args.Wrap != nil {
		actionArgs["wrap"] = yesNo(*args.Wrap)
	}
	if err := s.ctl.Action(ctx, "GoToDesktop", actionArgs); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}

func (s *Server) handleSendView(ctx context.Context, _ *mcpsdk.CallToolRequest, args SendViewInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if err := checkWord("to", args.To); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	actionArgs := map[string]string{"to": args.To}
	if args.Follow != nil {
		actionArgs["follow"] = yesNo(*args.Follow)
	}
	if args.Wrap != nil {
		actionArgs["wrap"] = yesNo(*args.Wrap)
	}
	if err := s.ctl.Action(ctx, "SendToDesktop", actionArgs); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}

func (s *Server) handleToggleOmnipresent(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if err := s.ctl.Action(ctx, "ToggleOmnipresent", nil); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}

func (s *Server) handleReconfigure(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if err := s.ctl.Action(ctx, "Reconfigure", nil); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}

func (s *Server) handleRunAction(ctx context.Context, _ *mcpsdk.CallToolRequest, args RunActionInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	if err := checkWord("action", args.Action); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	for k, v := range args.Args {
		if err := checkWord("argument key", k); err != nil {
			return nil, ListWorkspacesOutput{}, err
		}
		if err := checkWord("argument "+k, v); err != nil {
			return nil, ListWorkspacesOutput{}, err
		}
	}
	if err := s.ctl.Action(ctx, args.Action, args.Args); err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return s.refreshed(ctx)
}
