package mcp

// ListWorkspacesInput is the input for the list_workspaces tool.
type ListWorkspacesInput struct{}

// WorkspaceInfo describes one workspace.
type WorkspaceInfo struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ListWorkspacesOutput is the output for the list_workspaces tool.
type ListWorkspacesOutput struct {
	Current     int             `json:"current"`
	CurrentName string          `json:"current_name"`
	Workspaces  []WorkspaceInfo `json:"workspaces"`
}

// ListViewsInput is the input for the list_views tool.
type ListViewsInput struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"Only list views on this workspace (index or name)"`
}

// ViewInfo describes one mapped view.
type ViewInfo struct {
	AppID         string `json:"app_id"`
	Title         string `json:"title"`
	Workspace     int    `json:"workspace"`
	WorkspaceName string `json:"workspace_name"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Output        string `json:"output,omitempty"`
	Maximized     bool   `json:"maximized"`
	Minimized     bool   `json:"minimized"`
	Fullscreen    bool   `json:"fullscreen"`
	Focused       bool   `json:"focused"`
}

// ListViewsOutput is the output for the list_views tool.
type ListViewsOutput struct {
	Current int        `json:"current"`
	Views   []ViewInfo `json:"views"`
}

// AddWorkspaceInput is the input for the add_workspace tool.
type AddWorkspaceInput struct {
	Name string `json:"name,omitempty" jsonschema:"Workspace name (default: the next free number)"`
}

// RenameWorkspaceInput is the input for the rename_workspace tool.
type RenameWorkspaceInput struct {
	Workspace string `json:"workspace" jsonschema:"Workspace to rename (1-based index or name)"`
	Name      string `json:"name" jsonschema:"New name"`
}

// RemoveWorkspaceInput is the input for the remove_workspace tool.
type RemoveWorkspaceInput struct {
	Workspace string `json:"workspace" jsonschema:"Workspace to remove (1-based index or name). Its views move to the next workspace."`
}

// SwitchWorkspaceInput is the input for the switch_workspace tool.
type SwitchWorkspaceInput struct {
	To   string `json:"to" jsonschema:"Target: index, name, or one of current, last, left, right, left-occupied, right-occupied"`
	Wrap *bool  `json:"wrap,omitempty" jsonschema:"Wrap around at the ends for left/right (default: compositor config)"`
}

// SendViewInput is the input for the send_view_to_workspace tool.
type SendViewInput struct {
	To     string `json:"to" jsonschema:"Target workspace, same forms as switch_workspace"`
	Follow *bool  `json:"follow,omitempty" jsonschema:"Switch to the target workspace as well (default: true)"`
	Wrap   *bool  `json:"wrap,omitempty" jsonschema:"Wrap around at the ends for left/right (default: compositor config)"`
}

// RunActionInput is the input for the run_action tool.
type RunActionInput struct {
	Action string            `json:"action" jsonschema:"Action name, e.g. GoToDesktop"`
	Args   map[string]string `json:"args,omitempty" jsonschema:"Action arguments as key/value pairs"`
}

// EmptyInput is used by tools without arguments.
type EmptyInput struct{}

