package ipc

// Commands understood by the server. Matching is case-insensitive; any other
// first token is treated as an action name.
const (
	CommandPing               = "ping"
	CommandSubscribe          = "subscribe-events"
	CommandListViews          = "list-views"
	CommandListViewsJSON      = "list-views-json"
	CommandListWorkspaces     = "list-workspaces"
	CommandListWorkspacesJSON = "list-workspaces-json"
	CommandWorkspaceAdd       = "workspace-add"
	CommandWorkspaceRename    = "workspace-rename"
	CommandWorkspaceRemove    = "workspace-remove"
)

// Reply lines.
const (
	ReplyOK         = "OK\n"
	ReplySubscribed = "OK subscribed-events\n"
	ReplyEnd        = "END"

	errPrefix           = "ERROR "
	errBadEncoding      = "ERROR invalid percent-encoding in name\n"
	errRenameUsage      = "ERROR usage: workspace-rename index=N name=...\n"
	errRemoveUsage      = "ERROR usage: workspace-remove index=N\n"
	errAddFailed        = "ERROR failed to add workspace\n"
	errRenameFailed     = "ERROR failed to rename workspace\n"
	errRemoveFailed     = "ERROR failed to remove workspace\n"
	errNoAction         = "ERROR no action\n"
	errUnknownAction    = "ERROR unknown action\n"
	errMissingArgument  = "ERROR missing required argument\n"
	errLineTooLong      = "ERROR line too long\n"
	eventPrefix         = "EVENT "
	subscribedReplyLine = "OK subscribed-events"
)

// Event names broadcast to subscribed clients.
const (
	EventWorkspaceChanged     = "workspace-changed"
	EventWorkspaceListChanged = "workspace-list-changed"
	EventFocusChanged         = "focus-changed"
	EventViewMapped           = "view-mapped"
	EventViewUnmapped         = "view-unmapped"
)

// WorkspaceInfo is one entry of list-workspaces-json.
type WorkspaceInfo struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// WorkspacesData is the list-workspaces-json document.
type WorkspacesData struct {
	CurrentWorkspace     int             `json:"current_workspace"`
	CurrentWorkspaceName string          `json:"current_workspace_name"`
	Workspaces           []WorkspaceInfo `json:"workspaces"`
}

// ViewInfo is one entry of list-views-json.
type ViewInfo struct {
	AppID         string `json:"app_id"`
	Title         string `json:"title"`
	Workspace     int    `json:"workspace"`
	WorkspaceName string `json:"workspace_name"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	W             int    `json:"w"`
	H             int    `json:"h"`
	Output        string `json:"output"`
	UsableX       int    `json:"usable_x"`
	UsableY       int    `json:"usable_y"`
	UsableW       int    `json:"usable_w"`
	UsableH       int    `json:"usable_h"`
	Maximized     bool   `json:"maximized"`
	Minimized     bool   `json:"minimized"`
	Fullscreen    bool   `json:"fullscreen"`
	Tiled         bool   `json:"tiled"`
	Focused       bool   `json:"focused"`
}

// ViewsData is the list-views-json document.
type ViewsData struct {
	CurrentWorkspace     int        `json:"current_workspace"`
	CurrentWorkspaceName string     `json:"current_workspace_name"`
	Views                []ViewInfo `json:"views"`
}
