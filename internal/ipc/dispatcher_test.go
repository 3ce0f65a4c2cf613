package ipc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartwc/sartwc/internal/action"
	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/workspace"
)

type world struct {
	desktop *desktop.Desktop
	manager *workspace.Manager
	actions *action.Registry
	disp    *Dispatcher
}

func newWorld(t *testing.T, names ...string) *world {
	t.Helper()
	w := &world{desktop: desktop.New(desktop.Options{})}
	w.manager = workspace.NewManager(workspace.Options{Shell: w.desktop})
	w.desktop.SetWorkspaceSwitcher(func(id workspace.ID) {
		w.manager.SwitchTo(w.manager.Registry().ByID(id), false)
	})
	w.manager.Init()
	if len(names) > 0 {
		w.manager.Reconcile(names)
	}
	w.actions = action.NewRegistry(&action.Env{Manager: w.manager, Desktop: w.desktop}, nil)
	w.disp = NewDispatcher(w.manager, w.desktop, w.actions, nil)
	return w
}

func (w *world) send(line string) string {
	return string(w.disp.Dispatch(line).Data)
}

func TestDispatchPing(t *testing.T) {
	w := newWorld(t)
	for _, line := range []string{"ping", "PING", "  Ping\t", "ping\r"} {
		assert.Equal(t, ReplyOK, w.send(line), "line %q", line)
	}
}

func TestDispatchBlankLineHasNoReply(t *testing.T) {
	w := newWorld(t)
	r := w.disp.Dispatch("   ")
	assert.Empty(t, r.Data)
	assert.False(t, r.Subscribe)
}

func TestDispatchSubscribe(t *testing.T) {
	w := newWorld(t)
	r := w.disp.Dispatch("subscribe-events")
	assert.True(t, r.Subscribe)
	assert.Equal(t, ReplySubscribed, string(r.Data))
}

func TestDispatchListWorkspaces(t *testing.T) {
	w := newWorld(t, "1", "two words")

	want := "current=1\n" +
		"encoding=percent\n" +
		"workspace index=1 name=1 active=1\n" +
		"workspace index=2 name=two%20words active=0\n" +
		"END\n"
	assert.Equal(t, want, w.send("list-workspaces"))
}

func TestDispatchListWorkspacesJSON(t *testing.T) {
	w := newWorld(t, "a", `q"uote`)
	w.manager.SwitchTo(w.manager.Registry().ByIndex(2), true)

	var data WorkspacesData
	require.NoError(t, json.Unmarshal([]byte(w.send("list-workspaces-json")), &data))

	assert.Equal(t, 2, data.CurrentWorkspace)
	assert.Equal(t, `q"uote`, data.CurrentWorkspaceName)
	assert.Equal(t, []WorkspaceInfo{
		{Index: 1, Name: "a", Active: false},
		{Index: 2, Name: `q"uote`, Active: true},
	}, data.Workspaces)
}

func TestDispatchListViews(t *testing.T) {
	w := newWorld(t, "main", "web")
	w.desktop.AddOutput("DP-1", desktop.Geometry{Width: 1920, Height: 1080}, desktop.Geometry{Y: 30, Width: 1920, Height: 1050})
	w.desktop.MapView(desktop.ViewSpec{AppID: "foot", Title: "shell", Geometry: desktop.Geometry{X: 10, Y: 20, Width: 300, Height: 200}})
	w.desktop.MapView(desktop.ViewSpec{AppID: "firefox", Title: "a b", Workspace: w.manager.Registry().ByIndex(2).ID(), Maximized: true})

	want := "current_workspace=1\n" +
		"encoding=percent\n" +
		"current_workspace_name=main\n" +
		"view app_id=firefox title=a%20b workspace=2 workspace_name=web x=0 y=0 w=0 h=0 maximized=1 minimized=0 fullscreen=0 tiled=0 focused=0\n" +
		"view app_id=foot title=shell workspace=1 workspace_name=main x=10 y=20 w=300 h=200 maximized=0 minimized=0 fullscreen=0 tiled=0 focused=1\n" +
		"END\n"
	assert.Equal(t, want, w.send("list-views"))
}

func TestDispatchListViewsJSON(t *testing.T) {
	w := newWorld(t)
	w.desktop.AddOutput("DP-1", desktop.Geometry{Width: 1920, Height: 1080}, desktop.Geometry{Y: 30, Width: 1920, Height: 1050})
	w.desktop.MapView(desktop.ViewSpec{AppID: "foot", Title: "tab\there", Geometry: desktop.Geometry{X: 5, Y: 6, Width: 7, Height: 8}, Tiled: true})

	out := w.send("list-views-json")
	require.True(t, json.Valid([]byte(out)), out)

	var data ViewsData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, 1, data.CurrentWorkspace)
	require.Len(t, data.Views, 1)
	assert.Equal(t, ViewInfo{
		AppID: "foot", Title: "tab\there",
		Workspace: 1, WorkspaceName: "1",
		X: 5, Y: 6, W: 7, H: 8,
		Output:  "DP-1",
		UsableY: 30, UsableW: 1920, UsableH: 1050,
		Tiled:   true,
		Focused: true,
	}, data.Views[0])
}

func TestDispatchListViewsJSONEmpty(t *testing.T) {
	w := newWorld(t)
	assert.Equal(t, `{"current_workspace":1,"current_workspace_name":"1","views":[]}`+"\n", w.send("list-views-json"))
}

func TestDispatchWorkspaceAdd(t *testing.T) {
	w := newWorld(t)

	assert.Equal(t, ReplyOK, w.send("workspace-add name=my%20desk"))
	assert.Equal(t, ReplyOK, w.send("WORKSPACE-ADD"))

	assert.Equal(t, []string{"1", "my desk", "3"}, w.manager.Registry().Names())
	assert.Equal(t, 1, w.manager.Registry().IndexOf(w.manager.Registry().Current()))
}

func TestDispatchWorkspaceAddRejectsBadInput(t *testing.T) {
	w := newWorld(t)
	assert.Equal(t, errBadEncoding, w.send("workspace-add name=bad%zz"))
	assert.Equal(t, errAddFailed, w.send("workspace-add name=line%0Abreak"))
	assert.Equal(t, 1, w.manager.Registry().Len())
}

func TestDispatchWorkspaceRename(t *testing.T) {
	w := newWorld(t, "a", "b")

	assert.Equal(t, ReplyOK, w.send("workspace-rename index=2 name=%C3%A9t%C3%A9"))
	assert.Equal(t, []string{"a", "été"}, w.manager.Registry().Names())

	assert.Equal(t, errRenameUsage, w.send("workspace-rename name=x"))
	assert.Equal(t, errRenameUsage, w.send("workspace-rename index=0 name=x"))
	assert.Equal(t, errRenameUsage, w.send("workspace-rename index=2x name=x"))
	assert.Equal(t, errRenameUsage, w.send("workspace-rename index=1"))
	assert.Equal(t, errRenameFailed, w.send("workspace-rename index=9 name=x"))
	assert.Equal(t, errBadEncoding, w.send("workspace-rename index=1 name=%"))
}

func TestDispatchWorkspaceRemove(t *testing.T) {
	w := newWorld(t, "a", "b")

	assert.Equal(t, errRemoveUsage, w.send("workspace-remove"))
	assert.Equal(t, errRemoveUsage, w.send("workspace-remove index=-1"))
	assert.Equal(t, errRemoveFailed, w.send("workspace-remove index=3"))

	assert.Equal(t, ReplyOK, w.send("workspace-remove index=1"))
	assert.Equal(t, []string{"b"}, w.manager.Registry().Names())

	assert.Equal(t, errRemoveFailed, w.send("workspace-remove index=1"))
}

func TestDispatchMatchesWorkspaceCommandsByFirstToken(t *testing.T) {
	w := newWorld(t)
	assert.Equal(t, errUnknownAction, w.send("workspace-addition name=x"))
	assert.Equal(t, 1, w.manager.Registry().Len())
}

func TestDispatchActions(t *testing.T) {
	w := newWorld(t, "a", "b")

	assert.Equal(t, ReplyOK, w.send("GoToDesktop to=2"))
	assert.Equal(t, "b", w.manager.Registry().Current().Name())

	assert.Equal(t, ReplyOK, w.send("gotodesktop TO=left"))
	assert.Equal(t, "a", w.manager.Registry().Current().Name())

	assert.Equal(t, errMissingArgument, w.send("GoToDesktop"))
	assert.Equal(t, errUnknownAction, w.send("Frobnicate x=1"))
}

func TestDispatchFailingActionStillRepliesOK(t *testing.T) {
	w := newWorld(t)
	assert.Equal(t, ReplyOK, w.send("GoToDesktop to=nowhere"))
	assert.Equal(t, ReplyOK, w.send("SendToDesktop to=1"))
}

func TestDispatchWithoutActionRegistry(t *testing.T) {
	w := newWorld(t)
	d := NewDispatcher(w.manager, w.desktop, nil, nil)
	assert.Equal(t, errUnknownAction, string(d.Dispatch("GoToDesktop to=1").Data))
}

func TestParseArgs(t *testing.T) {
	args := parseArgs([]string{"To=2", "bare", "wrap=yes", "to=3", "empty="})
	assert.Equal(t, action.Args{"to": "3", "wrap": "yes", "empty": ""}, args)
}
