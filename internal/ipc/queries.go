package ipc

import (
	"strconv"

	"github.com/sartwc/sartwc/internal/desktop"
)

func appendBool01(dst []byte, b bool) []byte {
	if b {
		return append(dst, '1')
	}
	return append(dst, '0')
}

func appendKV(dst []byte, key string, v int) []byte {
	dst = append(dst, ' ')
	dst = append(dst, key...)
	dst = append(dst, '=')
	return strconv.AppendInt(dst, int64(v), 10)
}

func (d *Dispatcher) listWorkspaces() []byte {
	reg := d.manager.Registry()
	cur := reg.Current()

	b := append([]byte("current="), strconv.Itoa(reg.IndexOf(cur))...)
	b = append(b, "\nencoding=percent\n"...)
	for i, ws := range reg.All() {
		b = append(b, "workspace index="...)
		b = strconv.AppendInt(b, int64(i), 10)
		b = append(b, " name="...)
		b = AppendPercentEncoded(b, ws.Name())
		b = append(b, " active="...)
		b = appendBool01(b, ws == cur)
		b = append(b, '\n')
	}
	return append(b, ReplyEnd+"\n"...)
}

func (d *Dispatcher) listWorkspacesJSON() []byte {
	reg := d.manager.Registry()
	cur := reg.Current()

	b := append([]byte(`{"current_workspace":`), strconv.Itoa(reg.IndexOf(cur))...)
	b = append(b, `,"current_workspace_name":`...)
	b = AppendJSONString(b, cur.Name())
	b = append(b, `,"workspaces":[`...)
	for i, ws := range reg.All() {
		if i > 1 {
			b = append(b, ',')
		}
		b = append(b, `{"index":`...)
		b = strconv.AppendInt(b, int64(i), 10)
		b = append(b, `,"name":`...)
		b = AppendJSONString(b, ws.Name())
		b = append(b, `,"active":`...)
		b = strconv.AppendBool(b, ws == cur)
		b = append(b, '}')
	}
	return append(b, "]}\n"...)
}

func (d *Dispatcher) listViews() []byte {
	reg := d.manager.Registry()
	cur := reg.Current()

	b := append([]byte("current_workspace="), strconv.Itoa(reg.IndexOf(cur))...)
	b = append(b, "\nencoding=percent\ncurrent_workspace_name="...)
	b = AppendPercentEncoded(b, cur.Name())
	b = append(b, '\n')

	active := d.desktop.ActiveView()
	for v := range d.desktop.Views() {
		if !v.Mapped {
			continue
		}
		ws := reg.ByID(v.Workspace)
		b = append(b, "view app_id="...)
		b = AppendPercentEncoded(b, v.AppID)
		b = append(b, " title="...)
		b = AppendPercentEncoded(b, v.Title)
		b = appendKV(b, "workspace", reg.IndexOf(ws))
		b = append(b, " workspace_name="...)
		b = AppendPercentEncoded(b, ws.Name())
		b = appendKV(b, "x", v.Current.X)
		b = appendKV(b, "y", v.Current.Y)
		b = appendKV(b, "w", v.Current.Width)
		b = appendKV(b, "h", v.Current.Height)
		b = append(b, " maximized="...)
		b = appendBool01(b, v.Maximized)
		b = append(b, " minimized="...)
		b = appendBool01(b, v.Minimized)
		b = append(b, " fullscreen="...)
		b = appendBool01(b, v.Fullscreen)
		b = append(b, " tiled="...)
		b = appendBool01(b, v.Tiled)
		b = append(b, " focused="...)
		b = appendBool01(b, v == active)
		b = append(b, '\n')
	}
	return append(b, ReplyEnd+"\n"...)
}

func (d *Dispatcher) listViewsJSON() []byte {
	reg := d.manager.Registry()
	cur := reg.Current()

	b := append([]byte(`{"current_workspace":`), strconv.Itoa(reg.IndexOf(cur))...)
	b = append(b, `,"current_workspace_name":`...)
	b = AppendJSONString(b, cur.Name())
	b = append(b, `,"views":[`...)

	active := d.desktop.ActiveView()
	first := true
	for v := range d.desktop.Views() {
		if !v.Mapped {
			continue
		}
		if !first {
			b = append(b, ',')
		}
		first = false
		ws := reg.ByID(v.Workspace)
		b = appendViewJSON(b, v, reg.IndexOf(ws), ws.Name(), v == active)
	}
	return append(b, "]}\n"...)
}

func appendViewJSON(b []byte, v *desktop.View, wsIndex int, wsName string, focused bool) []byte {
	var output string
	var usable desktop.Geometry
	if v.Output != nil {
		output = v.Output.Name
		usable = v.Output.Usable
	}

	b = append(b, `{"app_id":`...)
	b = AppendJSONString(b, v.AppID)
	b = append(b, `,"title":`...)
	b = AppendJSONString(b, v.Title)
	b = append(b, `,"workspace":`...)
	b = strconv.AppendInt(b, int64(wsIndex), 10)
	b = append(b, `,"workspace_name":`...)
	b = AppendJSONString(b, wsName)
	b = appendJSONInt(b, "x", v.Current.X)
	b = appendJSONInt(b, "y", v.Current.Y)
	b = appendJSONInt(b, "w", v.Current.Width)
	b = appendJSONInt(b, "h", v.Current.Height)
	b = append(b, `,"output":`...)
	b = AppendJSONString(b, output)
	b = appendJSONInt(b, "usable_x", usable.X)
	b = appendJSONInt(b, "usable_y", usable.Y)
	b = appendJSONInt(b, "usable_w", usable.Width)
	b = appendJSONInt(b, "usable_h", usable.Height)
	b = appendJSONBool(b, "maximized", v.Maximized)
	b = appendJSONBool(b, "minimized", v.Minimized)
	b = appendJSONBool(b, "fullscreen", v.Fullscreen)
	b = appendJSONBool(b, "tiled", v.Tiled)
	b = appendJSONBool(b, "focused", focused)
	return append(b, '}')
}

func appendJSONKey(b []byte, key string) []byte {
	b = append(b, ',', '"')
	b = append(b, key...)
	return append(b, '"', ':')
}

func appendJSONInt(b []byte, key string, v int) []byte {
	return strconv.AppendInt(appendJSONKey(b, key), int64(v), 10)
}

func appendJSONBool(b []byte, key string, v bool) []byte {
	return strconv.AppendBool(appendJSONKey(b, key), v)
}
