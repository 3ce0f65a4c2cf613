package main

import (
	"bytes"
	"testing"

	"github.com/sartwc/sartwc/internal/config"
	"github.com/sartwc/sartwc/internal/ipc"
)

func sampleWorkspaces() *ipc.WorkspacesData {
	return &ipc.WorkspacesData{
		CurrentWorkspace:     2,
		CurrentWorkspaceName: "web",
		Workspaces: []ipc.WorkspaceInfo{
			{Index: 1, Name: "3"},
			{Index: 2, Name: "web", Active: true},
			{Index: 3, Name: "chat"},
		},
	}
}

func TestWriteWorkspaces_Raw(t *testing.T) {
	var buf bytes.Buffer
	writeWorkspaces(&buf, sampleWorkspaces(), false)
	want := "1\t3\t0\n2\tweb\t1\n3\tchat\t0\n"
	if buf.String() != want {
		t.Fatalf("raw output = %q, want %q", buf.String(), want)
	}
}

func TestWriteWorkspaces_Human(t *testing.T) {
	var buf bytes.Buffer
	writeWorkspaces(&buf, sampleWorkspaces(), true)
	want := "  INDEX NAME\n" +
		"  1     3   \n" +
		"* 2     web \n" +
		"  3     chat\n"
	if buf.String() != want {
		t.Fatalf("human output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestResolveWorkspace(t *testing.T) {
	data := sampleWorkspaces()
	tests := []struct {
		token string
		want  int
		err   bool
	}{
		{token: "3", want: 3},
		{token: "web", want: 2},
		{token: "chat", want: 3},
		{token: "0", err: true},
		{token: "nope", err: true},
	}
	for _, tt := range tests {
		got, err := resolveWorkspace(data, tt.token)
		if tt.err {
			if err == nil {
				t.Fatalf("resolveWorkspace(%q) expected error", tt.token)
			}
			continue
		}
		if err != nil {
			t.Fatalf("resolveWorkspace(%q): %v", tt.token, err)
		}
		if got != tt.want {
			t.Fatalf("resolveWorkspace(%q) = %d, want %d", tt.token, got, tt.want)
		}
	}
}

func TestFormatEvent_SortsFields(t *testing.T) {
	ev := ipc.Event{Name: "workspace-list-changed", Fields: map[string]string{"count": "3", "current": "1"}}
	if got := formatEvent(ev); got != "workspace-list-changed count=3 current=1" {
		t.Fatalf("formatEvent = %q", got)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 2, Column: 3}, "file:/c.yaml:2:3"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
