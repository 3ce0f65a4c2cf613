package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !reflect.DeepEqual(cfg.Workspaces.Names, []string{"1"}) {
		t.Fatalf("expected a single default workspace, got %v", cfg.Workspaces.Names)
	}
	if cfg.PopupTime() != time.Second {
		t.Fatalf("expected 1s popup, got %v", cfg.PopupTime())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
	if !reflect.DeepEqual(res.Config, DefaultConfig()) {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(res.Config, DefaultConfig()) {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"workspaces:",
		"  names: [main, web, chat]",
		"  popup_time_ms: 0",
		"  wrap: false",
		"announce:",
		"  state_file: false",
		"logging:",
		"  level: debug",
		"  format: json",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if !reflect.DeepEqual(cfg.Workspaces.Names, []string{"main", "web", "chat"}) {
		t.Fatalf("unexpected names %v", cfg.Workspaces.Names)
	}
	if cfg.Workspaces.PopupTimeMS != 0 || cfg.Workspaces.Wrap {
		t.Fatalf("expected explicit zero values to win, got %+v", cfg.Workspaces)
	}
	if cfg.Announce.StateFile {
		t.Fatalf("expected state_file false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	// Untouched fields keep defaults.
	if cfg.IPC.WriteTimeoutMS != DefaultWriteTimeoutMS {
		t.Fatalf("expected default write timeout, got %d", cfg.IPC.WriteTimeoutMS)
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "workspaces:\n  nmes: [a]\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, strings.Join([]string{
		"[workspaces]",
		"names = [\"one\", \"two\"]",
		"wrap = false",
		"",
		"[ipc]",
		"socket = \"/tmp/x.sock\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(res.Config.Workspaces.Names, []string{"one", "two"}) {
		t.Fatalf("unexpected names %v", res.Config.Workspaces.Names)
	}
	if res.Config.Workspaces.Wrap {
		t.Fatalf("expected wrap false")
	}
	if res.Config.IPC.Socket != "/tmp/x.sock" {
		t.Fatalf("unexpected socket %q", res.Config.IPC.Socket)
	}

	_, src, err := Explain(res, "ipc.socket")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || src.File == "" {
		t.Fatalf("expected file source, got %+v", src)
	}
}

func TestLoadFromPath_TOMLUnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[workspaces]\nbogus = 1\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "workspaces.bogus") {
		t.Fatalf("expected unknown key error naming workspaces.bogus, got %v", err)
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	incDir := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(incDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(incDir, "10-names.yaml"), "workspaces:\n  names: [a, b]\n  popup_time_ms: 5\n")
	writeFile(t, filepath.Join(incDir, "20-more.toml"), "[workspaces]\npopup_time_ms = 7\n")
	main := filepath.Join(dir, "config.yaml")
	writeFile(t, main, "include: conf.d\nworkspaces:\n  wrap: false\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(res.Config.Workspaces.Names, []string{"a", "b"}) {
		t.Fatalf("unexpected names %v", res.Config.Workspaces.Names)
	}
	if res.Config.Workspaces.PopupTimeMS != 7 {
		t.Fatalf("expected later include to win, got %d", res.Config.Workspaces.PopupTimeMS)
	}
	if res.Config.Workspaces.Wrap {
		t.Fatalf("expected wrap false from main file")
	}
	if len(res.Files) != 3 || filepath.Base(res.Files[2]) != "config.yaml" {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle detected") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_MissingIncludeHasPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), ":2:5: include \"missing.yaml\"") {
		t.Fatalf("expected positioned include error, got %v", err)
	}
}

func TestValidationErrorCarriesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "logging:\n  level: loud\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "logging.level" || verr.Source.Line != 2 {
		t.Fatalf("unexpected validation error %+v", verr)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:10: logging.level:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"no names", func(c *Config) { c.Workspaces.Names = nil }, "workspaces.names"},
		{"blank name", func(c *Config) { c.Workspaces.Names = []string{"a", " "} }, "workspaces.names"},
		{"newline", func(c *Config) { c.Workspaces.Names = []string{"a\nb"} }, "workspaces.names"},
		{"duplicate", func(c *Config) { c.Workspaces.Names = []string{"a", "a"} }, "workspaces.names"},
		{"negative popup", func(c *Config) { c.Workspaces.PopupTimeMS = -1 }, "workspaces.popup_time_ms"},
		{"negative timeout", func(c *Config) { c.IPC.WriteTimeoutMS = -1 }, "ipc.write_timeout_ms"},
		{"mirror without ewmh", func(c *Config) { c.Announce.MirrorWindows = true }, "announce.mirror_windows"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "workspaces:\n  names: [x, y]\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "workspaces.names.1")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "y" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result %v %+v", val, src)
	}

	val, src, err = Explain(res, "workspaces.wrap")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != true || src.Kind != SourceDefault {
		t.Fatalf("expected default wrap, got %v %+v", val, src)
	}

	if _, _, err := Explain(res, "workspaces.bogus"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if _, _, err := Explain(res, "workspaces.names.9"); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(dir, "sartwc", "config.yaml") {
		t.Fatalf("unexpected path %q", path)
	}

	if err := os.MkdirAll(filepath.Join(dir, "sartwc"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sartwc", "config.toml"), "")
	path, err = DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if filepath.Base(path) != "config.toml" {
		t.Fatalf("expected toml fallback, got %q", path)
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "")

	var calls atomic.Int32
	changed := make(chan struct{}, 4)
	w, err := NewWatcher([]string{path}, func() {
		calls.Add(1)
		changed <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to enter its loop, then write in a burst.
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 3; i++ {
		writeFile(t, path, "workspaces:\n  wrap: false\n")
	}
	writeFile(t, filepath.Join(filepath.Dir(path), "unrelated.txt"), "x")

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected change notification")
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single debounced notification, got %d", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
