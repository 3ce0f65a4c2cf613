package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WorkspacesConfig configures the virtual desktops.
type WorkspacesConfig struct {
	// Names is the initial ordered list of workspace names. A persisted list
	// from the previous session takes precedence on reconfigure.
	Names []string `yaml:"names" toml:"names" json:"names"`
	// PopupTimeMS is how long the switch OSD stays up. 0 disables it.
	PopupTimeMS int `yaml:"popup_time_ms" toml:"popup_time_ms" json:"popup_time_ms"`
	// Wrap is the default for GoToDesktop/SendToDesktop wrap=.
	Wrap bool `yaml:"wrap" toml:"wrap" json:"wrap"`
}

// IPCConfig configures the control socket.
type IPCConfig struct {
	// Socket overrides $XDG_RUNTIME_DIR/sartwc-$WAYLAND_DISPLAY.sock.
	Socket         string `yaml:"socket,omitempty" toml:"socket" json:"socket,omitempty"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms" toml:"write_timeout_ms" json:"write_timeout_ms"`
}

// AnnounceConfig selects the workspace announcers.
type AnnounceConfig struct {
	// StateFile mirrors workspaces to $XDG_RUNTIME_DIR/sartwc-workspaces.json.
	StateFile bool `yaml:"state_file" toml:"state_file" json:"state_file"`
	// EWMH publishes desktops on the X11 root window named by $DISPLAY.
	EWMH bool `yaml:"ewmh" toml:"ewmh" json:"ewmh"`
	// MirrorWindows imports X client windows as views. Requires EWMH.
	MirrorWindows bool `yaml:"mirror_windows" toml:"mirror_windows" json:"mirror_windows"`
}

// LoggingConfig configures the daemon log.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level" json:"level"`
	// Format is text or json.
	Format string `yaml:"format" toml:"format" json:"format"`
	// File enables a rotating log file instead of stderr.
	File       string `yaml:"file,omitempty" toml:"file" json:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups" json:"max_backups"`
}

// Config is the effective daemon configuration.
type Config struct {
	Workspaces WorkspacesConfig `yaml:"workspaces" toml:"workspaces" json:"workspaces"`
	IPC        IPCConfig        `yaml:"ipc" toml:"ipc" json:"ipc"`
	Announce   AnnounceConfig   `yaml:"announce" toml:"announce" json:"announce"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging" json:"logging"`
}

const (
	DefaultPopupTimeMS    = 1000
	DefaultWriteTimeoutMS = 50
	DefaultMaxSizeMB      = 10
	DefaultMaxBackups     = 3
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Workspaces: WorkspacesConfig{
			Names:       []string{"1"},
			PopupTimeMS: DefaultPopupTimeMS,
			Wrap:        true,
		},
		IPC: IPCConfig{
			WriteTimeoutMS: DefaultWriteTimeoutMS,
		},
		Announce: AnnounceConfig{
			StateFile: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
		},
	}
}

// PopupTime returns the OSD duration.
func (c *Config) PopupTime() time.Duration {
	return time.Duration(c.Workspaces.PopupTimeMS) * time.Millisecond
}

// WriteTimeout returns the per-write IPC deadline.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.IPC.WriteTimeoutMS) * time.Millisecond
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if len(c.Workspaces.Names) == 0 {
		return &ValidationError{Path: "workspaces.names", Err: fmt.Errorf("at least one workspace name is required")}
	}
	seen := make(map[string]int, len(c.Workspaces.Names))
	for i, name := range c.Workspaces.Names {
		path := fmt.Sprintf("workspaces.names[%d]", i)
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "workspaces.names", Err: fmt.Errorf("%s must not be empty", path)}
		}
		if strings.ContainsAny(name, "\r\n\x00") {
			return &ValidationError{Path: "workspaces.names", Err: fmt.Errorf("%s must not contain line breaks", path)}
		}
		if prev, dup := seen[name]; dup {
			return &ValidationError{Path: "workspaces.names", Err: fmt.Errorf("%s duplicates workspaces.names[%d] (%q)", path, prev, name)}
		}
		seen[name] = i
	}
	if c.Workspaces.PopupTimeMS < 0 {
		return &ValidationError{Path: "workspaces.popup_time_ms", Err: fmt.Errorf("popup_time_ms must be >= 0")}
	}
	if c.IPC.WriteTimeoutMS < 0 {
		return &ValidationError{Path: "ipc.write_timeout_ms", Err: fmt.Errorf("write_timeout_ms must be >= 0")}
	}
	if c.Announce.MirrorWindows && !c.Announce.EWMH {
		return &ValidationError{Path: "announce.mirror_windows", Err: fmt.Errorf("mirror_windows requires announce.ewmh")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("max_size_mb and max_backups must be >= 0")}
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
