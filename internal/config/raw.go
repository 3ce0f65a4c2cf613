package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// UnmarshalTOML accepts the same two shapes in TOML.
func (l *IncludeList) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		*l = []string{val}
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, s)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// Raw* mirror the effective types with pointer fields so a file can tell
// "unset" from a zero value when layered over includes and defaults.

type RawWorkspacesConfig struct {
	Names       []string `yaml:"names" toml:"names"`
	PopupTimeMS *int     `yaml:"popup_time_ms" toml:"popup_time_ms"`
	Wrap        *bool    `yaml:"wrap" toml:"wrap"`
}

type RawIPCConfig struct {
	Socket         *string `yaml:"socket" toml:"socket"`
	WriteTimeoutMS *int    `yaml:"write_timeout_ms" toml:"write_timeout_ms"`
}

type RawAnnounceConfig struct {
	StateFile     *bool `yaml:"state_file" toml:"state_file"`
	EWMH          *bool `yaml:"ewmh" toml:"ewmh"`
	MirrorWindows *bool `yaml:"mirror_windows" toml:"mirror_windows"`
}

type RawLoggingConfig struct {
	Level      *string `yaml:"level" toml:"level"`
	Format     *string `yaml:"format" toml:"format"`
	File       *string `yaml:"file" toml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups" toml:"max_backups"`
}

type RawConfig struct {
	Include    IncludeList         `yaml:"include" toml:"include"`
	Workspaces RawWorkspacesConfig `yaml:"workspaces" toml:"workspaces"`
	IPC        RawIPCConfig        `yaml:"ipc" toml:"ipc"`
	Announce   RawAnnounceConfig   `yaml:"announce" toml:"announce"`
	Logging    RawLoggingConfig    `yaml:"logging" toml:"logging"`
}

// merge layers overlay on top of r. Lists replace rather than append.
func (r RawConfig) merge(overlay RawConfig) RawConfig {
	out := r
	if overlay.Workspaces.Names != nil {
		out.Workspaces.Names = append([]string(nil), overlay.Workspaces.Names...)
	}
	mergePtr(&out.Workspaces.PopupTimeMS, overlay.Workspaces.PopupTimeMS)
	mergePtr(&out.Workspaces.Wrap, overlay.Workspaces.Wrap)

	mergePtr(&out.IPC.Socket, overlay.IPC.Socket)
	mergePtr(&out.IPC.WriteTimeoutMS, overlay.IPC.WriteTimeoutMS)

	mergePtr(&out.Announce.StateFile, overlay.Announce.StateFile)
	mergePtr(&out.Announce.EWMH, overlay.Announce.EWMH)
	mergePtr(&out.Announce.MirrorWindows, overlay.Announce.MirrorWindows)

	mergePtr(&out.Logging.Level, overlay.Logging.Level)
	mergePtr(&out.Logging.Format, overlay.Logging.Format)
	mergePtr(&out.Logging.File, overlay.Logging.File)
	mergePtr(&out.Logging.MaxSizeMB, overlay.Logging.MaxSizeMB)
	mergePtr(&out.Logging.MaxBackups, overlay.Logging.MaxBackups)
	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
