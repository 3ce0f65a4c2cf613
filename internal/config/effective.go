package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Workspaces.Names != nil {
		cfg.Workspaces.Names = append([]string(nil), raw.Workspaces.Names...)
	}
	apply(&cfg.Workspaces.PopupTimeMS, raw.Workspaces.PopupTimeMS)
	apply(&cfg.Workspaces.Wrap, raw.Workspaces.Wrap)

	apply(&cfg.IPC.Socket, raw.IPC.Socket)
	apply(&cfg.IPC.WriteTimeoutMS, raw.IPC.WriteTimeoutMS)

	apply(&cfg.Announce.StateFile, raw.Announce.StateFile)
	apply(&cfg.Announce.EWMH, raw.Announce.EWMH)
	apply(&cfg.Announce.MirrorWindows, raw.Announce.MirrorWindows)

	apply(&cfg.Logging.Level, raw.Logging.Level)
	apply(&cfg.Logging.Format, raw.Logging.Format)
	apply(&cfg.Logging.File, raw.Logging.File)
	apply(&cfg.Logging.MaxSizeMB, raw.Logging.MaxSizeMB)
	apply(&cfg.Logging.MaxBackups, raw.Logging.MaxBackups)

	return cfg
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
