package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given dotted path and its source.
//
// Supported paths include:
//
//	workspaces
//	workspaces.names
//	workspaces.names.<i>
//	workspaces.popup_time_ms
//	workspaces.wrap
//	ipc.socket
//	ipc.write_timeout_ms
//	announce.state_file
//	announce.ewmh
//	announce.mirror_windows
//	logging.level
//	logging.format
//	logging.file
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	// A list element inherits the source of its list.
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		if _, err := strconv.Atoi(path[i+1:]); err == nil {
			if src, ok := res.Sources[path[:i]]; ok {
				return value, src, nil
			}
		}
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(fields map[string]any) (any, error) {
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		v, ok := fields[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "workspaces":
		if len(parts) == 1 {
			return cfg.Workspaces, nil
		}
		if parts[1] == "names" && len(parts) == 3 {
			i, err := strconv.Atoi(parts[2])
			if err != nil || i < 0 || i >= len(cfg.Workspaces.Names) {
				return nil, fmt.Errorf("unknown workspaces.names entry %q", parts[2])
			}
			return cfg.Workspaces.Names[i], nil
		}
		return leaf(map[string]any{
			"names":         cfg.Workspaces.Names,
			"popup_time_ms": cfg.Workspaces.PopupTimeMS,
			"wrap":          cfg.Workspaces.Wrap,
		})
	case "ipc":
		if len(parts) == 1 {
			return cfg.IPC, nil
		}
		return leaf(map[string]any{
			"socket":           cfg.IPC.Socket,
			"write_timeout_ms": cfg.IPC.WriteTimeoutMS,
		})
	case "announce":
		if len(parts) == 1 {
			return cfg.Announce, nil
		}
		return leaf(map[string]any{
			"state_file":     cfg.Announce.StateFile,
			"ewmh":           cfg.Announce.EWMH,
			"mirror_windows": cfg.Announce.MirrorWindows,
		})
	case "logging":
		if len(parts) == 1 {
			return cfg.Logging, nil
		}
		return leaf(map[string]any{
			"level":       cfg.Logging.Level,
			"format":      cfg.Logging.Format,
			"file":        cfg.Logging.File,
			"max_size_mb": cfg.Logging.MaxSizeMB,
			"max_backups": cfg.Logging.MaxBackups,
		})
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
