package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/sartwc/sartwc/internal/compositor"
	"github.com/sartwc/sartwc/internal/config"
	"github.com/sartwc/sartwc/internal/ipc"
	"github.com/sartwc/sartwc/internal/logging"
	"github.com/sartwc/sartwc/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "msg":
		os.Exit(runMsg(os.Args[2:]))
	case "workspace":
		os.Exit(runWorkspace(os.Args[2:]))
	case "views":
		os.Exit(runViews(os.Args[2:]))
	case "events":
		os.Exit(runEvents(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sartwc <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the compositor session (foreground)")
	fmt.Fprintln(w, "  msg <line>          Send one raw IPC command and print the reply")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  workspace list      List workspaces")
	fmt.Fprintln(w, "  workspace add       Append a workspace")
	fmt.Fprintln(w, "  workspace rename    Rename a workspace")
	fmt.Fprintln(w, "  workspace remove    Remove a workspace")
	fmt.Fprintln(w, "  workspace switch    Switch to a workspace")
	fmt.Fprintln(w, "  views               List mapped views")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  events              Print compositor events as they happen")
	fmt.Fprintln(w, "  watch               Open the interactive workspace monitor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'sartwc <command> --help' for command-specific options.")
}

// newClient returns a client for socket, or the environment's default.
func newClient(socket string) *ipc.Client {
	if socket != "" {
		return ipc.NewClientWithPath(socket)
	}
	return ipc.NewClient()
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/sartwc/config.yaml)")
	noWatch := fs.Bool("no-watch", false, "Do not reload when the config file changes")
	logLevel := fs.String("log-level", "", "Override logging.level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sartwc daemon [--config PATH] [--no-watch] [--log-level LEVEL]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the compositor session in the foreground. SIGHUP reloads the config.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	path := *configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	logger := logging.Init(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer logging.Close()
	logger.Info("configuration loaded", "path", path, "files", len(res.Files), "workspaces", len(cfg.Workspaces.Names))

	c, err := compositor.New(compositor.Options{
		Config:      cfg,
		ConfigPath:  path,
		ConfigFiles: append(res.Files, path),
		Watch:       !*noWatch,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start compositor", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := c.Run(ctx); err != nil {
		logger.Error("compositor exited", "error", err)
		return 1
	}
	return 0
}

func runMsg(args []string) int {
	fs := flag.NewFlagSet("msg", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path (default: $SARTWC_IPC_SOCKET)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sartwc msg [--socket PATH] <command line>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Send one IPC command and print the reply verbatim, e.g.:")
		fmt.Fprintln(os.Stderr, "  sartwc msg list-workspaces")
		fmt.Fprintln(os.Stderr, "  sartwc msg GoToDesktop to=right")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	line := strings.Join(fs.Args(), " ")
	reply, err := newClient(*socket).Send(context.Background(), line)
	fmt.Print(reply)
	if err != nil {
		if !errors.Is(err, ipc.ErrRemote) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func runViews(args []string) int {
	fs := flag.NewFlagSet("views", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path (default: $SARTWC_IPC_SOCKET)")
	jsonOut := fs.Bool("json", false, "Print the JSON document")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := newClient(*socket).Views(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data)
	}
	for _, v := range data.Views {
		focus := " "
		if v.Focused {
			focus = "*"
		}
		fmt.Printf("%s %d:%s\t%s\t%s\t%dx%d+%d+%d\n", focus, v.Workspace, v.WorkspaceName, v.AppID, v.Title, v.W, v.H, v.X, v.Y)
	}
	return 0
}

func runEvents(args []string) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path (default: $SARTWC_IPC_SOCKET)")
	jsonOut := fs.Bool("json", false, "Print one JSON object per event")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sartwc events [--socket PATH] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Subscribe to compositor events and print them until interrupted.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	err := newClient(*socket).Subscribe(ctx, func(ev ipc.Event) {
		if *jsonOut {
			enc.Encode(map[string]any{"event": ev.Name, "fields": ev.Fields})
			return
		}
		fmt.Println(formatEvent(ev))
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatEvent(ev ipc.Event) string {
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(ev.Name)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%s", k, ev.Fields[k])
	}
	return sb.String()
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path (default: $SARTWC_IPC_SOCKET)")

	if isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: sartwc watch [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive monitor that follows workspace and view changes.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Select workspace")
		fmt.Fprintln(os.Stderr, "  Enter     Switch to selected workspace")
		fmt.Fprintln(os.Stderr, "  h/l, ←/→  Switch left/right")
		fmt.Fprintln(os.Stderr, "  a         Add a workspace")
		fmt.Fprintln(os.Stderr, "  r         Rename selected workspace")
		fmt.Fprintln(os.Stderr, "  d         Remove selected workspace")
		fmt.Fprintln(os.Stderr, "  o         Toggle omnipresent on the focused view")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	if err := tui.Run(ctx, newClient(*socket)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
