package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/sartwc/sartwc/internal/ipc"
)

func printWorkspaceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sartwc workspace list [--json]")
	fmt.Fprintln(w, "  sartwc workspace add [name]")
	fmt.Fprintln(w, "  sartwc workspace rename <workspace> <name>")
	fmt.Fprintln(w, "  sartwc workspace remove <workspace>")
	fmt.Fprintln(w, "  sartwc workspace switch [--no-wrap] <target>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "<workspace> is a 1-based index or an exact name. <target> also accepts")
	fmt.Fprintln(w, "left, right, last, left-occupied and right-occupied.")
	fmt.Fprintln(w, "All commands accept --socket PATH.")
}

func runWorkspace(args []string) int {
	if len(args) == 0 {
		printWorkspaceUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list", "ls":
		return runWorkspaceList(args[1:])
	case "add":
		return runWorkspaceAdd(args[1:])
	case "rename":
		return runWorkspaceRename(args[1:])
	case "remove", "rm":
		return runWorkspaceRemove(args[1:])
	case "switch":
		return runWorkspaceSwitch(args[1:])
	case "help", "-h", "--help":
		printWorkspaceUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown workspace command: %s\n\n", args[0])
		printWorkspaceUsage(os.Stderr)
		return 2
	}
}

func workspaceFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path (default: $SARTWC_IPC_SOCKET)")
	return fs, socket
}

func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func runWorkspaceList(args []string) int {
	fs, socket := workspaceFlags("workspace list")
	jsonOut := fs.Bool("json", false, "Print the JSON document")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := newClient(*socket).Workspaces(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data)
	}
	writeWorkspaces(os.Stdout, data, term.IsTerminal(int(os.Stdout.Fd())))
	return 0
}

// writeWorkspaces prints an aligned table for terminals and one
// tab-separated record per workspace otherwise.
func writeWorkspaces(w io.Writer, data *ipc.WorkspacesData, human bool) {
	if !human {
		for _, ws := range data.Workspaces {
			active := 0
			if ws.Active {
				active = 1
			}
			fmt.Fprintf(w, "%d\t%s\t%d\n", ws.Index, ws.Name, active)
		}
		return
	}
	width := len("NAME")
	for _, ws := range data.Workspaces {
		if len(ws.Name) > width {
			width = len(ws.Name)
		}
	}
	fmt.Fprintf(w, "  %-5s %-*s\n", "INDEX", width, "NAME")
	for _, ws := range data.Workspaces {
		marker := " "
		if ws.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-5d %-*s\n", marker, ws.Index, width, ws.Name)
	}
}

func runWorkspaceAdd(args []string) int {
	fs, socket := workspaceFlags("workspace add")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "workspace add takes at most one name (quote names with spaces)")
		return 2
	}
	if err := newClient(*socket).AddWorkspace(context.Background(), fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWorkspaceRename(args []string) int {
	fs, socket := workspaceFlags("workspace rename")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: sartwc workspace rename <workspace> <name>")
		return 2
	}
	client := newClient(*socket)
	index, err := lookupWorkspace(client, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.RenameWorkspace(context.Background(), index, fs.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWorkspaceRemove(args []string) int {
	fs, socket := workspaceFlags("workspace remove")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: sartwc workspace remove <workspace>")
		return 2
	}
	client := newClient(*socket)
	index, err := lookupWorkspace(client, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.RemoveWorkspace(context.Background(), index); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWorkspaceSwitch(args []string) int {
	fs, socket := workspaceFlags("workspace switch")
	noWrap := fs.Bool("no-wrap", false, "Do not wrap around for left/right")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 || strings.ContainsAny(fs.Arg(0), " \t") {
		fmt.Fprintln(os.Stderr, "Usage: sartwc workspace switch [--no-wrap] <target>")
		return 2
	}
	actionArgs := map[string]string{"to": fs.Arg(0)}
	if *noWrap {
		actionArgs["wrap"] = "no"
	}
	if err := newClient(*socket).Action(context.Background(), "GoToDesktop", actionArgs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// lookupWorkspace resolves an index or exact name. Numbers are indexes first.
func lookupWorkspace(client *ipc.Client, token string) (int, error) {
	data, err := client.Workspaces(context.Background())
	if err != nil {
		return 0, err
	}
	return resolveWorkspace(data, token)
}

func resolveWorkspace(data *ipc.WorkspacesData, token string) (int, error) {
	if n, err := strconv.Atoi(token); err == nil && n >= 1 && n <= len(data.Workspaces) {
		return n, nil
	}
	for _, ws := range data.Workspaces {
		if ws.Name == token {
			return ws.Index, nil
		}
	}
	return 0, fmt.Errorf("no workspace %q", token)
}
