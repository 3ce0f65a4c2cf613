// Package action implements the named compositor actions that IPC clients
// can invoke as "<Action> [key=value ...]".
package action

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/workspace"
)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrMissingArgument = errors.New("missing required argument")
	ErrNoActiveView    = errors.New("no focused view")
)

// Args holds an action's key=value arguments. Keys are lower-case.
type Args map[string]string

// Bool parses a yes/no style argument. Missing or unrecognised values yield
// def.
func (a Args) Bool(key string, def bool) bool {
	switch strings.ToLower(a[key]) {
	case "yes", "true", "on", "1":
		return true
	case "no", "false", "off", "0":
		return false
	}
	return def
}

// Env is what actions operate on.
type Env struct {
	Manager *workspace.Manager
	Desktop *desktop.Desktop
	// Wrap is the default for wrap= when an action does not set it.
	Wrap bool
	// Reconfigure reloads configuration and reconciles workspaces.
	Reconfigure func() error
}

// Action is a validated, ready-to-run action.
type Action interface {
	Name() string
	Run(env *Env) error
}

// Constructor validates args and builds an action.
type Constructor func(args Args, env *Env) (Action, error)

// Registry maps case-insensitive action names to constructors.
type Registry struct {
	ctors  map[string]Constructor
	names  []string
	env    *Env
	logger *slog.Logger
}

// NewRegistry returns a registry with the built-in actions.
func NewRegistry(env *Env, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{ctors: make(map[string]Constructor), env: env, logger: logger}
	r.Register("GoToDesktop", newGoToDesktop)
	r.Register("SendToDesktop", newSendToDesktop)
	r.Register("ToggleOmnipresent", newToggleOmnipresent)
	r.Register("Reconfigure", newReconfigure)
	return r
}

// Register adds or replaces an action.
func (r *Registry) Register(name string, c Constructor) {
	key := strings.ToLower(name)
	if _, exists := r.ctors[key]; !exists {
		r.names = append(r.names, name)
	}
	r.ctors[key] = c
}

// Names lists registered actions in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Create resolves name and validates args.
func (r *Registry) Create(name string, args Args) (Action, error) {
	c, ok := r.ctors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownAction)
	}
	if args == nil {
		args = Args{}
	}
	return c(args, r.env)
}

// Run executes a and logs any failure. Actions are fire-and-forget from the
// caller's point of view.
func (r *Registry) Run(a Action) {
	if err := a.Run(r.env); err != nil {
		r.logger.Warn("action failed", "action", a.Name(), "error", err)
		return
	}
	r.logger.Debug("action ran", "action", a.Name())
}
