package action

import (
	"errors"
	"fmt"

	"github.com/sartwc/sartwc/internal/workspace"
)

type goToDesktop struct {
	to   string
	wrap bool
}

func newGoToDesktop(args Args, env *Env) (Action, error) {
	to := args["to"]
	if to == "" {
		return nil, fmt.Errorf("GoToDesktop to=: %w", ErrMissingArgument)
	}
	return &goToDesktop{to: to, wrap: args.Bool("wrap", env.Wrap)}, nil
}

func (a *goToDesktop) Name() string { return "GoToDesktop" }

func (a *goToDesktop) Run(env *Env) error {
	target := env.Manager.Find(a.to, a.wrap)
	if target == nil {
		return fmt.Errorf("%q: %w", a.to, workspace.ErrNoSuchWorkspace)
	}
	env.Manager.SwitchTo(target, true)
	return nil
}

type sendToDesktop struct {
	to     string
	follow bool
	wrap   bool
}

func newSendToDesktop(args Args, env *Env) (Action, error) {
	to := args["to"]
	if to == "" {
		return nil, fmt.Errorf("SendToDesktop to=: %w", ErrMissingArgument)
	}
	return &sendToDesktop{
		to:     to,
		follow: args.Bool("follow", true),
		wrap:   args.Bool("wrap", env.Wrap),
	}, nil
}

func (a *sendToDesktop) Name() string { return "SendToDesktop" }

func (a *sendToDesktop) Run(env *Env) error {
	view := env.Desktop.ActiveView()
	if view == nil {
		return ErrNoActiveView
	}
	target := env.Manager.Find(a.to, a.wrap)
	if target == nil {
		return fmt.Errorf("%q: %w", a.to, workspace.ErrNoSuchWorkspace)
	}
	if !a.follow {
		env.Desktop.MoveToWorkspace(view, target.ID())
		return nil
	}
	env.Manager.SwitchTo(target, false)
	env.Desktop.MoveToWorkspace(view, target.ID())
	env.Desktop.FocusView(view)
	return nil
}

type toggleOmnipresent struct{}

func newToggleOmnipresent(Args, *Env) (Action, error) {
	return toggleOmnipresent{}, nil
}

func (toggleOmnipresent) Name() string { return "ToggleOmnipresent" }

func (toggleOmnipresent) Run(env *Env) error {
	view := env.Desktop.ActiveView()
	if view == nil {
		return ErrNoActiveView
	}
	env.Desktop.SetOmnipresent(view, !view.Omnipresent)
	return nil
}

type reconfigure struct{}

func newReconfigure(Args, *Env) (Action, error) {
	return reconfigure{}, nil
}

func (reconfigure) Name() string { return "Reconfigure" }

func (reconfigure) Run(env *Env) error {
	if env.Reconfigure == nil {
		return errors.New("reconfigure is not available")
	}
	return env.Reconfigure()
}
