// Package compositor owns the top-level wiring of a running sartwc session:
// the event loop and everything that lives on it, plus the goroutines that
// feed it (IPC readers, the X pump, config reloads).
package compositor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sartwc/sartwc/internal/action"
	"github.com/sartwc/sartwc/internal/announce"
	"github.com/sartwc/sartwc/internal/announce/ewmh"
	"github.com/sartwc/sartwc/internal/config"
	"github.com/sartwc/sartwc/internal/desktop"
	"github.com/sartwc/sartwc/internal/eventloop"
	"github.com/sartwc/sartwc/internal/ipc"
	"github.com/sartwc/sartwc/internal/logging"
	"github.com/sartwc/sartwc/internal/runtimepath"
	"github.com/sartwc/sartwc/internal/workspace"
)

const (
	HeadlessOutput        = "HEADLESS-1"
	DefaultResyncInterval = 10 * time.Second
)

var headlessGeometry = desktop.Geometry{Width: 1920, Height: 1080}

// Options configures a Compositor.
type Options struct {
	Config *config.Config
	// ConfigPath is reloaded on reconfigure. Empty keeps Config.
	ConfigPath string
	// ConfigFiles are watched for edits when Watch is set.
	ConfigFiles []string
	Watch       bool
	// Store overrides the default state-directory store.
	Store workspace.Persister
	// StateFilePath overrides the runtime workspace mirror location.
	StateFilePath string
	// ResyncInterval is how often mirrored X windows are re-read in full.
	ResyncInterval time.Duration
	Logger         *slog.Logger
}

// Compositor is the session context object.
type Compositor struct {
	opts   Options
	logger *slog.Logger

	loop       *eventloop.Loop
	desktop    *desktop.Desktop
	manager    *workspace.Manager
	env        *action.Env
	actions    *action.Registry
	dispatcher *ipc.Dispatcher
	server     *ipc.Server

	stateFile *announce.StateFile
	bridge    *ewmh.Bridge

	// cfg is owned by the loop after Run starts.
	cfg  *config.Config
	load func(path string) (*config.LoadResult, error)
}

// New builds the session. Nothing runs until Run.
func New(opts Options) (*Compositor, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger()
	}
	if opts.ResyncInterval <= 0 {
		opts.ResyncInterval = DefaultResyncInterval
	}
	cfg := opts.Config

	c := &Compositor{
		opts:   opts,
		logger: opts.Logger,
		cfg:    cfg,
		load:   config.LoadFromPath,
	}
	c.loop = eventloop.New(0, c.logger.With("component", logging.CompLoop))
	c.desktop = desktop.New(desktop.Options{
		PopupTime: cfg.PopupTime(),
		Logger:    c.logger.With("component", logging.CompDesktop),
	})

	announcers := c.setupAnnouncers(cfg)

	store := opts.Store
	if store == nil {
		s, err := workspace.NewStore(c.logger.With("component", logging.CompWorkspace))
		if err != nil {
			c.logger.Warn("workspace persistence disabled", "error", err)
		} else {
			store = s
		}
	}

	c.manager = workspace.NewManager(workspace.Options{
		Shell:      c.desktop,
		Announcers: announcers,
		Store:      store,
		Logger:     c.logger.With("component", logging.CompWorkspace),
	})
	c.desktop.SetWorkspaceSwitcher(func(id workspace.ID) {
		if ws := c.manager.Registry().ByID(id); ws != nil {
			c.manager.SwitchTo(ws, false)
		}
	})

	c.env = &action.Env{
		Manager:     c.manager,
		Desktop:     c.desktop,
		Wrap:        cfg.Workspaces.Wrap,
		Reconfigure: c.reconfigure,
	}
	c.actions = action.NewRegistry(c.env, c.logger.With("component", logging.CompAction))

	ipcLog := c.logger.With("component", logging.CompIPC)
	c.dispatcher = ipc.NewDispatcher(c.manager, c.desktop, c.actions, ipcLog)
	c.server = ipc.NewServer(ipc.Config{
		SocketPath:   cfg.IPC.Socket,
		WriteTimeout: cfg.WriteTimeout(),
		ExportEnv:    true,
		Logger:       ipcLog,
	}, c.loop, c.dispatcher)
	c.manager.SetNotifier(c.server)
	c.desktop.SetListener(c.server)

	c.setupOutputs()

	// Nothing else runs yet, so this is equivalent to doing it on the loop.
	// Configured and persisted names only apply on Reconfigure.
	c.manager.Init()

	if c.bridge != nil && cfg.Announce.MirrorWindows {
		m := ewmh.NewMirror(c.desktop, c.manager.Registry(), c.logger.With("component", logging.CompX11))
		if err := c.bridge.MirrorWindows(m); err != nil {
			c.logger.Warn("X window mirroring disabled", "error", err)
		}
	}
	return c, nil
}

func (c *Compositor) setupAnnouncers(cfg *config.Config) []workspace.Announcer {
	var out []workspace.Announcer
	annLog := c.logger.With("component", logging.CompAnnounce)

	if cfg.Announce.StateFile {
		path := c.opts.StateFilePath
		if path == "" {
			p, err := runtimepath.WorkspaceMirrorPath()
			if err != nil {
				annLog.Warn("workspace state file disabled", "error", err)
			}
			path = p
		}
		if path != "" {
			c.stateFile = announce.NewStateFile(path, annLog)
			out = append(out, c.stateFile)
		}
	}

	if cfg.Announce.EWMH {
		bridge, err := ewmh.Connect(c.loop.Post, c.logger.With("component", logging.CompX11))
		if err != nil {
			annLog.Warn("EWMH announcer disabled", "error", err)
		} else {
			c.bridge = bridge
			out = append(out, bridge.Announcer())
		}
	}
	return out
}

// setupOutputs mirrors X monitors when connected and falls back to a single
// headless output.
func (c *Compositor) setupOutputs() {
	if c.bridge != nil {
		monitors, err := c.bridge.Monitors()
		if err != nil {
			c.logger.Warn("failed to read X monitors", "error", err)
		}
		for _, m := range monitors {
			c.desktop.AddOutput(m.Name,
				desktop.Geometry{X: m.Bounds.X, Y: m.Bounds.Y, Width: m.Bounds.Width, Height: m.Bounds.Height},
				desktop.Geometry{X: m.Usable.X, Y: m.Usable.Y, Width: m.Usable.Width, Height: m.Usable.Height})
		}
	}
	if len(c.desktop.Outputs()) == 0 {
		c.desktop.AddOutput(HeadlessOutput, headlessGeometry, headlessGeometry)
	}
}

// Loop returns the session event loop.
func (c *Compositor) Loop() *eventloop.Loop { return c.loop }

// Manager returns the workspace manager. Use it from the loop only.
func (c *Compositor) Manager() *workspace.Manager { return c.manager }

// Desktop returns the desktop model. Use it from the loop only.
func (c *Compositor) Desktop() *desktop.Desktop { return c.desktop }

// Server returns the IPC server.
func (c *Compositor) Server() *ipc.Server { return c.server }

// Do runs fn on the loop and waits for it.
func (c *Compositor) Do(ctx context.Context, fn func()) error {
	return c.loop.Do(ctx, fn)
}

// Run serves the session until ctx is cancelled. The IPC server is closed
// before the loop stops so client teardown still runs in order.
func (c *Compositor) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	loopErr := make(chan error, 1)
	go func() {
		err := c.loop.Run(loopCtx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		loopErr <- err
	}()

	if err := c.server.Start(); err != nil {
		c.logger.Warn("IPC disabled", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.handleSignals(gctx) })
	if c.bridge != nil {
		g.Go(func() error { return c.bridge.Run(gctx) })
		if c.opts.Config.Announce.MirrorWindows {
			g.Go(func() error { return c.resync(gctx) })
		}
	}
	if c.opts.Watch && c.opts.ConfigPath != "" {
		files := c.opts.ConfigFiles
		if len(files) == 0 {
			files = []string{c.opts.ConfigPath}
		}
		w, err := config.NewWatcher(files, c.Reload, c.logger.With("component", logging.CompConfig))
		if err != nil {
			c.logger.Warn("config watching disabled", "error", err)
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	c.logger.Info("compositor running", "socket", c.server.SocketPath())
	err := g.Wait()

	c.server.Close()
	teardown := func() {
		c.manager.Destroy()
		if c.stateFile != nil {
			if err := c.stateFile.Close(); err != nil {
				c.logger.Debug("failed to remove workspace state file", "error", err)
			}
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if derr := c.loop.Do(shutdownCtx, teardown); derr != nil {
		c.logger.Warn("teardown did not complete", "error", derr)
	}
	if c.bridge != nil {
		c.bridge.Close()
	}
	stopLoop()
	if lerr := <-loopErr; lerr != nil && err == nil {
		err = lerr
	}
	c.logger.Info("compositor stopped")
	return err
}

func (c *Compositor) handleSignals(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	defer signal.Stop(sigs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigs:
			c.logger.Info("received SIGHUP, reloading config")
			c.Reload()
		}
	}
}

// resync re-reads the full X client list periodically in case a property
// change was missed.
func (c *Compositor) resync(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.ResyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.bridge.Resync()
		}
	}
}

// Reload loads the config file off the loop and applies it on the loop.
// Load errors keep the running configuration.
func (c *Compositor) Reload() {
	cfg, err := c.loadConfig()
	if err != nil {
		c.logger.Error("config reload failed", "error", err)
		return
	}
	if err := c.loop.Post(func() { c.apply(cfg) }); err != nil {
		c.logger.Debug("dropping config reload", "error", err)
	}
}

// reconfigure is the Reconfigure action. It runs on the loop.
func (c *Compositor) reconfigure() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.apply(cfg)
	return nil
}

func (c *Compositor) loadConfig() (*config.Config, error) {
	if c.opts.ConfigPath == "" {
		return c.opts.Config, nil
	}
	res, err := c.load(c.opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.opts.ConfigPath, err)
	}
	return res.Config, nil
}

// apply pushes reloadable settings into the running session. Socket and
// announcer settings take effect on restart.
func (c *Compositor) apply(cfg *config.Config) {
	c.cfg = cfg
	c.desktop.SetPopupTime(cfg.PopupTime())
	c.env.Wrap = cfg.Workspaces.Wrap
	logging.SetLevel(cfg.Logging.Level)
	c.manager.Reconfigure(cfg.Workspaces.Names)
	c.logger.Info("configuration applied", "workspaces", c.manager.Registry().Len())
}
