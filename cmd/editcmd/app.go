package main

import (
	"errors"
	"io"

	"editcmd/internal/bindings"
	"editcmd/internal/bundle"
	"editcmd/internal/command"
	"editcmd/internal/config"
	"editcmd/internal/logging"
	"editcmd/internal/plugins/text"
	"editcmd/internal/registrar"
	"editcmd/internal/store"
)

// app wires the command core for one CLI invocation.
type app struct {
	cfg       *config.Config
	registry  *command.Registry
	keymap    *bindings.Keymap
	menu      *bindings.MenuBar
	history   *command.History
	closers   []io.Closer
	library   *bundle.Library
	registrar *registrar.Registrar
}

// newApp builds the registry, loads the text plugin and every bundle under
// cfg.Bundles.Dirs. Bundle failures are logged; the plugin must register.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:      cfg,
		registry: command.NewRegistry(),
		keymap:   bindings.NewKeymap(),
		menu:     bindings.NewMenuBar(),
	}

	var histOpts []command.HistoryOption
	if cfg.History.Persist {
		s, err := store.NewHistoryStore(cfg.History.DatabasePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		histOpts = append(histOpts, command.WithSink(s))
	}
	a.history = command.NewHistory(cfg.History.Max, histOpts...)
	a.history.Start()

	a.registrar = registrar.New(a.registry, a.keymap, a.menu, registrar.WithHistory(a.history))
	if err := text.Register(a.registrar); err != nil {
		a.shutdown()
		return nil, err
	}

	a.library = bundle.NewLibrary(a.registry, a.keymap, nil)
	a.library.SetRunner(command.NewShellRunner(cfg, nil, a.library))
	if err := a.library.LoadRoots(cfg.Bundles.Dirs); err != nil {
		logging.BundlesWarn("some bundles failed to load: %v", err)
	}

	logging.Boot("loaded %d commands", a.registry.Count())
	return a, nil
}

func (a *app) close() error {
	a.history.Stop()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// shutdown closes the app and logs what failed to close.
func (a *app) shutdown() {
	if err := a.close(); err != nil {
		logging.BootWarn("shutdown: %v", err)
	}
}
