// Package app wires the improve pipeline into a host: an explicit object
// with Start and Stop, registering commands with the host's command surface
// instead of inheriting from a plugin framework.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matthieukhl/reword/internal/config"
	"github.com/matthieukhl/reword/internal/editor"
	"github.com/matthieukhl/reword/internal/hotkey"
	"github.com/matthieukhl/reword/internal/improve"
)

// Command is an action the host can expose in menus or bind to a hotkey.
type Command struct {
	ID    string
	Name  string
	Chord *hotkey.Chord // nil for menu-only commands
	Run   func(ctx context.Context) error
}

// Registry is the host's command/menu registration surface.
type Registry interface {
	Register(cmd Command) error
	Unregister(id string)
}

const (
	// MenuCommandID is the context-menu entry, active on a selection.
	MenuCommandID = "reword.improve-selection"
	// HotkeyCommandID is the global hotkey-bound command.
	HotkeyCommandID = "reword.improve-selection.hotkey"
)

// App owns the lifecycle of the reword integration inside a host.
type App struct {
	store    *config.Store
	improver *improve.Improver
	registry Registry
	active   func() editor.Buffer
	logger   *zap.Logger
}

// New builds an app. active returns the host's current document buffer and
// may return nil when no document is focused; for hosts without a document
// surface (such as the HTTP adapter) it may be nil itself.
func New(store *config.Store, improver *improve.Improver, registry Registry, active func() editor.Buffer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		store:    store,
		improver: improver,
		registry: registry,
		active:   active,
		logger:   logger,
	}
}

// Start registers the improve commands with the host. The menu entry is
// always registered; the hotkey command only when hotkey support is enabled
// and the configured chord parses. A chord that fails to parse is logged and
// skipped, never an error.
func (a *App) Start() error {
	if err := a.registry.Register(Command{
		ID:   MenuCommandID,
		Name: "Improve selected text",
		Run:  a.runImprove,
	}); err != nil {
		return fmt.Errorf("failed to register improve command: %w", err)
	}
	a.registerHotkey()
	return nil
}

// Stop unregisters everything Start registered.
func (a *App) Stop() {
	a.registry.Unregister(HotkeyCommandID)
	a.registry.Unregister(MenuCommandID)
}

// ApplyHotkey persists a new hotkey chord and re-registers the hotkey
// command immediately, with no restart.
func (a *App) ApplyHotkey(chord string) error {
	if err := a.store.Set("hotkey.chord", chord); err != nil {
		return err
	}
	a.registry.Unregister(HotkeyCommandID)
	a.registerHotkey()
	return nil
}

func (a *App) registerHotkey() {
	if !a.store.Hotkey.Enabled {
		return
	}
	chord := hotkey.Parse(a.store.Hotkey.Chord)
	if chord == nil {
		a.logger.Warn("hotkey does not parse, skipping registration",
			zap.String("chord", a.store.Hotkey.Chord))
		return
	}
	if err := a.registry.Register(Command{
		ID:    HotkeyCommandID,
		Name:  "Improve selected text",
		Chord: chord,
		Run:   a.runImprove,
	}); err != nil {
		a.logger.Warn("failed to register hotkey command", zap.Error(err))
	}
}

func (a *App) runImprove(ctx context.Context) error {
	if a.active == nil {
		return fmt.Errorf("host has no active document surface")
	}
	buf := a.active()
	if buf == nil {
		return fmt.Errorf("no document is focused")
	}
	return a.improver.Improve(ctx, buf)
}

// LogNotifier surfaces notifications through the process log. Hosts without
// a transient message surface use it.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(message string) {
	n.Logger.Info("notify", zap.String("message", message))
}

var _ improve.Notifier = (*LogNotifier)(nil)
