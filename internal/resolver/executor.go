package resolver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"wayfocus/internal/registry"
	"wayfocus/internal/wm"
	"wayfocus/pkg/logger"
)

// Executor performs the side effect of a resolved action: a compositor
// activation dispatch or a detached process spawn.
type Executor struct {
	log    *logger.Logger
	client wm.Client
	reg    *registry.Registry
}

func NewExecutor(client wm.Client, reg *registry.Registry, log *logger.Logger) *Executor {
	return &Executor{log: log, client: client, reg: reg}
}

// Execute carries out a resolved action.
func (e *Executor) Execute(ctx context.Context, action Action) error {
	switch action.Kind {
	case ActivateAction:
		return e.activate(ctx, action.Target)
	case LaunchAction:
		err := e.launch(action.Command)
		if err != nil && action.Entry.ID != "" {
			// The entry's Exec may name a binary that is not on PATH
			// (Flatpak exports and friends). gtk-launch resolves the
			// entry through the desktop database instead.
			e.log.Warn("Exec launch failed, retrying via gtk-launch",
				"entry_id", action.Entry.ID, "error", err.Error())
			return e.launch([]string{"gtk-launch", action.Entry.ID})
		}
		return err
	default:
		return fmt.Errorf("unknown action kind %d", action.Kind)
	}
}

func (e *Executor) activate(ctx context.Context, target wm.Toplevel) error {
	// The window may have closed between resolve and execute. A stale
	// handle must fail loudly, not no-op against a recycled address.
	if _, ok := e.reg.Get(target.Handle); !ok {
		return fmt.Errorf("%s: %w", target.AppID, ErrStaleHandle)
	}

	if err := e.client.Activate(ctx, target.Handle); err != nil {
		if _, ok := e.reg.Get(target.Handle); !ok {
			return fmt.Errorf("%s: %w", target.AppID, ErrStaleHandle)
		}
		return fmt.Errorf("failed to activate window: %w", err)
	}

	e.log.Info("Window activated",
		"handle", string(target.Handle), "app_id", target.AppID)
	return nil
}

func (e *Executor) launch(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty launch command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// Detach: the launched app must outlive a one-shot CLI invocation.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %q: %w", argv[0], err)
	}
	if err := cmd.Process.Release(); err != nil {
		e.log.Warn("Failed to release launched process", "error", err.Error())
	}

	e.log.Info("Application launched", "command", argv)
	return nil
}

// FocusOrLaunch resolves and executes in one step, re-resolving once if
// the window closed in between.
func FocusOrLaunch(ctx context.Context, r *Resolver, e *Executor, requested string, launchCmd string) error {
	action, err := r.ResolveWithOverride(requested, launchCmd)
	if err != nil {
		return err
	}

	err = e.Execute(ctx, action)
	if errors.Is(err, ErrStaleHandle) {
		e.log.Warn("Resolved window vanished, re-resolving once", "requested", requested)
		action, err = r.ResolveWithOverride(requested, launchCmd)
		if err != nil {
			return err
		}
		return e.Execute(ctx, action)
	}
	return err
}
