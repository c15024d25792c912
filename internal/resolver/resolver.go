package resolver

import (
	"fmt"
	"strings"

	"wayfocus/internal/appid"
	"wayfocus/internal/desktop"
	"wayfocus/internal/registry"
	"wayfocus/internal/wm"
	"wayfocus/pkg/logger"
)

// ActionKind distinguishes the two outcomes of a resolve.
type ActionKind int

const (
	// ActivateAction focuses an existing window.
	ActivateAction ActionKind = iota
	// LaunchAction spawns a new process from a desktop entry.
	LaunchAction
)

// Action is the transient result of one resolve. The resolver performs no
// side effects itself; the caller hands the action to an Executor.
type Action struct {
	Kind    ActionKind
	Target  wm.Toplevel   // ActivateAction
	Command []string      // LaunchAction
	Entry   desktop.Entry // LaunchAction, zero when launched via override
}

// Resolver turns a requested identifier into a single resolved action.
type Resolver struct {
	log  *logger.Logger
	norm *appid.Normalizer
	reg  *registry.Registry
	db   *desktop.Database
}

func New(reg *registry.Registry, db *desktop.Database, norm *appid.Normalizer, log *logger.Logger) *Resolver {
	return &Resolver{log: log, norm: norm, reg: reg, db: db}
}

// Resolve decides between activating an existing window and launching a
// new process for the requested identifier.
func (r *Resolver) Resolve(requested string) (Action, error) {
	return r.ResolveWithOverride(requested, "")
}

// ResolveWithOverride is Resolve with an optional launch-command override:
// when no window matches and launchCmd is non-empty, it is used instead of
// the desktop entry's exec command.
func (r *Resolver) ResolveWithOverride(requested string, launchCmd string) (Action, error) {
	id := r.norm.Normalize(requested)
	r.log.Debug("Resolving identifier", "requested", requested, "normalized", string(id))

	if matches := r.reg.FindByNormalizedID(id); len(matches) > 0 {
		r.log.Debug("Resolved to existing window",
			"handle", string(matches[0].Handle),
			"app_id", matches[0].AppID,
			"candidates", len(matches))
		return Action{Kind: ActivateAction, Target: matches[0]}, nil
	}

	if launchCmd != "" {
		return Action{Kind: LaunchAction, Command: strings.Fields(launchCmd)}, nil
	}

	entry, ok := r.db.FindByID(id)
	if !ok {
		r.log.Debug("No window or desktop entry matched", "normalized", string(id))
		return Action{}, fmt.Errorf("%q: %w", requested, ErrNotFound)
	}

	r.log.Debug("Resolved to desktop entry", "entry_id", entry.ID, "exec", entry.Exec)
	return Action{Kind: LaunchAction, Command: entry.Command(), Entry: entry}, nil
}
