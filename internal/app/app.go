package app

import (
	"context"
	"sync/atomic"
	"time"

	"wayfocus/internal/appid"
	"wayfocus/internal/desktop"
	"wayfocus/internal/favorites"
	"wayfocus/internal/hotkeys"
	"wayfocus/internal/hotkeys/x11"
	"wayfocus/internal/ipc"
	"wayfocus/internal/registry"
	"wayfocus/internal/resolver"
	"wayfocus/internal/wm"
	"wayfocus/pkg/config"
	"wayfocus/pkg/global"
	"wayfocus/pkg/logger"
	"wayfocus/pkg/notify"
)

const (
	triggerTimeout   = 5 * time.Second
	reconnectBackoff = 2 * time.Second
)

// Applet is the long-lived daemon: it keeps the toplevel registry, the
// favorites synchronizer and the hotkey binder alive for the process
// lifetime and serves the status socket for the panel UI.
type Applet struct {
	config   *config.Config
	log      *logger.Logger
	notifier *notify.NotifyService

	client   wm.Client
	norm     *appid.Normalizer
	registry *registry.Registry
	desktop  *desktop.Database
	resolver *resolver.Resolver
	executor *resolver.Executor
	source   *favorites.Source
	sync     *favorites.Synchronizer
	binder   *hotkeys.Binder

	compositorLost atomic.Bool
}

// NewApplet wires the full pipeline: compositor events feed the registry,
// the registry and favorites source feed the synchronizer, the
// synchronizer feeds the binder.
func NewApplet() (*Applet, error) {
	cfg, log, notifier := global.GetAll()

	client, err := wm.NewClient(log)
	if err != nil {
		return nil, err
	}

	norm := appid.NewNormalizer(cfg.GetEquivalences())
	reg := registry.New(norm, log)
	db := desktop.NewDatabase(norm, log)
	if err := db.Rescan(); err != nil {
		log.Warn("Initial desktop entry scan failed", "error", err.Error())
	}

	source := favorites.NewSource(cfg.GetFavoritesPath(), log)

	a := &Applet{
		config:   cfg,
		log:      log,
		notifier: notifier,
		client:   client,
		norm:     norm,
		registry: reg,
		desktop:  db,
		resolver: resolver.New(reg, db, norm, log),
		executor: resolver.NewExecutor(client, reg, log),
		source:   source,
		sync:     favorites.NewSynchronizer(source, reg, db, norm, cfg.GetIgnoredAppIDs(), log),
	}

	registrar, err := x11.New(cfg.GetModifier(), log)
	if err != nil {
		return nil, err
	}
	a.binder = hotkeys.NewBinder(registrar, a.handleTrigger, log)

	return a, nil
}

// Run blocks until the context is cancelled.
func (a *Applet) Run(ctx context.Context) error {
	a.log.Info("Starting applet",
		"compositor", a.client.Name(),
		"favorites", a.config.GetFavoritesPath(),
		"modifier", a.config.GetModifier())

	if err := a.source.Reload(); err != nil {
		a.log.Warn("Favorites unavailable at startup, continuing degraded",
			"error", err.Error())
	}

	// Binder subscription must exist before the synchronizer's first
	// recompute so the initial slot list gets bound.
	updates := a.sync.Subscribe()
	go a.bindLoop(ctx, updates)

	go a.eventLoop(ctx)
	go a.resyncLoop(ctx)

	go func() {
		if err := a.sync.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("Synchronizer stopped", err)
		}
	}()

	go func() {
		if err := ipc.StartSocketServer(a); err != nil {
			a.log.Error("IPC server stopped", err)
		}
	}()

	<-ctx.Done()
	a.binder.Close()
	a.log.Info("Applet stopped")
	return nil
}

// eventLoop consumes the compositor lifecycle stream and feeds the
// registry, reconnecting with backoff after stream loss. A loss is
// surfaced, not hidden: the registry resets so stale handles cannot be
// activated, and the degraded state reaches the status socket.
func (a *Applet) eventLoop(ctx context.Context) {
	for ctx.Err() == nil {
		events, err := a.client.Events(ctx)
		if err != nil {
			a.markCompositorLost(err.Error())
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectBackoff):
			}
			continue
		}

		if tops, err := a.client.Snapshot(ctx); err == nil {
			a.registry.Resync(tops)
			a.markCompositorRecovered()
		}

		for ev := range events {
			if ev.Kind == wm.Reset {
				a.registry.Apply(ev)
				a.markCompositorLost("event stream reset")
				break
			}
			a.registry.Apply(ev)
		}
	}
}

// resyncLoop periodically reconciles the registry against a full
// snapshot, catching anything the event stream missed.
func (a *Applet) resyncLoop(ctx context.Context) {
	ticker := time.NewTicker(a.config.GetResyncInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapCtx, cancel := context.WithTimeout(ctx, triggerTimeout)
			tops, err := a.client.Snapshot(snapCtx)
			cancel()
			if err != nil {
				a.log.Warn("Periodic resync failed", "error", err.Error())
				continue
			}
			a.registry.Resync(tops)
			a.markCompositorRecovered()
		}
	}
}

// bindLoop converges the hotkey bindings whenever the first ten slot
// identities change.
func (a *Applet) bindLoop(ctx context.Context, updates <-chan favorites.Update) {
	wasDegraded := false
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.BindableChanged {
				a.binder.Apply(update.Slots)
			}
			if update.Degraded != wasDegraded {
				wasDegraded = update.Degraded
				if update.Degraded {
					a.notifier.Show("Favorites source unavailable, using last known list", notify.Error)
				} else {
					a.log.Info("Favorites source recovered")
				}
			}
		}
	}
}

// handleTrigger runs a hotkey press: resolve the slot's app and execute
// the resulting action. Failures notify rather than crash; a hotkey press
// has no terminal to print to.
func (a *Applet) handleTrigger(slot int, displayID string) {
	a.log.Debug("Hotkey triggered",
		"digit", hotkeys.SlotDigit(slot), "app_id", displayID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
		defer cancel()

		if err := resolver.FocusOrLaunch(ctx, a.resolver, a.executor, displayID, ""); err != nil {
			a.log.Error("Hotkey action failed", err, "app_id", displayID)
			a.notifier.Show("Failed to focus "+displayID, notify.Error)
		}
	}()
}

func (a *Applet) markCompositorLost(reason string) {
	if a.compositorLost.CompareAndSwap(false, true) {
		a.log.Error("Compositor connection lost", nil, "reason", reason)
		a.notifier.Show("Compositor connection lost", notify.Error)
	}
}

func (a *Applet) markCompositorRecovered() {
	if a.compositorLost.CompareAndSwap(true, false) {
		a.log.Info("Compositor connection recovered")
	}
}

// Slots implements the ipc.Applet status surface.
func (a *Applet) Slots() []favorites.Slot {
	return a.sync.Current()
}

// Degraded reports whether either input source is serving stale data.
func (a *Applet) Degraded() bool {
	return a.sync.Degraded() || a.compositorLost.Load()
}

// BindingErrors reports per-slot hotkey registration failures.
func (a *Applet) BindingErrors() map[int]string {
	return a.binder.Errors()
}

// Activate routes an IPC activate request through the daemon's live
// registry.
func (a *Applet) Activate(appID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
	defer cancel()
	return resolver.FocusOrLaunch(ctx, a.resolver, a.executor, appID, "")
}
