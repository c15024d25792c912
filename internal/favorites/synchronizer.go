package favorites

import (
	"context"
	"sync"

	"wayfocus/internal/appid"
	"wayfocus/internal/desktop"
	"wayfocus/internal/registry"
	"wayfocus/pkg/logger"
)

// Update is published after each recomputation of the merged list.
// BindableChanged is true only when the first ten slot identities moved;
// pure presentation refreshes (window counts, titles) keep it false so
// the hotkey binder never rebinds needlessly.
type Update struct {
	Slots           []Slot
	BindableChanged bool
	Degraded        bool
}

// Synchronizer keeps the merged favorites+running list current against
// both of its inputs and notifies subscribers on change.
type Synchronizer struct {
	log     *logger.Logger
	norm    *appid.Normalizer
	reg     *registry.Registry
	db      *desktop.Database
	source  *Source
	ignored map[appid.NormalizedID]bool

	mu    sync.RWMutex
	slots []Slot
	subs  []chan Update
}

func NewSynchronizer(
	source *Source,
	reg *registry.Registry,
	db *desktop.Database,
	norm *appid.Normalizer,
	ignoredAppIDs []string,
	log *logger.Logger,
) *Synchronizer {
	ignored := make(map[appid.NormalizedID]bool, len(ignoredAppIDs))
	for _, raw := range ignoredAppIDs {
		ignored[norm.Normalize(raw)] = true
	}
	return &Synchronizer{
		log:     log,
		norm:    norm,
		reg:     reg,
		db:      db,
		source:  source,
		ignored: ignored,
	}
}

// Current returns the latest merged slot list.
func (s *Synchronizer) Current() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]Slot, len(s.slots))
	copy(slots, s.slots)
	return slots
}

// Degraded reports whether the favorites source is serving stale data.
func (s *Synchronizer) Degraded() bool {
	_, degraded := s.source.Current()
	return degraded
}

// Subscribe returns a channel of updates. Buffered; a slow consumer sees
// the newest update it can keep up with.
func (s *Synchronizer) Subscribe() <-chan Update {
	ch := make(chan Update, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Run drives the synchronizer until the context is cancelled: an initial
// recompute, then one recompute per settled input change. Rapid changes
// coalesce into one recomputation but never reorder.
func (s *Synchronizer) Run(ctx context.Context) error {
	favChanges, err := s.source.Watch(ctx)
	if err != nil {
		return err
	}
	regChanges := s.reg.Subscribe()

	s.Recompute()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-favChanges:
			if !ok {
				favChanges = nil
				continue
			}
			s.Recompute()
		case _, ok := <-regChanges:
			if !ok {
				regChanges = nil
				continue
			}
			// Drain whatever queued behind this change; one
			// recompute covers them all.
			for len(regChanges) > 0 {
				<-regChanges
			}
			s.Recompute()
		}
	}
}

// Recompute rebuilds the merged list from fresh snapshots of both inputs
// and publishes an update when anything observable changed.
func (s *Synchronizer) Recompute() {
	rawFavs, degraded := s.source.Current()
	favs := s.buildFavorites(rawFavs)
	running := s.buildRunning()

	next := Merge(favs, running)

	s.mu.Lock()
	prev := s.slots
	s.slots = next
	subs := make([]chan Update, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	update := Update{
		Slots:           next,
		BindableChanged: BindableChanged(prev, next),
		Degraded:        degraded,
	}
	if update.BindableChanged {
		s.log.Debug("Bindable slots changed", "slots", len(next))
	}

	for _, sub := range subs {
		// Replace a pending update rather than block: only the
		// newest merged list matters.
		select {
		case sub <- update:
		default:
			select {
			case <-sub:
			default:
			}
			sub <- update
		}
	}
}

// buildFavorites turns the raw favorites ids into entries with display
// metadata, deduplicated by normalized id. Apps without a desktop entry
// still get a slot with their raw id as the display name.
func (s *Synchronizer) buildFavorites(rawIDs []string) []Entry {
	entries := make([]Entry, 0, len(rawIDs))
	seen := make(map[appid.NormalizedID]bool, len(rawIDs))

	for _, raw := range rawIDs {
		if raw == "" {
			continue
		}
		id := s.norm.Normalize(raw)
		if seen[id] || s.ignored[id] {
			continue
		}
		seen[id] = true

		entry := Entry{ID: id, RawID: raw, Name: raw}
		if de, ok := s.db.FindByID(id); ok {
			entry.Name = de.Name
			entry.Icon = de.Icon
		}
		entries = append(entries, entry)
	}
	return entries
}

// buildRunning derives the running-app groups from the registry snapshot.
func (s *Synchronizer) buildRunning() []RunningGroup {
	ids := s.reg.RunningIDs()
	groups := make([]RunningGroup, 0, len(ids))
	for _, id := range ids {
		if s.ignored[id] {
			continue
		}
		groups = append(groups, RunningGroup{
			ID:      id,
			Windows: s.reg.FindByNormalizedID(id),
		})
	}
	return groups
}
