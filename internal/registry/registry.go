package registry

import (
	"sort"
	"sync"

	"wayfocus/internal/appid"
	"wayfocus/internal/wm"
	"wayfocus/pkg/logger"
)

// ChangeKind classifies a registry change notification.
type ChangeKind int

const (
	Added ChangeKind = iota
	Updated
	Removed
	FocusChanged
	ResetChange
)

// Change is published to subscribers after each applied event. Consumers
// that need the full picture should re-query List; a change only says
// that something happened to the given handle.
type Change struct {
	Kind   ChangeKind
	Handle wm.Handle
}

// record is one live toplevel plus the bookkeeping the ordering rules need.
type record struct {
	top       wm.Toplevel
	insertSeq uint64
	focusSeq  uint64 // 0 = never focused
}

// Registry is the authoritative in-memory view of open toplevels. It is
// the sole writer of its records: compositor events come in through Apply
// (one goroutine), everything else reads snapshots or subscribes.
type Registry struct {
	log  *logger.Logger
	norm *appid.Normalizer

	mu       sync.RWMutex
	byHandle map[wm.Handle]*record
	seq      uint64
	focusSeq uint64
	subs     []chan Change
}

func New(norm *appid.Normalizer, log *logger.Logger) *Registry {
	return &Registry{
		log:      log,
		norm:     norm,
		byHandle: make(map[wm.Handle]*record),
	}
}

// Apply folds one compositor event into the registry and publishes the
// resulting change. Each event mutates at most one record; subscribers
// never observe a partially applied event.
func (r *Registry) Apply(ev wm.Event) {
	r.mu.Lock()

	var change Change
	switch ev.Kind {
	case wm.Added:
		r.seq++
		r.byHandle[ev.Handle] = &record{top: ev.Toplevel, insertSeq: r.seq}
		change = Change{Kind: Added, Handle: ev.Handle}

	case wm.Removed:
		if _, ok := r.byHandle[ev.Handle]; !ok {
			r.mu.Unlock()
			return
		}
		delete(r.byHandle, ev.Handle)
		change = Change{Kind: Removed, Handle: ev.Handle}

	case wm.TitleChanged:
		rec, ok := r.byHandle[ev.Handle]
		if !ok {
			r.mu.Unlock()
			return
		}
		rec.top.Title = ev.Toplevel.Title
		change = Change{Kind: Updated, Handle: ev.Handle}

	case wm.AppIDChanged:
		// Identity preserved: the record is updated in place so held
		// handles stay valid.
		rec, ok := r.byHandle[ev.Handle]
		if !ok {
			r.mu.Unlock()
			return
		}
		rec.top.AppID = ev.Toplevel.AppID
		change = Change{Kind: Updated, Handle: ev.Handle}

	case wm.Focused:
		rec, ok := r.byHandle[ev.Handle]
		if !ok {
			r.mu.Unlock()
			return
		}
		r.focusSeq++
		rec.focusSeq = r.focusSeq
		change = Change{Kind: FocusChanged, Handle: ev.Handle}

	case wm.Reset:
		// Stale handles must never be activated after a stream loss.
		r.byHandle = make(map[wm.Handle]*record)
		change = Change{Kind: ResetChange}

	default:
		r.mu.Unlock()
		return
	}

	subs := make([]chan Change, len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	r.publish(subs, change)
}

// publish delivers a change to all subscribers without blocking the
// reducer. Subscribers recompute from snapshots, so dropping a
// notification on a full channel only coalesces work.
func (r *Registry) publish(subs []chan Change, change Change) {
	for _, sub := range subs {
		select {
		case sub <- change:
		default:
			r.log.Warn("Registry subscriber lagging, coalescing change",
				"kind", change.Kind, "handle", string(change.Handle))
		}
	}
}

// Subscribe returns a channel of change notifications. The channel is
// buffered; a slow consumer sees coalesced changes, never a stalled
// reducer.
func (r *Registry) Subscribe() <-chan Change {
	ch := make(chan Change, 64)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

// List returns a snapshot of all live toplevels in insertion order.
func (r *Registry) List() []wm.Toplevel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.sortedRecords()
	tops := make([]wm.Toplevel, len(recs))
	for i, rec := range recs {
		tops[i] = rec.top
	}
	return tops
}

// Get returns the live toplevel for a handle, if any.
func (r *Registry) Get(h wm.Handle) (wm.Toplevel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byHandle[h]
	if !ok {
		return wm.Toplevel{}, false
	}
	return rec.top, true
}

// FindByNormalizedID returns all live toplevels whose app_id normalizes to
// the given id, most-recently-focused first. Never-focused windows sort
// after focused ones, oldest first, so activation stays deterministic.
func (r *Registry) FindByNormalizedID(id appid.NormalizedID) []wm.Toplevel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*record
	for _, rec := range r.byHandle {
		if r.norm.Normalize(rec.top.AppID) == id {
			matches = append(matches, rec)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].focusSeq != matches[j].focusSeq {
			return matches[i].focusSeq > matches[j].focusSeq
		}
		return matches[i].insertSeq < matches[j].insertSeq
	})

	tops := make([]wm.Toplevel, len(matches))
	for i, rec := range matches {
		tops[i] = rec.top
	}
	return tops
}

// RunningIDs returns the distinct normalized ids of live toplevels in
// first-seen order. Empty app_ids are skipped; they cannot be matched or
// presented.
func (r *Registry) RunningIDs() []appid.NormalizedID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[appid.NormalizedID]bool)
	var ids []appid.NormalizedID
	for _, rec := range r.sortedRecords() {
		if rec.top.AppID == "" {
			continue
		}
		id := r.norm.Normalize(rec.top.AppID)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Resync reconciles the registry against a full compositor snapshot,
// applying synthesized events for anything the stream missed. Used as a
// periodic safety net and to seed the registry at startup.
func (r *Registry) Resync(snapshot []wm.Toplevel) {
	r.mu.RLock()
	current := make(map[wm.Handle]wm.Toplevel, len(r.byHandle))
	for h, rec := range r.byHandle {
		current[h] = rec.top
	}
	r.mu.RUnlock()

	inSnapshot := make(map[wm.Handle]bool, len(snapshot))
	for _, top := range snapshot {
		inSnapshot[top.Handle] = true
		existing, ok := current[top.Handle]
		if !ok {
			r.Apply(wm.Event{Kind: wm.Added, Handle: top.Handle, Toplevel: top})
			continue
		}
		if existing.AppID != top.AppID {
			r.Apply(wm.Event{Kind: wm.AppIDChanged, Handle: top.Handle, Toplevel: top})
		}
		if existing.Title != top.Title {
			r.Apply(wm.Event{Kind: wm.TitleChanged, Handle: top.Handle, Toplevel: top})
		}
	}
	for h := range current {
		if !inSnapshot[h] {
			r.Apply(wm.Event{Kind: wm.Removed, Handle: h})
		}
	}
}

// sortedRecords returns records in insertion order. Callers hold r.mu.
func (r *Registry) sortedRecords() []*record {
	recs := make([]*record, 0, len(r.byHandle))
	for _, rec := range r.byHandle {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].insertSeq < recs[j].insertSeq
	})
	return recs
}
