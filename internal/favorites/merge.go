package favorites

import (
	"wayfocus/internal/appid"
	"wayfocus/internal/wm"
)

// MaxHotkeySlots is the number of presentation slots exposed to the
// hotkey binder: digits 1-9 plus 0.
const MaxHotkeySlots = 10

// Entry is one pinned app as reported by the external favorites source.
// Replaced wholesale on every source update.
type Entry struct {
	ID    appid.NormalizedID
	RawID string // as spelled by the favorites source, used for resolving
	Name  string
	Icon  string
}

// RunningGroup is the set of live toplevels sharing one normalized id,
// treated as a single app for presentation and hotkeys. Derived, never
// stored.
type RunningGroup struct {
	ID      appid.NormalizedID
	Windows []wm.Toplevel
}

// Slot is one position in the merged favorites+running list. A slot holds
// a favorite, a running group, or both.
type Slot struct {
	ID       appid.NormalizedID
	Favorite *Entry
	Running  *RunningGroup
}

// DisplayID returns the identifier to hand to the resolver when this
// slot's hotkey fires.
func (s Slot) DisplayID() string {
	if s.Favorite != nil {
		return s.Favorite.RawID
	}
	if s.Running != nil && len(s.Running.Windows) > 0 {
		return s.Running.Windows[0].AppID
	}
	return string(s.ID)
}

// Merge combines the favorites sequence with the running groups into the
// ordered presentation list: favorites first in favorites order, then
// remaining running apps in first-seen order. Pure; no id appears in more
// than one slot.
func Merge(favs []Entry, running []RunningGroup) []Slot {
	byID := make(map[appid.NormalizedID]*RunningGroup, len(running))
	for i := range running {
		byID[running[i].ID] = &running[i]
	}

	slots := make([]Slot, 0, len(favs)+len(running))
	seen := make(map[appid.NormalizedID]bool, len(favs))

	for i := range favs {
		fav := favs[i]
		if fav.ID == "" || seen[fav.ID] {
			continue
		}
		seen[fav.ID] = true
		slots = append(slots, Slot{
			ID:       fav.ID,
			Favorite: &fav,
			Running:  byID[fav.ID],
		})
	}

	for i := range running {
		group := running[i]
		if seen[group.ID] {
			continue
		}
		seen[group.ID] = true
		slots = append(slots, Slot{ID: group.ID, Running: &group})
	}

	return slots
}

// BindableChanged reports whether the first MaxHotkeySlots slot identities
// differ between two merged lists. Window-count changes inside a group do
// not count; hotkey identity is slot position plus normalized id.
func BindableChanged(prev, next []Slot) bool {
	for i := 0; i < MaxHotkeySlots; i++ {
		var prevID, nextID appid.NormalizedID
		if i < len(prev) {
			prevID = prev[i].ID
		}
		if i < len(next) {
			nextID = next[i].ID
		}
		if prevID != nextID {
			return true
		}
	}
	return false
}
