package hotkeys

import (
	"sync"

	"wayfocus/internal/appid"
	"wayfocus/internal/favorites"
	"wayfocus/pkg/logger"
)

// MaxSlots is the number of managed hotkey combinations.
const MaxSlots = favorites.MaxHotkeySlots

// SlotDigit returns the digit bound to a slot index: slots 1-9, then 0.
func SlotDigit(slot int) int {
	return (slot + 1) % 10
}

// TriggerFunc handles a hotkey press for a bound slot. displayID is the
// representative identifier to resolve.
type TriggerFunc func(slot int, displayID string)

// target is the desired binding content for one slot. Binding identity is
// the normalized id, not any single window handle: window churn inside an
// app never rebinds its slot.
type target struct {
	id      appid.NormalizedID
	display string
}

// Binder keeps the ten modifier+digit registrations converged onto the
// first ten presentation slots. Apply is a diff, not a rebuild: only
// positions whose identity actually changed touch the shortcut facility.
type Binder struct {
	log       *logger.Logger
	registrar Registrar
	onTrigger TriggerFunc

	mu      sync.RWMutex
	current [MaxSlots]*target
	errs    map[int]string
}

func NewBinder(registrar Registrar, onTrigger TriggerFunc, log *logger.Logger) *Binder {
	return &Binder{
		log:       log,
		registrar: registrar,
		onTrigger: onTrigger,
		errs:      make(map[int]string),
	}
}

// Apply converges the registrations onto the given slot list. A
// registration failure for one slot is recorded and skipped; the other
// slots still converge.
func (b *Binder) Apply(slots []favorites.Slot) {
	for i := 0; i < MaxSlots; i++ {
		var desired *target
		if i < len(slots) {
			desired = &target{
				id:      slots[i].ID,
				display: slots[i].DisplayID(),
			}
		}
		b.applySlot(i, desired)
	}
}

func (b *Binder) applySlot(slot int, desired *target) {
	b.mu.Lock()
	current := b.current[slot]

	if current != nil && desired != nil && current.id == desired.id {
		// Same app in the same position: refresh the display id in
		// place, no unregister/register round trip.
		current.display = desired.display
		b.mu.Unlock()
		return
	}
	if current == nil && desired == nil {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	if current != nil {
		if err := b.registrar.Unregister(slot); err != nil {
			b.log.Warn("Failed to unregister hotkey",
				"slot", slot, "error", err.Error())
		}
		b.mu.Lock()
		b.current[slot] = nil
		b.mu.Unlock()
	}

	if desired == nil {
		b.mu.Lock()
		delete(b.errs, slot)
		b.mu.Unlock()
		return
	}

	err := b.registrar.Register(slot, func() { b.fire(slot) })

	b.mu.Lock()
	if err != nil {
		b.errs[slot] = err.Error()
		b.mu.Unlock()
		b.log.Error("Hotkey registration failed", err,
			"slot", slot, "digit", SlotDigit(slot), "app", string(desired.id))
		return
	}
	b.current[slot] = desired
	delete(b.errs, slot)
	b.mu.Unlock()

	b.log.Info("Hotkey bound",
		"digit", SlotDigit(slot), "app", string(desired.id))
}

// fire dispatches a hotkey press against the slot's current content, read
// at trigger time so a display refresh between press and resolve is safe.
func (b *Binder) fire(slot int) {
	b.mu.RLock()
	tgt := b.current[slot]
	b.mu.RUnlock()
	if tgt == nil {
		return
	}
	b.onTrigger(slot, tgt.display)
}

// Errors returns the per-slot registration failures for status display.
func (b *Binder) Errors() map[int]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	errs := make(map[int]string, len(b.errs))
	for slot, msg := range b.errs {
		errs[slot] = msg
	}
	return errs
}

// Close unregisters everything the binder holds.
func (b *Binder) Close() {
	b.mu.Lock()
	held := make([]int, 0, MaxSlots)
	for i := 0; i < MaxSlots; i++ {
		if b.current[i] != nil {
			held = append(held, i)
			b.current[i] = nil
		}
	}
	b.mu.Unlock()

	for _, slot := range held {
		if err := b.registrar.Unregister(slot); err != nil {
			b.log.Warn("Failed to unregister hotkey on close",
				"slot", slot, "error", err.Error())
		}
	}
}
