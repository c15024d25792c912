// Package x11 registers global shortcuts through the X11 keyboard grab,
// which reaches Wayland sessions via Xwayland.
package x11

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"

	"wayfocus/internal/hotkeys"
	"wayfocus/pkg/logger"
)

// slotKeys maps slot index to its digit key: slots 1-9 then 0.
var slotKeys = [hotkeys.MaxSlots]hotkey.Key{
	hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4, hotkey.Key5,
	hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9, hotkey.Key0,
}

// modifierFor maps the config modifier name onto the X11 modifier mask.
// Super is Mod4, Alt is Mod1.
func modifierFor(name string) ([]hotkey.Modifier, error) {
	switch name {
	case "super", "":
		return []hotkey.Modifier{hotkey.Mod4}, nil
	case "alt":
		return []hotkey.Modifier{hotkey.Mod1}, nil
	case "ctrl":
		return []hotkey.Modifier{hotkey.ModCtrl}, nil
	default:
		return nil, fmt.Errorf("unsupported hotkey modifier %q", name)
	}
}

type activeKey struct {
	hk   *hotkey.Hotkey
	stop chan struct{}
}

// Registrar registers global shortcuts through golang.design/x/hotkey.
type Registrar struct {
	log  *logger.Logger
	mods []hotkey.Modifier

	mu     sync.Mutex
	active map[int]*activeKey
}

var _ hotkeys.Registrar = (*Registrar)(nil)

func New(modifier string, log *logger.Logger) (*Registrar, error) {
	mods, err := modifierFor(modifier)
	if err != nil {
		return nil, err
	}
	return &Registrar{
		log:    log,
		mods:   mods,
		active: make(map[int]*activeKey),
	}, nil
}

func (r *Registrar) Register(slot int, onTrigger func()) error {
	if slot < 0 || slot >= hotkeys.MaxSlots {
		return fmt.Errorf("slot %d out of range", slot)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.active[slot]; exists {
		return fmt.Errorf("slot %d already registered", slot)
	}

	hk := hotkey.New(r.mods, slotKeys[slot])
	if err := hk.Register(); err != nil {
		return fmt.Errorf("%w: slot %d: %v", hotkeys.ErrBindingRejected, slot, err)
	}

	key := &activeKey{hk: hk, stop: make(chan struct{})}
	r.active[slot] = key

	go func() {
		for {
			select {
			case <-key.stop:
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				onTrigger()
			}
		}
	}()

	r.log.Debug("Hotkey registered", "slot", slot, "digit", hotkeys.SlotDigit(slot))
	return nil
}

func (r *Registrar) Unregister(slot int) error {
	r.mu.Lock()
	key, ok := r.active[slot]
	if ok {
		delete(r.active, slot)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}

	close(key.stop)
	if err := key.hk.Unregister(); err != nil {
		return fmt.Errorf("failed to unregister slot %d: %w", slot, err)
	}
	r.log.Debug("Hotkey unregistered", "slot", slot, "digit", hotkeys.SlotDigit(slot))
	return nil
}
