package hotkeys

import "errors"

// ErrBindingRejected means the shortcut facility refused one specific
// modifier+digit combination. Other slots are unaffected.
var ErrBindingRejected = errors.New("shortcut registration rejected")

// Registrar is the global shortcut facility surface: one fixed
// modifier+digit combination per slot index 0-9. The X-backed
// implementation lives in the x11 subpackage; keeping it out of this
// package keeps the binder free of any display dependency.
type Registrar interface {
	Register(slot int, onTrigger func()) error
	Unregister(slot int) error
}
