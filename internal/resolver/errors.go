package resolver

import "errors"

var (
	// ErrNotFound means neither a live window nor a desktop entry
	// matches the requested identifier.
	ErrNotFound = errors.New("no window or desktop entry matches")

	// ErrStaleHandle means the resolved window vanished between resolve
	// and execute. Callers are expected to re-resolve and retry once.
	ErrStaleHandle = errors.New("window closed before activation")
)
