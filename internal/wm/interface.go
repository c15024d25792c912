package wm

import "context"

// Handle is the opaque compositor identity of one window instance. It is
// unique while the window lives and invalidated when it closes.
type Handle string

// Toplevel is one open window as reported by the compositor.
type Toplevel struct {
	Handle      Handle
	AppID       string
	Title       string
	CanActivate bool
}

// EventKind classifies a compositor lifecycle event.
type EventKind int

const (
	// Added reports a newly mapped toplevel (Toplevel populated).
	Added EventKind = iota
	// Removed reports a closed toplevel (Handle populated).
	Removed
	// TitleChanged reports a title update for an existing toplevel.
	TitleChanged
	// AppIDChanged reports an app_id update for an existing toplevel.
	AppIDChanged
	// Focused reports that a toplevel gained keyboard focus.
	Focused
	// Reset reports that the event stream was lost; all prior handles
	// are invalid.
	Reset
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TitleChanged:
		return "title_changed"
	case AppIDChanged:
		return "app_id_changed"
	case Focused:
		return "focused"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is one compositor lifecycle event.
type Event struct {
	Kind     EventKind
	Handle   Handle
	Toplevel Toplevel
}

// Client is the compositor protocol surface the rest of the process
// consumes. Implementations must deliver events in compositor-emission
// order on the returned channel and close it when the stream is lost,
// after sending a final Reset event.
type Client interface {
	// Snapshot returns all currently open toplevels.
	Snapshot(ctx context.Context) ([]Toplevel, error)
	// Events subscribes to the lifecycle event stream.
	Events(ctx context.Context) (<-chan Event, error)
	// Activate asks the compositor to focus the given toplevel.
	Activate(ctx context.Context, h Handle) error
	// Name returns the compositor name for logging/display
	Name() string
}
