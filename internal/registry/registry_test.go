package registry

import (
	"testing"

	"github.com/rs/zerolog"

	"wayfocus/internal/appid"
	"wayfocus/internal/wm"
	"wayfocus/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLevel(zerolog.Disabled))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(appid.NewNormalizer(nil), testLogger(t))
}

func added(h wm.Handle, app, title string) wm.Event {
	return wm.Event{
		Kind:   wm.Added,
		Handle: h,
		Toplevel: wm.Toplevel{
			Handle: h, AppID: app, Title: title, CanActivate: true,
		},
	}
}

func TestApply_AddThenRemoveYieldsAbsence(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0x1", "firefox", "Mozilla Firefox"))
	r.Apply(added("0x2", "foot", "~"))
	r.Apply(wm.Event{Kind: wm.Removed, Handle: "0x1"})

	tops := r.List()
	if len(tops) != 1 || tops[0].Handle != "0x2" {
		t.Fatalf("expected only 0x2 to remain, got %+v", tops)
	}
	if _, ok := r.Get("0x1"); ok {
		t.Fatalf("removed handle still resolvable")
	}
}

func TestApply_UpdateTouchesOnlyTargetRecord(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0x1", "firefox", "one"))
	r.Apply(added("0x2", "foot", "two"))
	r.Apply(wm.Event{
		Kind:     wm.TitleChanged,
		Handle:   "0x1",
		Toplevel: wm.Toplevel{Title: "renamed"},
	})

	one, _ := r.Get("0x1")
	two, _ := r.Get("0x2")
	if one.Title != "renamed" || one.AppID != "firefox" {
		t.Fatalf("target record wrong after update: %+v", one)
	}
	if two.Title != "two" {
		t.Fatalf("untargeted record mutated: %+v", two)
	}
}

func TestApply_AppIDChangePreservesIdentity(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0x1", "", "starting up"))
	r.Apply(wm.Event{
		Kind:     wm.AppIDChanged,
		Handle:   "0x1",
		Toplevel: wm.Toplevel{AppID: "org.mozilla.firefox"},
	})

	top, ok := r.Get("0x1")
	if !ok {
		t.Fatalf("handle invalidated by app_id change")
	}
	if top.AppID != "org.mozilla.firefox" || top.Title != "starting up" {
		t.Fatalf("unexpected record after app_id change: %+v", top)
	}
}

func TestApply_ResetClearsAllRecords(t *testing.T) {
	r := testRegistry(t)
	sub := r.Subscribe()

	r.Apply(added("0x1", "firefox", ""))
	r.Apply(added("0x2", "foot", ""))
	r.Apply(wm.Event{Kind: wm.Reset})

	if tops := r.List(); len(tops) != 0 {
		t.Fatalf("expected empty registry after reset, got %+v", tops)
	}

	var last Change
	for len(sub) > 0 {
		last = <-sub
	}
	if last.Kind != ResetChange {
		t.Fatalf("expected final ResetChange notification, got %+v", last)
	}
}

func TestApply_EventsForUnknownHandlesAreIgnored(t *testing.T) {
	r := testRegistry(t)

	r.Apply(wm.Event{Kind: wm.Removed, Handle: "0x9"})
	r.Apply(wm.Event{Kind: wm.TitleChanged, Handle: "0x9", Toplevel: wm.Toplevel{Title: "x"}})
	r.Apply(wm.Event{Kind: wm.Focused, Handle: "0x9"})

	if tops := r.List(); len(tops) != 0 {
		t.Fatalf("unknown-handle events created records: %+v", tops)
	}
}

func TestFindByNormalizedID_MostRecentlyFocusedFirst(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0x1", "firefox", "a"))
	r.Apply(added("0x2", "org.mozilla.firefox", "b"))
	r.Apply(added("0x3", "foot", "c"))
	r.Apply(wm.Event{Kind: wm.Focused, Handle: "0x2"})

	matches := r.FindByNormalizedID("firefox")
	if len(matches) != 2 {
		t.Fatalf("expected 2 firefox windows, got %d", len(matches))
	}
	if matches[0].Handle != "0x2" || matches[1].Handle != "0x1" {
		t.Fatalf("wrong focus ordering: %+v", matches)
	}

	// Repeated queries with no intervening events pick the same window.
	for i := 0; i < 5; i++ {
		again := r.FindByNormalizedID("firefox")
		if again[0].Handle != "0x2" {
			t.Fatalf("non-deterministic resolution on query %d: %+v", i, again)
		}
	}
}

func TestFindByNormalizedID_TieBreakIsInsertionOrder(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0xb", "foot", "second"))
	r.Apply(added("0xa", "foot", "third"))

	matches := r.FindByNormalizedID("foot")
	if len(matches) != 2 || matches[0].Handle != "0xb" {
		t.Fatalf("expected oldest window first with no focus history, got %+v", matches)
	}
}

func TestRunningIDs_FirstSeenOrderDistinct(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0x1", "foot", ""))
	r.Apply(added("0x2", "org.mozilla.firefox", ""))
	r.Apply(added("0x3", "firefox", "")) // same app as 0x2
	r.Apply(added("0x4", "", ""))        // unidentifiable, skipped

	ids := r.RunningIDs()
	if len(ids) != 2 || ids[0] != "foot" || ids[1] != "firefox" {
		t.Fatalf("unexpected running ids: %v", ids)
	}
}

func TestResync_ConvergesToSnapshot(t *testing.T) {
	r := testRegistry(t)

	r.Apply(added("0x1", "foot", "stale"))
	r.Apply(added("0x2", "firefox", "kept"))

	r.Resync([]wm.Toplevel{
		{Handle: "0x2", AppID: "firefox", Title: "retitled", CanActivate: true},
		{Handle: "0x3", AppID: "kitty", Title: "new", CanActivate: true},
	})

	tops := r.List()
	if len(tops) != 2 {
		t.Fatalf("expected 2 toplevels after resync, got %+v", tops)
	}
	if _, ok := r.Get("0x1"); ok {
		t.Fatalf("vanished window survived resync")
	}
	kept, _ := r.Get("0x2")
	if kept.Title != "retitled" {
		t.Fatalf("resync did not pick up title change: %+v", kept)
	}
	if _, ok := r.Get("0x3"); !ok {
		t.Fatalf("resync did not add new window")
	}
}
