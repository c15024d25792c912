package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"wayfocus/internal/appid"
	"wayfocus/internal/desktop"
	"wayfocus/internal/registry"
	"wayfocus/internal/wm"
	"wayfocus/pkg/logger"
)

type syncFixture struct {
	norm   *appid.Normalizer
	reg    *registry.Registry
	source *Source
	sync   *Synchronizer
	path   string
}

func newSyncFixture(t *testing.T, favoritesJSON string) *syncFixture {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLevel(zerolog.Disabled))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "favorites.json")
	if favoritesJSON != "" {
		if err := os.WriteFile(path, []byte(favoritesJSON), 0644); err != nil {
			t.Fatalf("write favorites: %v", err)
		}
	}

	norm := appid.NewNormalizer(nil)
	reg := registry.New(norm, log)
	db := desktop.NewDatabaseWithDirs([]string{t.TempDir()}, norm, log)
	source := NewSource(path, log)
	source.Reload()

	return &syncFixture{
		norm:   norm,
		reg:    reg,
		source: source,
		sync:   NewSynchronizer(source, reg, db, norm, nil, log),
		path:   path,
	}
}

func (f *syncFixture) addWindow(h wm.Handle, app string) {
	f.reg.Apply(wm.Event{
		Kind:   wm.Added,
		Handle: h,
		Toplevel: wm.Toplevel{
			Handle: h, AppID: app, CanActivate: true,
		},
	})
}

func TestRecompute_MergedOrderAndPlaceholders(t *testing.T) {
	f := newSyncFixture(t, `["org.mozilla.firefox", "foot"]`)
	f.addWindow("0x1", "foot")
	f.addWindow("0x2", "kitty")

	f.sync.Recompute()

	slots := f.sync.Current()
	want := []string{"firefox", "foot", "kitty"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(slots), len(want))
	}
	for i, id := range want {
		if string(slots[i].ID) != id {
			t.Fatalf("slot %d = %q, want %q", i+1, slots[i].ID, id)
		}
	}

	// No desktop entries exist in this fixture, so favorites fall back
	// to their raw ids as display names.
	if slots[0].Favorite == nil || slots[0].Favorite.Name != "org.mozilla.firefox" {
		t.Fatalf("placeholder favorite missing: %+v", slots[0].Favorite)
	}
}

func TestRecompute_PublishesBindableChangeOnlyOnIdentityMoves(t *testing.T) {
	f := newSyncFixture(t, `["foot"]`)
	f.addWindow("0x1", "foot")
	f.addWindow("0x2", "foot")

	updates := f.sync.Subscribe()
	f.sync.Recompute()

	first := <-updates
	if !first.BindableChanged {
		t.Fatalf("initial recompute should report bindable change")
	}

	// One of foot's two windows closes; slot identity is unchanged.
	f.reg.Apply(wm.Event{Kind: wm.Removed, Handle: "0x2"})
	f.sync.Recompute()

	second := <-updates
	if second.BindableChanged {
		t.Fatalf("window-count change must not rebind")
	}
	if len(second.Slots) != 1 || second.Slots[0].Running == nil || len(second.Slots[0].Running.Windows) != 1 {
		t.Fatalf("presentation refresh missing window-count update: %+v", second.Slots)
	}
}

func TestSource_RetainsSnapshotWhenUnreachable(t *testing.T) {
	f := newSyncFixture(t, `["firefox", "foot"]`)

	ids, degraded := f.source.Current()
	if degraded || len(ids) != 2 {
		t.Fatalf("unexpected initial state: ids=%v degraded=%v", ids, degraded)
	}

	if err := os.Remove(f.path); err != nil {
		t.Fatalf("remove favorites: %v", err)
	}
	if err := f.source.Reload(); err == nil {
		t.Fatalf("expected reload error for missing file")
	}

	ids, degraded = f.source.Current()
	if !degraded {
		t.Fatalf("source should be degraded after losing its file")
	}
	if len(ids) != 2 || ids[0] != "firefox" {
		t.Fatalf("stale snapshot not retained: %v", ids)
	}
}

func TestRecompute_IgnoredAppIDsAreExcluded(t *testing.T) {
	log, _ := logger.NewLogger(logger.WithLevel(zerolog.Disabled))
	f := newSyncFixture(t, `["foot"]`)
	f.sync = NewSynchronizer(f.source, f.reg, desktop.NewDatabaseWithDirs([]string{t.TempDir()}, f.norm, log), f.norm, []string{"org.pulseaudio.pavucontrol"}, log)

	f.addWindow("0x1", "org.pulseaudio.pavucontrol")
	f.sync.Recompute()

	for _, slot := range f.sync.Current() {
		if slot.ID == f.norm.Normalize("org.pulseaudio.pavucontrol") {
			t.Fatalf("ignored app id surfaced in slots")
		}
	}
}

func TestRecompute_EmptyFavoritesFileStillListsRunning(t *testing.T) {
	f := newSyncFixture(t, `[]`)
	f.addWindow("0x1", "kitty")

	f.sync.Recompute()

	slots := f.sync.Current()
	if len(slots) != 1 || slots[0].ID != "kitty" {
		t.Fatalf("running-only merge failed: %+v", slots)
	}
}
