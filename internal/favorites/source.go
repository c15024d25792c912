package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wayfocus/pkg/logger"
)

// Source reads the external favorites list: a JSON array of app
// identifiers in pin order. The file is owned by the dock service; this
// process only ever reads it. When the file is unreachable the last-known
// snapshot is retained and the source reports itself degraded.
type Source struct {
	log  *logger.Logger
	path string

	mu       sync.RWMutex
	last     []string
	degraded bool
}

func NewSource(path string, log *logger.Logger) *Source {
	return &Source{log: log, path: path}
}

// Current returns the latest favorites snapshot and whether the source is
// currently degraded (stale-but-available data).
func (s *Source) Current() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.last))
	copy(ids, s.last)
	return ids, s.degraded
}

// Reload re-reads the favorites file. A read or parse failure keeps the
// previous snapshot and flips the degraded flag instead of collapsing to
// an empty list.
func (s *Source) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.markDegraded(err)
		return fmt.Errorf("favorites source unreachable: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.markDegraded(err)
		return fmt.Errorf("favorites source unreadable: %w", err)
	}

	s.mu.Lock()
	s.last = ids
	s.degraded = false
	s.mu.Unlock()

	s.log.Debug("Favorites reloaded", "count", len(ids), "path", s.path)
	return nil
}

func (s *Source) markDegraded(err error) {
	s.mu.Lock()
	wasDegraded := s.degraded
	s.degraded = true
	s.mu.Unlock()
	if !wasDegraded {
		s.log.Warn("Favorites source degraded, retaining last snapshot",
			"path", s.path, "error", err.Error())
	}
}

// Watch reloads the favorites file on filesystem changes and emits a
// notification per reload attempt. The watch covers the parent directory
// because editors and the dock replace the file atomically. If the
// watcher cannot be created, a polling fallback is used.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	changed := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Warn("Failed to create favorites watcher, polling instead",
			"error", err.Error())
		go s.poll(ctx, changed)
		return changed, nil
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		s.log.Warn("Failed to watch favorites directory, polling instead",
			"dir", dir, "error", err.Error())
		go s.poll(ctx, changed)
		return changed, nil
	}

	go func() {
		defer watcher.Close()
		defer close(changed)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				s.Reload()
				notify(changed)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("Favorites watcher error", "error", err.Error())
			}
		}
	}()
	return changed, nil
}

// poll is the fallback when inotify is unavailable.
func (s *Source) poll(ctx context.Context, changed chan<- struct{}) {
	defer close(changed)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev, _ := s.Current()
			s.Reload()
			next, _ := s.Current()
			if !equalIDs(prev, next) {
				notify(changed)
			}
		}
	}
}

func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
