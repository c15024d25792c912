package desktop

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"wayfocus/internal/appid"
	"wayfocus/pkg/logger"
)

// Entry is one parsed desktop entry, reduced to the fields matching and
// launching need.
type Entry struct {
	ID        string // desktop file id (filename without .desktop)
	Name      string
	Exec      string
	Icon      string
	NoDisplay bool
}

// Command returns the launch argv with desktop-entry field codes (%u, %F
// and friends) stripped.
func (e Entry) Command() []string {
	fields := strings.Fields(e.Exec)
	argv := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) == 2 && f[0] == '%' {
			continue
		}
		argv = append(argv, f)
	}
	return argv
}

// Database indexes desktop entries by normalized id. Lookups hit an
// in-memory index; a miss triggers one rescan of the data dirs before
// giving up, since new apps appear on disk without notice.
type Database struct {
	log  *logger.Logger
	norm *appid.Normalizer
	dirs []string

	mu     sync.RWMutex
	byNorm map[appid.NormalizedID]Entry
}

// NewDatabase creates a database over the standard XDG application dirs.
func NewDatabase(norm *appid.Normalizer, log *logger.Logger) *Database {
	return NewDatabaseWithDirs(applicationDirs(), norm, log)
}

// NewDatabaseWithDirs creates a database over explicit directories.
func NewDatabaseWithDirs(dirs []string, norm *appid.Normalizer, log *logger.Logger) *Database {
	return &Database{
		log:    log,
		norm:   norm,
		dirs:   dirs,
		byNorm: make(map[appid.NormalizedID]Entry),
	}
}

// FindByID returns the desktop entry whose id normalizes to the given id.
func (d *Database) FindByID(id appid.NormalizedID) (Entry, bool) {
	d.mu.RLock()
	entry, ok := d.byNorm[id]
	d.mu.RUnlock()
	if ok {
		return entry, true
	}

	// Miss: the entry may have been installed since the last scan.
	if err := d.Rescan(); err != nil {
		d.log.Warn("Desktop entry rescan failed", "error", err.Error())
		return Entry{}, false
	}

	d.mu.RLock()
	entry, ok = d.byNorm[id]
	d.mu.RUnlock()
	return entry, ok
}

// Rescan rebuilds the index from the data dirs.
func (d *Database) Rescan() error {
	index := make(map[appid.NormalizedID]Entry)
	count := 0

	for _, dir := range d.dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(path, ".desktop") {
				return nil
			}
			entry, ok := parseDesktopFile(path)
			if !ok {
				return nil
			}
			count++
			key := d.norm.Normalize(entry.ID)
			// Earlier dirs win, matching XDG precedence.
			if _, exists := index[key]; !exists {
				index[key] = entry
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	d.mu.Lock()
	d.byNorm = index
	d.mu.Unlock()

	d.log.Debug("Desktop entries scanned", "entries", count, "dirs", len(d.dirs))
	return nil
}

// parseDesktopFile extracts the main-group keys from one .desktop file.
func parseDesktopFile(path string) (Entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}

	entry := Entry{
		ID: strings.TrimSuffix(filepath.Base(path), ".desktop"),
	}

	inDesktopEntry := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}

		if line[0] == '[' && line[len(line)-1] == ']' {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}
		if !inDesktopEntry {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			if entry.Name == "" {
				entry.Name = value
			}
		case "Exec":
			if entry.Exec == "" {
				entry.Exec = value
			}
		case "Icon":
			if entry.Icon == "" {
				entry.Icon = value
			}
		case "NoDisplay":
			entry.NoDisplay = value == "true"
		}
	}

	if entry.Exec == "" {
		return Entry{}, false
	}
	return entry, true
}

// applicationDirs returns the XDG application directories in precedence
// order (data home first, then data dirs).
func applicationDirs() []string {
	var dirs []string

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, dir := range strings.Split(dataDirs, ":") {
		if dir == "" {
			continue
		}
		dirs = append(dirs, filepath.Join(dir, "applications"))
	}
	return dirs
}
