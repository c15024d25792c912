package appid

import (
	"strings"
)

// NormalizedID is the canonical form of an app identifier. Two windows or
// desktop entries with the same NormalizedID are treated as the same app.
type NormalizedID string

func (id NormalizedID) String() string { return string(id) }

// wrapperSuffixes are launcher/wrapper artifacts appended to binary names
// by packaging tools. Stripped before equivalence lookup.
var wrapperSuffixes = []string{
	".desktop",
	"-wrapped",
	"-bin",
}

// defaultEquivalences collapses reverse-DNS ids and bare binary names that
// are known to belong to the same app. Keys are pre-normalized (lower-case,
// suffixes stripped); values are the canonical form. Extend via the
// equivalences section of the config file, not by editing this table.
var defaultEquivalences = map[string]string{
	"org.mozilla.firefox":         "firefox",
	"org.mozilla.thunderbird":     "thunderbird",
	"org.gnome.nautilus":          "nautilus",
	"org.kde.dolphin":             "dolphin",
	"org.kde.konsole":             "konsole",
	"org.telegram.desktop":        "telegram-desktop",
	"com.spotify.client":          "spotify",
	"com.visualstudio.code":       "code",
	"com.mitchellh.ghostty":       "ghostty",
	"org.wezfurlong.wezterm":      "wezterm",
	"com.obsproject.studio":       "obs",
	"org.signal.signal":           "signal",
	"signal desktop":              "signal",
	"org.chromium.chromium":       "chromium",
	"google-chrome-stable":        "google-chrome",
	"org.libreoffice.startcenter": "libreoffice-startcenter",
}

// Normalizer canonicalizes raw app identifiers. It is safe for concurrent
// use; the equivalence table is fixed after construction.
type Normalizer struct {
	equiv map[string]NormalizedID
}

// NewNormalizer builds a normalizer from the built-in equivalence table
// merged with user-supplied pairs. User pairs win on conflict. Both sides
// of a user pair go through base normalization so the table stays
// consistent regardless of how the config spells them. Every stored value
// is chased through the merged table to a fixed point, so a user pair
// keyed on a built-in canonical form cannot break Normalize idempotency.
func NewNormalizer(extra map[string]string) *Normalizer {
	merged := make(map[string]string, len(defaultEquivalences)+len(extra))
	for raw, canonical := range defaultEquivalences {
		merged[baseNormalize(raw)] = baseNormalize(canonical)
	}
	for raw, canonical := range extra {
		merged[baseNormalize(raw)] = baseNormalize(canonical)
	}

	equiv := make(map[string]NormalizedID, len(merged))
	for raw := range merged {
		equiv[raw] = NormalizedID(resolveCanonical(merged, raw))
	}
	return &Normalizer{equiv: equiv}
}

// resolveCanonical follows equivalence chains until the value maps to
// nothing further. A cycle stops at the first repeated id, which leaves
// each key in the cycle mapped to itself.
func resolveCanonical(table map[string]string, key string) string {
	id := table[key]
	seen := map[string]bool{key: true}
	for {
		next, ok := table[id]
		if !ok || next == id || seen[id] {
			return id
		}
		seen[id] = true
		id = next
	}
}

// Normalize canonicalizes a raw app_id or desktop-entry id. Total and pure:
// unrecognized forms pass through lower-cased, empty input stays empty.
func (n *Normalizer) Normalize(raw string) NormalizedID {
	id := baseNormalize(raw)
	if canonical, ok := n.equiv[id]; ok {
		return canonical
	}
	return NormalizedID(id)
}

// baseNormalize applies the table-independent rules: lower-case, trim
// whitespace, strip wrapper suffixes and a NixOS-style leading dot.
func baseNormalize(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	for _, suffix := range wrapperSuffixes {
		id = strings.TrimSuffix(id, suffix)
	}
	id = strings.TrimPrefix(id, ".")
	return id
}
