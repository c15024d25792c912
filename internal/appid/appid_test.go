package appid

import "testing"

func TestNormalize_LowercasesAndStripsSuffixes(t *testing.T) {
	n := NewNormalizer(nil)

	cases := []struct {
		raw  string
		want NormalizedID
	}{
		{"Alacritty", "alacritty"},
		{"kitty.desktop", "kitty"},
		{".firefox-wrapped", "firefox"},
		{"  foot  ", "foot"},
		{"", ""},
		{"steam_app_12345", "steam_app_12345"},
	}

	for _, tc := range cases {
		if got := n.Normalize(tc.raw); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalize_EquivalenceTable(t *testing.T) {
	n := NewNormalizer(nil)

	if got := n.Normalize("org.mozilla.firefox"); got != "firefox" {
		t.Fatalf("reverse-DNS form normalized to %q, want firefox", got)
	}
	if n.Normalize("org.mozilla.firefox") != n.Normalize("firefox") {
		t.Fatalf("equivalent forms must normalize identically")
	}
}

func TestNormalize_UserEquivalencesExtendAndOverride(t *testing.T) {
	n := NewNormalizer(map[string]string{
		"org.example.App":     "example-app",
		"Example-App.desktop": "example-app",
	})

	if got := n.Normalize("org.example.app"); got != "example-app" {
		t.Fatalf("seeded pair normalized to %q, want example-app", got)
	}
	if n.Normalize("org.example.App") != n.Normalize("example-app") {
		t.Fatalf("seeded equivalence pair must normalize identically")
	}
}

func TestNormalize_UserEquivalenceChainsCollapse(t *testing.T) {
	// A user pair keyed on a built-in canonical form must not leave two
	// spellings of the same app with different normalized ids.
	n := NewNormalizer(map[string]string{"google-chrome": "chrome"})

	got := n.Normalize("google-chrome-stable")
	if got != "chrome" {
		t.Fatalf("chained equivalence normalized to %q, want chrome", got)
	}
	if n.Normalize(string(got)) != got {
		t.Fatalf("Normalize not idempotent across chained equivalences")
	}
	if n.Normalize("google-chrome") != got {
		t.Fatalf("intermediate spelling diverged from chain endpoint")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer(map[string]string{"org.example.App": "example-app"})

	inputs := []string{
		"org.mozilla.firefox",
		"Alacritty",
		"kitty.desktop",
		"org.example.App",
		"Unknown.Thing",
		"",
	}
	for _, raw := range inputs {
		once := n.Normalize(raw)
		twice := n.Normalize(string(once))
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}
