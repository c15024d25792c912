package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"wayfocus/internal/resolver"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"not found", fmt.Errorf("%q: %w", "no-such-app", resolver.ErrNotFound), exitNotFound},
		{"stale handle", fmt.Errorf("firefox: %w", resolver.ErrStaleHandle), exitStale},
		{"context deadline", fmt.Errorf("failed to list windows: %w", context.DeadlineExceeded), exitTimeout},
		// A compositor that accepts the connection but never replies
		// surfaces as a connection i/o timeout, not a context error.
		{"connection deadline", fmt.Errorf("failed to read response for %q: %w", "j/clients", os.ErrDeadlineExceeded), exitTimeout},
		{"generic", errors.New("dispatch rejected"), exitError},
	}

	for _, tc := range cases {
		if got := exitCodeFor(tc.err); got != tc.want {
			t.Fatalf("%s: exitCodeFor() = %d, want %d", tc.name, got, tc.want)
		}
	}
}
