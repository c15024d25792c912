package wm

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wayfocus/pkg/logger"
)

func TestParseEventLine(t *testing.T) {
	cases := []struct {
		line string
		want Event
		ok   bool
	}{
		{
			line: "openwindow>>5934d7e2bd10,3,firefox,Mozilla Firefox",
			want: Event{
				Kind:   Added,
				Handle: "0x5934d7e2bd10",
				Toplevel: Toplevel{
					Handle:      "0x5934d7e2bd10",
					AppID:       "firefox",
					Title:       "Mozilla Firefox",
					CanActivate: true,
				},
			},
			ok: true,
		},
		{
			line: "openwindow>>abc,1,foot,a, title, with, commas",
			want: Event{
				Kind:   Added,
				Handle: "0xabc",
				Toplevel: Toplevel{
					Handle:      "0xabc",
					AppID:       "foot",
					Title:       "a, title, with, commas",
					CanActivate: true,
				},
			},
			ok: true,
		},
		{
			line: "closewindow>>5934d7e2bd10",
			want: Event{Kind: Removed, Handle: "0x5934d7e2bd10"},
			ok:   true,
		},
		{
			line: "windowtitlev2>>abc,New Title",
			want: Event{Kind: TitleChanged, Handle: "0xabc", Toplevel: Toplevel{Title: "New Title"}},
			ok:   true,
		},
		{
			line: "activewindowv2>>abc",
			want: Event{Kind: Focused, Handle: "0xabc"},
			ok:   true,
		},
		{line: "workspace>>3", ok: false},
		{line: "not an event line", ok: false},
		{line: "activewindowv2>>", ok: false},
	}

	for _, tc := range cases {
		got, ok := parseEventLine(tc.line)
		if ok != tc.ok {
			t.Fatalf("parseEventLine(%q) ok = %v, want %v", tc.line, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("parseEventLine(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

// A compositor that accepts the connection but never replies must fail
// the request with a deadline error, not hang or surface a generic one.
func TestSnapshot_SilentCompositorHitsDeadline(t *testing.T) {
	dir := t.TempDir()
	sockDir := filepath.Join(dir, "hypr", "test-sig")
	if err := os.MkdirAll(sockDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "test-sig")

	ln, err := net.Listen("unix", filepath.Join(sockDir, ".socket.sock"))
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	hold := make(chan struct{})
	t.Cleanup(func() { close(hold) })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		conn.Read(buf)
		<-hold
	}()

	log, err := logger.NewLogger(logger.WithLevel(zerolog.Disabled))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h, err := NewHyprland(log)
	if err != nil {
		t.Fatalf("NewHyprland: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if _, err := h.Snapshot(ctx); !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected deadline error from silent compositor, got %v", err)
	}
}
