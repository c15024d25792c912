package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wayfocus/pkg/config"
	"wayfocus/pkg/global"
	"wayfocus/pkg/logger"
)

func initTestGlobals(t *testing.T) {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLevel(zerolog.Disabled))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	global.InitGlobals(config.New(log), log)
}

// A wedged daemon (socket accepts, never replies) must fail the round
// trip at the context deadline instead of hanging the one-shot caller.
func TestSendCommand_SilentDaemonHitsDeadline(t *testing.T) {
	initTestGlobals(t)

	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	ln, err := net.Listen("unix", filepath.Join(dir, "wayfocus.sock"))
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
		buf := make([]byte, 256)
		conn.Read(buf)
		<-hold
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = SendCommand(ctx, Request{Command: "status"})
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected deadline error from silent daemon, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("round trip did not respect the deadline: %v", elapsed)
	}
}
