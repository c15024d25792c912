package wm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"wayfocus/pkg/logger"
)

// Hyprland speaks the Hyprland IPC protocol: one-shot requests on the
// command socket, a line-oriented lifecycle stream on the event socket.
type Hyprland struct {
	log         *logger.Logger
	commandSock string
	eventSock   string
}

func NewHyprland(log *logger.Logger) (*Hyprland, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return nil, fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}

	base := filepath.Join(runtimeDir, "hypr", sig)
	h := &Hyprland{
		log:         log,
		commandSock: filepath.Join(base, ".socket.sock"),
		eventSock:   filepath.Join(base, ".socket2.sock"),
	}
	log.Debug("Hyprland IPC sockets resolved",
		"command", h.commandSock,
		"event", h.eventSock)
	return h, nil
}

func (h *Hyprland) Name() string {
	return "Hyprland"
}

// request performs one command-socket round trip.
func (h *Hyprland) request(ctx context.Context, command string) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", h.commandSock)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", command, err)
	}
	out, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %q: %w", command, err)
	}
	return out, nil
}

// Snapshot lists all mapped toplevels via j/clients.
func (h *Hyprland) Snapshot(ctx context.Context) ([]Toplevel, error) {
	out, err := h.request(ctx, "j/clients")
	if err != nil {
		return nil, err
	}

	var clients []struct {
		Address string `json:"address"`
		Class   string `json:"class"`
		Title   string `json:"title"`
		Mapped  bool   `json:"mapped"`
	}
	if err := json.Unmarshal(out, &clients); err != nil {
		h.log.Error("Failed to parse clients output", err, "output", string(out))
		return nil, fmt.Errorf("failed to parse clients output: %w", err)
	}

	tops := make([]Toplevel, 0, len(clients))
	for _, c := range clients {
		if !c.Mapped {
			continue
		}
		tops = append(tops, Toplevel{
			Handle:      Handle(c.Address),
			AppID:       c.Class,
			Title:       c.Title,
			CanActivate: true,
		})
	}
	return tops, nil
}

// Activate focuses the window with the given address.
func (h *Hyprland) Activate(ctx context.Context, handle Handle) error {
	h.log.Debug("Focusing window", "address", string(handle))

	out, err := h.request(ctx, "dispatch focuswindow address:"+string(handle))
	if err != nil {
		return err
	}
	if resp := strings.TrimSpace(string(out)); resp != "ok" {
		h.log.Error("Compositor rejected focus dispatch", nil,
			"address", string(handle), "response", resp)
		return fmt.Errorf("focus dispatch failed: %s", resp)
	}
	return nil
}

// Events subscribes to the lifecycle stream. The returned channel carries
// events in emission order and is closed after a final Reset when the
// socket is lost or the context is cancelled.
func (h *Hyprland) Events(ctx context.Context) (<-chan Event, error) {
	conn, err := net.Dial("unix", h.eventSock)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event socket: %w", err)
	}

	events := make(chan Event, 64)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()

		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			ev, ok := parseEventLine(scanner.Text())
			if !ok {
				continue
			}
			events <- ev
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			h.log.Error("Compositor event stream lost", err)
		}
		events <- Event{Kind: Reset}
	}()
	return events, nil
}

// parseEventLine maps one NAME>>PAYLOAD line onto a protocol-neutral
// event. Unknown event names are skipped.
func parseEventLine(line string) (Event, bool) {
	name, payload, found := strings.Cut(line, ">>")
	if !found {
		return Event{}, false
	}

	switch name {
	case "openwindow":
		// address,workspace,class,title — title may itself contain commas
		parts := strings.SplitN(payload, ",", 4)
		if len(parts) < 4 {
			return Event{}, false
		}
		return Event{
			Kind:   Added,
			Handle: normalizeAddress(parts[0]),
			Toplevel: Toplevel{
				Handle:      normalizeAddress(parts[0]),
				AppID:       parts[2],
				Title:       parts[3],
				CanActivate: true,
			},
		}, true
	case "closewindow":
		return Event{Kind: Removed, Handle: normalizeAddress(payload)}, true
	case "windowtitlev2":
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) < 2 {
			return Event{}, false
		}
		return Event{
			Kind:     TitleChanged,
			Handle:   normalizeAddress(parts[0]),
			Toplevel: Toplevel{Title: parts[1]},
		}, true
	case "activewindowv2":
		if payload == "" {
			return Event{}, false
		}
		return Event{Kind: Focused, Handle: normalizeAddress(payload)}, true
	default:
		return Event{}, false
	}
}

// normalizeAddress gives event-socket and command-socket addresses the
// same form. j/clients reports 0x-prefixed addresses, socket2 does not.
func normalizeAddress(addr string) Handle {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return Handle(addr)
}
