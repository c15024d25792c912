package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"wayfocus/internal/favorites"
	"wayfocus/internal/hotkeys"
	"wayfocus/pkg/global"
)

// Applet is the daemon surface the IPC server exposes: status for the
// panel UI and an activate path so a one-shot invocation can reuse the
// daemon's live registry.
type Applet interface {
	Slots() []favorites.Slot
	Degraded() bool
	BindingErrors() map[int]string
	Activate(appID string) error
}

type Request struct {
	Command string `json:"command"`
	AppID   string `json:"app_id,omitempty"`
}

// SlotInfo is the wire form of one presentation slot.
type SlotInfo struct {
	Position int    `json:"position"`
	Digit    int    `json:"digit"` // -1 when the slot is beyond the hotkey range
	AppID    string `json:"app_id"`
	Name     string `json:"name"`
	Pinned   bool   `json:"pinned"`
	Windows  int    `json:"windows"`
}

type Response struct {
	Status        string         `json:"status"`
	Message       string         `json:"message,omitempty"`
	Slots         []SlotInfo     `json:"slots,omitempty"`
	Degraded      bool           `json:"degraded,omitempty"`
	BindingErrors map[int]string `json:"binding_errors,omitempty"`
}

// SocketPath returns the daemon's control socket location.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "wayfocus.sock")
	}
	return "/tmp/wayfocus.sock"
}

func StartSocketServer(applet Applet) error {
	log := global.GetLogger()
	socketPath := SocketPath()

	// Remove the socket file if it already exists
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		log.Error("Failed to remove existing socket file", err)
		return err
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		log.Error("Failed to start socket server", err)
		return err
	}
	defer listener.Close()

	log.Info("Socket server started", "path", socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Error("Failed to accept connection", err)
			continue
		}

		log.Debug("New connection accepted", "remote_addr", conn.RemoteAddr())

		go handleConnection(conn, applet)
	}
}

func handleConnection(conn net.Conn, applet Applet) {
	log := global.GetLogger()
	defer conn.Close()

	var req Request
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&req); err != nil {
		log.Error("Failed to decode request", err)
		return
	}

	log.Debug("Received request", "command", req.Command, "app_id", req.AppID)

	var resp Response
	switch req.Command {
	case "status":
		resp = statusResponse(applet)
	case "activate":
		if req.AppID == "" {
			resp = Response{Status: "error", Message: "missing app_id"}
			break
		}
		if err := applet.Activate(req.AppID); err != nil {
			log.Error("Activate request failed", err, "app_id", req.AppID)
			resp = Response{Status: "error", Message: err.Error()}
		} else {
			resp = Response{Status: "success", Message: "activated " + req.AppID}
		}
	default:
		log.Error("Unknown command received", fmt.Errorf("command: %s", req.Command))
		resp = Response{Status: "error", Message: "Unknown command"}
	}

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(resp); err != nil {
		log.Error("Failed to encode response", err)
	} else {
		log.Debug("Response sent successfully", "status", resp.Status)
	}
}

func statusResponse(applet Applet) Response {
	slots := applet.Slots()
	infos := make([]SlotInfo, 0, len(slots))
	for i, slot := range slots {
		info := SlotInfo{
			Position: i + 1,
			Digit:    -1,
			AppID:    slot.DisplayID(),
			Name:     string(slot.ID),
			Pinned:   slot.Favorite != nil,
		}
		if slot.Favorite != nil {
			info.Name = slot.Favorite.Name
		}
		if slot.Running != nil {
			info.Windows = len(slot.Running.Windows)
		}
		if i < hotkeys.MaxSlots {
			info.Digit = hotkeys.SlotDigit(i)
		}
		infos = append(infos, info)
	}

	return Response{
		Status:        "success",
		Slots:         infos,
		Degraded:      applet.Degraded(),
		BindingErrors: applet.BindingErrors(),
	}
}
