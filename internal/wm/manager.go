package wm

import (
	"fmt"
	"os"

	"wayfocus/pkg/logger"
)

// NewClient detects the running compositor and returns a protocol client
// for it. Only Wayland sessions are supported; app_id-based matching has
// no equivalent identity under bare X11.
func NewClient(log *logger.Logger) (Client, error) {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	log.Info("Session type detected", "session", sessionType)

	if sessionType != "" && sessionType != "wayland" {
		return nil, fmt.Errorf("unsupported session type: %s", sessionType)
	}

	if sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"); sig != "" {
		log.Debug("Initializing compositor support", "type", "Hyprland")
		client, err := NewHyprland(log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Hyprland support: %w", err)
		}
		log.Info("Compositor client initialized", "name", client.Name())
		return client, nil
	}

	return nil, fmt.Errorf("unsupported Wayland compositor: no toplevel protocol available")
}
