package notify

import (
	"fmt"
	"os/exec"
	"strings"

	"wayfocus/pkg/logger"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	Error NotificationType = iota
	Info
)

// NotifyService handles system notifications
type NotifyService struct {
	log           *logger.Logger
	notifyCommand string
}

// NewNotifyService creates a new notification service
func NewNotifyService(notifyCommand string, log *logger.Logger) *NotifyService {
	return &NotifyService{
		log:           log,
		notifyCommand: notifyCommand,
	}
}

// Show displays a notification of the specified type
func (n *NotifyService) Show(message string, nType NotificationType) error {
	// First try configured notification command if available
	if n.notifyCommand != "" {
		if err := n.executeNotifyCommand(message, nType); err == nil {
			return nil
		}
		n.log.Warn("Custom notification command failed", "command", n.notifyCommand)
	}

	// Fall back to notify-send when available
	if err := n.trySystemNotification(message, nType); err == nil {
		return nil
	}

	// Last resort: log only
	if nType == Error {
		n.log.Error("Notification", fmt.Errorf("%s", message))
	} else {
		n.log.Info("Notification", "message", message)
	}
	return nil
}

func (n *NotifyService) executeNotifyCommand(message string, nType NotificationType) error {
	parts := strings.Fields(n.notifyCommand)
	if len(parts) == 0 {
		return fmt.Errorf("empty notify command")
	}
	args := append(parts[1:], message)
	return exec.Command(parts[0], args...).Run()
}

func (n *NotifyService) trySystemNotification(message string, nType NotificationType) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return err
	}

	urgency := "normal"
	title := "wayfocus"
	if nType == Error {
		urgency = "critical"
		title = "wayfocus error"
	}
	return exec.Command("notify-send", "--urgency", urgency, title, message).Run()
}
