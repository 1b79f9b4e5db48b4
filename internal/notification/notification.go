// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/zhubert/imagine/internal/logger"
)

// AppName is the title of every notification.
const AppName = "imagine"

type notifyFunc func(title, message string, icon any) error

var notifier notifyFunc = beeep.Notify

// SetNotifier replaces the notification backend. Used by tests.
func SetNotifier(fn func(title, message string, icon any) error) {
	notifier = fn
}

// ResetNotifier restores the beeep backend.
func ResetNotifier() {
	notifier = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	log := logger.WithComponent("notification")
	log.Debug("sending", "title", title, "message", message)
	// Empty icon: beeep picks the platform default.
	err := notifier(title, message, "")
	if err != nil {
		log.Warn("send failed", "error", err)
	}
	return err
}

// GenerationFinished announces a completed generation of n images.
func GenerationFinished(n int) error {
	if n == 1 {
		return Send(AppName, "1 image is ready")
	}
	return Send(AppName, fmt.Sprintf("%d images are ready", n))
}

// GenerationFailed announces a failed generation.
func GenerationFailed(message string) error {
	return Send(AppName, "Generation failed: "+message)
}
