//go:build linux

// Package platform selects the native device.Platform for the build target.
package platform

import (
	"log/slog"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform/pulse"
)

// New returns the native audio platform for this system.
func New(logger *slog.Logger) (device.Platform, error) {
	return pulse.New(logger)
}
