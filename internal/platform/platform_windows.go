//go:build windows

// Package platform selects the native device.Platform for the build target.
package platform

import (
	"log/slog"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform/coreaudio"
)

// New returns the native audio platform for this system.
func New(logger *slog.Logger) (device.Platform, error) {
	return coreaudio.New(logger)
}
