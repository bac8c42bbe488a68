//go:build !linux && !windows

// Package platform selects the native device.Platform for the build target.
package platform

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/jmsalzman/volink/internal/device"
)

// New returns the native audio platform for this system.
func New(logger *slog.Logger) (device.Platform, error) {
	return nil, fmt.Errorf("no audio platform available for %s", runtime.GOOS)
}
