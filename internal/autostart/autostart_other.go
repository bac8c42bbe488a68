//go:build !linux && !windows

// Package autostart registers volinkd to launch at login.
package autostart

import (
	"fmt"
	"runtime"
)

// Enabled reports whether auto-start is configured.
func Enabled() (bool, error) {
	return false, fmt.Errorf("auto-start is not supported on %s", runtime.GOOS)
}

// Enable configures auto-start.
func Enable() error {
	return fmt.Errorf("auto-start is not supported on %s", runtime.GOOS)
}

// Disable removes the auto-start configuration.
func Disable() error {
	return fmt.Errorf("auto-start is not supported on %s", runtime.GOOS)
}
