//go:build linux

// Package autostart registers volinkd to launch at login.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// desktopName is the autostart entry filename.
const desktopName = "volink.desktop"

// entryPath returns the XDG autostart path for the volink desktop entry.
func entryPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart", desktopName), nil
}

// Enabled reports whether the autostart entry exists.
func Enabled() (bool, error) {
	path, err := entryPath()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Enable writes an XDG autostart desktop entry pointing at the volinkd
// daemon.
func Enable() error {
	exe, err := daemonPath()
	if err != nil {
		return err
	}

	path, err := entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	content := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=volink
Comment=Keep two audio devices at the same volume
Exec=%s
X-GNOME-Autostart-enabled=true
`, exe)

	return os.WriteFile(path, []byte(content), 0644)
}

// Disable removes the autostart entry. Removing a missing entry is a no-op.
func Disable() error {
	path, err := entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
