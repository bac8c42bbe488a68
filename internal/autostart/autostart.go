package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// daemonBinary is the name of the daemon executable to register.
func daemonBinary() string {
	if runtime.GOOS == "windows" {
		return "volinkd.exe"
	}
	return "volinkd"
}

// daemonPath locates the volinkd binary to register at login: first as a
// sibling of the calling executable, then on PATH. The CLI and the daemon
// install side by side, so the sibling lookup is the common case.
func daemonPath() (string, error) {
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), daemonBinary())
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	if path, err := exec.LookPath(daemonBinary()); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%s not found next to the current executable or on PATH", daemonBinary())
}
