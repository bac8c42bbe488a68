// Package device defines the audio endpoint abstraction and the platform
// collaborator it is built on.
package device

// DeviceInfo describes one audio device in a platform snapshot.
type DeviceInfo struct {
	ID               string
	Name             string
	HasVolumeControl bool
	IsOutput         bool
}

// ControlHandle is a bound volume control for a single device. Implementations
// must tolerate the underlying device vanishing between bind and call: a
// failed read reports ok=false and a failed write reports false, never a
// panic.
type ControlHandle interface {
	// Volume returns the current volume as a scalar in [0.0, 1.0].
	Volume() (float64, bool)
	// SetVolume writes a scalar volume in [0.0, 1.0].
	SetVolume(v float64) bool
}

// Platform is the OS audio collaborator: it enumerates devices and binds
// volume controls. Implementations live in internal/platform.
type Platform interface {
	// Devices returns a snapshot of currently present devices. It never
	// fails; enumeration errors yield an empty slice.
	Devices() []DeviceInfo
	// Bind acquires a volume control handle for the given device ID, or nil
	// if the device is missing, lacks volume control, or binding fails.
	Bind(id string) ControlHandle
}

// OutputDevices filters a platform snapshot down to controllable output
// devices, deduplicated by display name (first occurrence wins). This is the
// candidate list shown in selection UIs.
func OutputDevices(p Platform) []DeviceInfo {
	seen := make(map[string]bool)
	var out []DeviceInfo
	for _, d := range p.Devices() {
		if !d.IsOutput || !d.HasVolumeControl {
			continue
		}
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}
