// Package fake provides an in-memory device.Platform used by tests and by
// volinkd's dry-run mode.
package fake

import (
	"sync"

	"github.com/jmsalzman/volink/internal/device"
)

// Device is one simulated audio device.
type Device struct {
	Info   device.DeviceInfo
	Volume float64

	// Present simulates the device vanishing from the system. An absent
	// device is excluded from snapshots and its bound handles start failing.
	Present bool

	// FailReads/FailWrites simulate transient I/O failures on bound handles.
	FailReads  bool
	FailWrites bool

	// Writes counts successful handle writes, letting tests assert that a
	// sync pass performed no write at all.
	Writes int
}

// Platform is an in-memory implementation of device.Platform. All methods are
// safe for concurrent use.
type Platform struct {
	mu      sync.Mutex
	devices map[string]*Device
	order   []string
	binds   int
}

// New creates an empty fake platform.
func New() *Platform {
	return &Platform{devices: make(map[string]*Device)}
}

// AddOutput registers a present output device with volume control.
func (p *Platform) AddOutput(id, name string, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devices[id] = &Device{
		Info:    device.DeviceInfo{ID: id, Name: name, HasVolumeControl: true, IsOutput: true},
		Volume:  volume,
		Present: true,
	}
	p.order = append(p.order, id)
}

// Add registers a device with explicit capabilities.
func (p *Platform) Add(info device.DeviceInfo, volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devices[info.ID] = &Device{Info: info, Volume: volume, Present: true}
	p.order = append(p.order, info.ID)
}

// SetPresent marks a device present or absent.
func (p *Platform) SetPresent(id string, present bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devices[id]; ok {
		d.Present = present
	}
}

// SetFailReads toggles read failures for a device's handles.
func (p *Platform) SetFailReads(id string, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devices[id]; ok {
		d.FailReads = fail
	}
}

// SetFailWrites toggles write failures for a device's handles.
func (p *Platform) SetFailWrites(id string, fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devices[id]; ok {
		d.FailWrites = fail
	}
}

// SetVolume changes a device's volume directly, simulating an external
// actor such as a hardware slider or the OS mixer.
func (p *Platform) SetVolume(id string, v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devices[id]; ok {
		d.Volume = v
	}
}

// WriteCount returns how many successful handle writes hit a device.
func (p *Platform) WriteCount(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devices[id]; ok {
		return d.Writes
	}
	return 0
}

// GetVolume reads a device's volume directly.
func (p *Platform) GetVolume(id string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.devices[id]; ok {
		return d.Volume
	}
	return 0
}

// Devices implements device.Platform.
func (p *Platform) Devices() []device.DeviceInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []device.DeviceInfo
	for _, id := range p.order {
		d := p.devices[id]
		if d.Present {
			out = append(out, d.Info)
		}
	}
	return out
}

// BindCount returns the number of Bind calls made against the platform.
func (p *Platform) BindCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binds
}

// Bind implements device.Platform.
func (p *Platform) Bind(id string) device.ControlHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.binds++
	d, ok := p.devices[id]
	if !ok || !d.Present || !d.Info.HasVolumeControl {
		return nil
	}
	return &handle{platform: p, id: id}
}

type handle struct {
	platform *Platform
	id       string
}

func (h *handle) Volume() (float64, bool) {
	h.platform.mu.Lock()
	defer h.platform.mu.Unlock()
	d, ok := h.platform.devices[h.id]
	if !ok || !d.Present || d.FailReads {
		return 0, false
	}
	return d.Volume, true
}

func (h *handle) SetVolume(v float64) bool {
	h.platform.mu.Lock()
	defer h.platform.mu.Unlock()
	d, ok := h.platform.devices[h.id]
	if !ok || !d.Present || d.FailWrites {
		return false
	}
	d.Volume = v
	d.Writes++
	return true
}
