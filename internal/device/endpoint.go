package device

import (
	"log/slog"
	"sync"
)

// Endpoint represents one controllable audio output device. It is constructed
// with an identity only; the volume control handle is acquired lazily via
// Initialize and re-acquired by the owner when the device vanishes.
type Endpoint struct {
	id   string
	name string

	mu       sync.Mutex
	platform Platform
	handle   ControlHandle
	logger   *slog.Logger
}

// NewEndpoint creates an endpoint for the given device identity. The endpoint
// is not usable until Initialize succeeds.
func NewEndpoint(p Platform, id, name string, logger *slog.Logger) *Endpoint {
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoint{
		id:       id,
		name:     name,
		platform: p,
		logger:   logger,
	}
}

// ID returns the stable device identifier.
func (e *Endpoint) ID() string { return e.id }

// Name returns the human-readable device name.
func (e *Endpoint) Name() string { return e.name }

// Initialize looks the device up in the current platform snapshot and binds a
// volume control handle. It returns false when the device is absent, lacks
// volume control, or binding fails. A failed call never downgrades an already
// bound endpoint; a successful call makes it available. Safe to call
// repeatedly.
func (e *Endpoint) Initialize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	found := false
	for _, d := range e.platform.Devices() {
		if d.ID != e.id {
			continue
		}
		found = true
		if !d.HasVolumeControl {
			e.logger.Warn("device has no volume control", "device", e.name)
			return false
		}
		break
	}
	if !found {
		return false
	}

	handle := e.platform.Bind(e.id)
	if handle == nil {
		e.logger.Warn("failed to bind volume control", "device", e.name, "id", e.id)
		return false
	}
	e.handle = handle
	return true
}

// Volume returns the current volume scalar in [0.0, 1.0]. ok is false when no
// handle is bound or the read fails (e.g. the device was removed mid-call).
func (e *Endpoint) Volume() (float64, bool) {
	e.mu.Lock()
	handle := e.handle
	e.mu.Unlock()

	if handle == nil {
		return 0, false
	}
	v, ok := handle.Volume()
	if !ok {
		e.logger.Debug("volume read failed", "device", e.name)
		return 0, false
	}
	return clamp(v), true
}

// SetVolume writes a volume scalar, clamped to [0.0, 1.0] before the write.
// It returns false when no handle is bound or the write fails.
func (e *Endpoint) SetVolume(v float64) bool {
	e.mu.Lock()
	handle := e.handle
	e.mu.Unlock()

	if handle == nil {
		return false
	}
	if !handle.SetVolume(clamp(v)) {
		e.logger.Debug("volume write failed", "device", e.name)
		return false
	}
	return true
}

// Available reports whether a control handle is currently bound. This is a
// cached check, not a live probe of the device.
func (e *Endpoint) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle != nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
