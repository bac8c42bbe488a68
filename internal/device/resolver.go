package device

import (
	"log/slog"
	"strings"
)

// ResolveByID scans the current platform snapshot for a device with the given
// ID, constructs an endpoint for it and initializes it. Returns nil when the
// device is not found or initialization fails; resolution never fails loudly.
func ResolveByID(p Platform, id string, logger *slog.Logger) *Endpoint {
	if logger == nil {
		logger = slog.Default()
	}
	for _, d := range p.Devices() {
		if d.ID != id {
			continue
		}
		ep := NewEndpoint(p, d.ID, d.Name, logger)
		if !ep.Initialize() {
			logger.Warn("device found but initialization failed", "id", id, "device", d.Name)
			return nil
		}
		return ep
	}
	logger.Debug("device not found", "id", id)
	return nil
}

// ResolveByName is ResolveByID keyed on the human-readable device name.
// Matching is case-insensitive; the first device with a matching name wins.
func ResolveByName(p Platform, name string, logger *slog.Logger) *Endpoint {
	if logger == nil {
		logger = slog.Default()
	}
	for _, d := range p.Devices() {
		if !strings.EqualFold(d.Name, name) {
			continue
		}
		ep := NewEndpoint(p, d.ID, d.Name, logger)
		if !ep.Initialize() {
			logger.Warn("device found but initialization failed", "device", name)
			return nil
		}
		return ep
	}
	logger.Debug("device not found", "name", name)
	return nil
}
