//go:build linux

// Package pulse implements device.Platform on top of the PulseAudio D-Bus
// API (org.PulseAudio.Core1). Sinks are the controllable output devices;
// their stable PulseAudio names serve as device IDs.
package pulse

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmsalzman/volink/internal/device"
)

const (
	lookupService = "org.PulseAudio1"
	lookupPath    = "/org/pulseaudio/server_lookup/1"
	lookupAddress = "org.PulseAudio.ServerLookup1.Address"

	corePath    = "/org/pulseaudio/core1"
	coreIface   = "org.PulseAudio.Core1"
	deviceIface = "org.PulseAudio.Core1.Device"

	// volumeNorm is PA_VOLUME_NORM: the raw value for 100% volume.
	volumeNorm = 65536
)

// Platform talks to the PulseAudio daemon. Connections are established per
// operation so a PulseAudio restart never wedges the platform; a bound
// handle keeps its own connection and simply starts failing when the daemon
// goes away, at which point re-initializing the endpoint binds a fresh one.
type Platform struct {
	logger *slog.Logger
}

// New creates a PulseAudio platform. It verifies the server is reachable.
func New(logger *slog.Logger) (*Platform, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Platform{logger: logger}

	conn, err := p.connect()
	if err != nil {
		return nil, fmt.Errorf("pulseaudio unreachable: %w", err)
	}
	conn.Close()
	return p, nil
}

// serverAddress discovers the PulseAudio D-Bus socket, preferring the
// PULSE_DBUS_SERVER environment variable over session-bus lookup.
func (p *Platform) serverAddress() (string, error) {
	if addr := os.Getenv("PULSE_DBUS_SERVER"); addr != "" {
		return addr, nil
	}

	session, err := dbus.SessionBus()
	if err != nil {
		return "", fmt.Errorf("failed to connect to session bus: %w", err)
	}

	variant, err := session.Object(lookupService, lookupPath).GetProperty(lookupAddress)
	if err != nil {
		return "", fmt.Errorf("pulseaudio server lookup failed: %w", err)
	}

	addr, ok := variant.Value().(string)
	if !ok || addr == "" {
		return "", fmt.Errorf("pulseaudio server lookup returned no address")
	}
	return addr, nil
}

// connect dials the PulseAudio peer-to-peer D-Bus socket. Peer connections
// authenticate but do not send Hello.
func (p *Platform) connect() (*dbus.Conn, error) {
	addr, err := p.serverAddress()
	if err != nil {
		return nil, err
	}

	conn, err := dbus.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial pulseaudio at %s: %w", addr, err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pulseaudio auth failed: %w", err)
	}
	return conn, nil
}

// Devices implements device.Platform. Enumeration failures yield an empty
// snapshot.
func (p *Platform) Devices() []device.DeviceInfo {
	conn, err := p.connect()
	if err != nil {
		p.logger.Warn("device enumeration failed", "error", err)
		return nil
	}
	defer conn.Close()

	variant, err := conn.Object(coreIface, corePath).GetProperty(coreIface + ".Sinks")
	if err != nil {
		p.logger.Warn("failed to list sinks", "error", err)
		return nil
	}
	paths, ok := variant.Value().([]dbus.ObjectPath)
	if !ok {
		return nil
	}

	var out []device.DeviceInfo
	for _, path := range paths {
		obj := conn.Object(coreIface, path)

		nameVar, err := obj.GetProperty(deviceIface + ".Name")
		if err != nil {
			continue
		}
		id, _ := nameVar.Value().(string)
		if id == "" {
			continue
		}

		out = append(out, device.DeviceInfo{
			ID:               id,
			Name:             sinkDescription(obj, id),
			HasVolumeControl: true,
			IsOutput:         true,
		})
	}
	return out
}

// sinkDescription reads the human-readable description from the sink's
// property list, falling back to the sink name.
func sinkDescription(obj dbus.BusObject, fallback string) string {
	variant, err := obj.GetProperty(deviceIface + ".PropertyList")
	if err != nil {
		return fallback
	}
	props, ok := variant.Value().(map[string][]byte)
	if !ok {
		return fallback
	}
	if desc, ok := props["device.description"]; ok {
		// PulseAudio property values are NUL-terminated.
		if s := strings.TrimRight(string(desc), "\x00"); s != "" {
			return s
		}
	}
	return fallback
}

// Bind implements device.Platform.
func (p *Platform) Bind(id string) device.ControlHandle {
	conn, err := p.connect()
	if err != nil {
		p.logger.Warn("bind failed", "id", id, "error", err)
		return nil
	}

	var path dbus.ObjectPath
	call := conn.Object(coreIface, corePath).Call(coreIface+".GetSinkByName", 0, id)
	if call.Err != nil || call.Store(&path) != nil {
		p.logger.Warn("sink not found", "id", id, "error", call.Err)
		conn.Close()
		return nil
	}

	return &handle{conn: conn, path: path, logger: p.logger}
}

type handle struct {
	conn   *dbus.Conn
	path   dbus.ObjectPath
	logger *slog.Logger
}

func (h *handle) Volume() (float64, bool) {
	variant, err := h.conn.Object(coreIface, h.path).GetProperty(deviceIface + ".Volume")
	if err != nil {
		return 0, false
	}
	channels, ok := variant.Value().([]uint32)
	if !ok || len(channels) == 0 {
		return 0, false
	}

	// Average across channels, like pactl's reported volume.
	var sum uint64
	for _, c := range channels {
		sum += uint64(c)
	}
	return float64(sum) / float64(len(channels)) / volumeNorm, true
}

func (h *handle) SetVolume(v float64) bool {
	obj := h.conn.Object(coreIface, h.path)

	// Preserve the channel count of the current volume vector.
	variant, err := obj.GetProperty(deviceIface + ".Volume")
	if err != nil {
		return false
	}
	channels, ok := variant.Value().([]uint32)
	if !ok || len(channels) == 0 {
		return false
	}

	raw := uint32(v * volumeNorm)
	vols := make([]uint32, len(channels))
	for i := range vols {
		vols[i] = raw
	}

	if err := obj.SetProperty(deviceIface+".Volume", dbus.MakeVariant(vols)); err != nil {
		h.logger.Debug("volume write failed", "path", h.path, "error", err)
		return false
	}
	return true
}
