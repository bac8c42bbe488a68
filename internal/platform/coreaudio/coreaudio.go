//go:build windows

// Package coreaudio implements device.Platform on top of the Windows Core
// Audio APIs (MMDevice + IAudioEndpointVolume) via go-ole and go-wca.
package coreaudio

import (
	"log/slog"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"

	"github.com/jmsalzman/volink/internal/device"
)

// Platform enumerates active render endpoints and binds their master volume
// controls.
type Platform struct {
	logger *slog.Logger
}

// New creates a Core Audio platform and initializes COM for the calling
// thread.
func New(logger *slog.Logger) (*Platform, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE means COM was already initialized on this thread.
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != uintptr(1) {
			return nil, err
		}
	}
	return &Platform{logger: logger}, nil
}

func (p *Platform) enumerator() (*wca.IMMDeviceEnumerator, error) {
	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL,
		wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
		return nil, err
	}
	return mmde, nil
}

// Devices implements device.Platform. Enumeration failures yield an empty
// snapshot.
func (p *Platform) Devices() []device.DeviceInfo {
	mmde, err := p.enumerator()
	if err != nil {
		p.logger.Warn("device enumeration failed", "error", err)
		return nil
	}
	defer mmde.Release()

	var collection *wca.IMMDeviceCollection
	if err := mmde.EnumAudioEndpoints(wca.ERender, wca.DEVICE_STATE_ACTIVE, &collection); err != nil {
		p.logger.Warn("failed to enumerate render endpoints", "error", err)
		return nil
	}
	defer collection.Release()

	var count uint32
	if err := collection.GetCount(&count); err != nil {
		return nil
	}

	var out []device.DeviceInfo
	for i := uint32(0); i < count; i++ {
		var mmd *wca.IMMDevice
		if err := collection.Item(i, &mmd); err != nil {
			continue
		}

		var id string
		if err := mmd.GetId(&id); err != nil {
			mmd.Release()
			continue
		}

		out = append(out, device.DeviceInfo{
			ID:               id,
			Name:             friendlyName(mmd, id),
			HasVolumeControl: true,
			IsOutput:         true,
		})
		mmd.Release()
	}
	return out
}

// friendlyName reads the endpoint's display name, falling back to its ID.
func friendlyName(mmd *wca.IMMDevice, fallback string) string {
	var ps *wca.IPropertyStore
	if err := mmd.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return fallback
	}
	defer ps.Release()

	var pv wca.PROPVARIANT
	if err := ps.GetValue(&wca.PKEY_Device_FriendlyName, &pv); err != nil {
		return fallback
	}
	if name := pv.String(); name != "" {
		return name
	}
	return fallback
}

// Bind implements device.Platform.
func (p *Platform) Bind(id string) device.ControlHandle {
	mmde, err := p.enumerator()
	if err != nil {
		p.logger.Warn("bind failed", "id", id, "error", err)
		return nil
	}
	defer mmde.Release()

	var mmd *wca.IMMDevice
	if err := mmde.GetDevice(id, &mmd); err != nil {
		p.logger.Warn("device not found", "id", id, "error", err)
		return nil
	}
	defer mmd.Release()

	var aev *wca.IAudioEndpointVolume
	if err := mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_ALL, nil, &aev); err != nil {
		p.logger.Warn("failed to activate endpoint volume", "id", id, "error", err)
		return nil
	}

	return &handle{volume: aev, logger: p.logger}
}

type handle struct {
	volume *wca.IAudioEndpointVolume
	logger *slog.Logger
}

func (h *handle) Volume() (float64, bool) {
	var level float32
	if err := h.volume.GetMasterVolumeLevelScalar(&level); err != nil {
		return 0, false
	}
	return float64(level), true
}

func (h *handle) SetVolume(v float64) bool {
	if err := h.volume.SetMasterVolumeLevelScalar(float32(v), nil); err != nil {
		h.logger.Debug("volume write failed", "error", err)
		return false
	}
	return true
}
