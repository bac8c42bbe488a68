package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform/fake"
)

func TestResolveByID(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)
	p.AddOutput("dev-2", "Headphones", 0.3)

	ep := device.ResolveByID(p, "dev-2", nil)
	require.NotNil(t, ep)
	assert.Equal(t, "Headphones", ep.Name())
	assert.True(t, ep.Available())
}

func TestResolveByID_NotFound(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	assert.Nil(t, device.ResolveByID(p, "missing", nil))
}

func TestResolveByID_InitializationFailure(t *testing.T) {
	p := fake.New()
	p.Add(device.DeviceInfo{ID: "dev-1", Name: "Raw", IsOutput: true}, 0.5)

	// Device exists but has no volume control: resolution absorbs the
	// failure and returns nil.
	assert.Nil(t, device.ResolveByID(p, "dev-1", nil))
}

func TestResolveByName(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	ep := device.ResolveByName(p, "Speakers", nil)
	require.NotNil(t, ep)
	assert.Equal(t, "dev-1", ep.ID())

	assert.Nil(t, device.ResolveByName(p, "Ghost", nil))
}

func TestResolveByName_CaseInsensitive(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	ep := device.ResolveByName(p, "sPEAKERS", nil)
	require.NotNil(t, ep)
	assert.Equal(t, "dev-1", ep.ID())
	// The endpoint keeps the device's own casing.
	assert.Equal(t, "Speakers", ep.Name())
}

func TestOutputDevices_FiltersAndDeduplicates(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)
	p.Add(device.DeviceInfo{ID: "dev-2", Name: "Mic", HasVolumeControl: true, IsOutput: false}, 0.5)
	p.Add(device.DeviceInfo{ID: "dev-3", Name: "HDMI", IsOutput: true}, 0.5)
	// Same display name as dev-1: first occurrence wins.
	p.AddOutput("dev-4", "Speakers", 0.8)

	devices := device.OutputDevices(p)
	require.Len(t, devices, 1)
	assert.Equal(t, "dev-1", devices[0].ID)
}
