package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform/fake"
)

func TestEndpoint_InitializeBindsHandle(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	ep := device.NewEndpoint(p, "dev-1", "Speakers", nil)
	assert.False(t, ep.Available())

	require.True(t, ep.Initialize())
	assert.True(t, ep.Available())
	assert.Equal(t, "dev-1", ep.ID())
	assert.Equal(t, "Speakers", ep.Name())
}

func TestEndpoint_InitializeUnknownDevice(t *testing.T) {
	p := fake.New()

	ep := device.NewEndpoint(p, "missing", "Ghost", nil)
	assert.False(t, ep.Initialize())
	assert.False(t, ep.Available())
}

func TestEndpoint_InitializeNoVolumeControl(t *testing.T) {
	p := fake.New()
	p.Add(device.DeviceInfo{ID: "dev-1", Name: "Raw", IsOutput: true}, 0.5)

	ep := device.NewEndpoint(p, "dev-1", "Raw", nil)
	assert.False(t, ep.Initialize())
	assert.False(t, ep.Available())
}

func TestEndpoint_FailedRefreshKeepsHandle(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	ep := device.NewEndpoint(p, "dev-1", "Speakers", nil)
	require.True(t, ep.Initialize())

	// The device vanishes: a re-initialize attempt fails but must not
	// downgrade the previously bound handle.
	p.SetPresent("dev-1", false)
	assert.False(t, ep.Initialize())
	assert.True(t, ep.Available())

	// Calls through the stale handle fail gracefully.
	_, ok := ep.Volume()
	assert.False(t, ok)
	assert.False(t, ep.SetVolume(0.3))

	// Device returns: re-initialize succeeds and calls work again.
	p.SetPresent("dev-1", true)
	require.True(t, ep.Initialize())
	v, ok := ep.Volume()
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestEndpoint_VolumeUnbound(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	ep := device.NewEndpoint(p, "dev-1", "Speakers", nil)
	_, ok := ep.Volume()
	assert.False(t, ok)
	assert.False(t, ep.SetVolume(0.5))
}

func TestEndpoint_SetVolumeClamps(t *testing.T) {
	p := fake.New()
	p.AddOutput("dev-1", "Speakers", 0.5)

	ep := device.NewEndpoint(p, "dev-1", "Speakers", nil)
	require.True(t, ep.Initialize())

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"above range", 1.5, 1.0},
		{"below range", -0.2, 0.0},
		{"in range", 0.42, 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, ep.SetVolume(tt.in))
			assert.InDelta(t, tt.want, p.GetVolume("dev-1"), 1e-9)
		})
	}
}
