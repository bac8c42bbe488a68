package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Link.Enabled)
	assert.Equal(t, 100*time.Millisecond, cfg.Link.PollInterval.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Link.RecoveryInterval.Duration())
	assert.Equal(t, 0.001, cfg.Link.Tolerance)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, 1000, cfg.Journal.MaxEntries)
	assert.False(t, cfg.Autostart.Enabled)
	assert.False(t, cfg.HasDevicePair())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Link.PollInterval, cfg.Link.PollInterval)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[devices]
a_id = "alsa_output.pci-0000_00_1f.3.analog-stereo"
a_name = "Built-in Audio"
b_id = "bluez_output.AA_BB_CC"
b_name = "BT Speaker"

[link]
enabled = false
poll_interval = "250ms"
recovery_interval = "2s"
tolerance = 0.01

[journal]
enabled = false
max_entries = 50

[autostart]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Built-in Audio", cfg.Devices.AName)
	assert.Equal(t, "bluez_output.AA_BB_CC", cfg.Devices.BID)
	assert.True(t, cfg.HasDevicePair())
	assert.False(t, cfg.Link.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Link.PollInterval.Duration())
	assert.Equal(t, 2*time.Second, cfg.Link.RecoveryInterval.Duration())
	assert.Equal(t, 0.01, cfg.Link.Tolerance)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 50, cfg.Journal.MaxEntries)
	assert.True(t, cfg.Autostart.Enabled)
}

func TestLoad_IntegerMillisecondDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[link]
poll_interval = "100"
recovery_interval = "500"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Link.PollInterval.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Link.RecoveryInterval.Duration())
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[link]
tolerance = 0.005
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.005, cfg.Link.Tolerance)
	// Unset fields keep defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.Link.PollInterval.Duration())
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`not toml [`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero poll interval", "[link]\npoll_interval = \"0s\"\n"},
		{"negative tolerance", "[link]\ntolerance = -0.1\n"},
		{"tolerance too large", "[link]\ntolerance = 1.5\n"},
		{"negative max entries", "[journal]\nmax_entries = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.SetDevicePair("id-a", "Speakers", "id-b", "Headphones")
	cfg.Link.Enabled = false

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Speakers", loaded.Devices.AName)
	assert.Equal(t, "id-b", loaded.Devices.BID)
	assert.False(t, loaded.Link.Enabled)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/volink/config.toml", ConfigPath())
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/volink", DataPath())
	assert.Equal(t, "/custom/data/volink/journal.jsonl", JournalPath())
	assert.Equal(t, "/custom/data/volink/state.json", StatePath())
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	require.NoError(t, EnsureDataDir())

	info, err := os.Stat(filepath.Join(dir, "volink"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
