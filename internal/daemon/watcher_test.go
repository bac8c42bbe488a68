package daemon

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsalzman/volink/internal/config"
)

func TestConfigWatcher_ReloadsValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, config.DefaultConfig().Save(path))

	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)

	var reloaded atomic.Pointer[config.Config]
	w.SetReloadCallback(func(cfg *config.Config) { reloaded.Store(cfg) })

	require.NoError(t, w.Start(config.DefaultConfig()))
	defer w.Stop()

	cfg := config.DefaultConfig()
	cfg.Link.Tolerance = 0.01
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		return reloaded.Load() != nil
	}, 2*time.Second, 10*time.Millisecond, "reload callback should fire")

	assert.Equal(t, 0.01, reloaded.Load().Link.Tolerance)
	assert.Equal(t, 0.01, w.CurrentConfig().Link.Tolerance)
}

func TestConfigWatcher_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	initial := config.DefaultConfig()
	require.NoError(t, initial.Save(path))

	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)

	var failures atomic.Int32
	w.SetErrorCallback(func(err error) { failures.Add(1) })
	w.SetReloadCallback(func(cfg *config.Config) { t.Error("reload callback must not fire for invalid config") })

	require.NoError(t, w.Start(initial))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[link]\ntolerance = -5.0\n"), 0644))

	require.Eventually(t, func() bool {
		return failures.Load() > 0
	}, 2*time.Second, 10*time.Millisecond, "error callback should fire")

	// The previous config stays in effect.
	assert.Equal(t, initial.Link.Tolerance, w.CurrentConfig().Link.Tolerance)
}

func TestConfigWatcher_StartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w, err := NewConfigWatcher(path, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(config.DefaultConfig()))
	require.NoError(t, w.Start(config.DefaultConfig()))
	w.Stop()
	w.Stop()
}

func TestStateWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"link_enabled":true}`), 0600))

	w := NewStateWatcher(path, nil)
	w.SetPollInterval(5 * time.Millisecond)

	var changes atomic.Int32
	w.SetChangeCallback(func() { changes.Add(1) })

	require.NoError(t, w.Start())
	defer w.Stop()

	// mtime granularity can be coarse; make sure the rewrite lands later.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"link_enabled":false}`), 0600))
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	require.Eventually(t, func() bool {
		return changes.Load() > 0
	}, 2*time.Second, 5*time.Millisecond, "change callback should fire")
}

func TestStateWatcher_MissingFileIsQuiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	w := NewStateWatcher(path, nil)
	w.SetPollInterval(5 * time.Millisecond)

	var changes atomic.Int32
	w.SetChangeCallback(func() { changes.Add(1) })

	require.NoError(t, w.Start())
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	assert.Zero(t, changes.Load())
}
