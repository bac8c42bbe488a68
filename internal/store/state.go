// Package store handles the runtime state shared between volink and volinkd.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmsalzman/volink/internal/config"
)

// Transition records details about a link state change.
type Transition struct {
	Reason    string `json:"reason"`           // Human-readable reason (e.g. "link on")
	Source    string `json:"source,omitempty"` // Source identifier (e.g. "cli", "tui", "volinkd")
	Timestamp int64  `json:"timestamp"`        // When the transition occurred
}

// SharedState contains state that is shared between volink and volinkd.
// This is persisted to ~/.local/share/volink/state.json. The CLI writes it
// and the daemon picks changes up through its state watcher, so toggles and
// device swaps take effect without a daemon restart.
type SharedState struct {
	LinkEnabled bool `json:"link_enabled"`

	// Selected device pair. Mirrors the config but reflects live changes
	// made while the daemon runs.
	DeviceAID   string `json:"device_a_id,omitempty"`
	DeviceAName string `json:"device_a_name,omitempty"`
	DeviceBID   string `json:"device_b_id,omitempty"`
	DeviceBName string `json:"device_b_name,omitempty"`

	LastTransition *Transition `json:"last_transition,omitempty"`

	SchemaVersion int `json:"schema_version"`
}

// CurrentSchemaVersion is the current version of the state schema.
const CurrentSchemaVersion = 1

// stateFileMutex protects concurrent access to the state file.
var stateFileMutex sync.RWMutex

// DefaultSharedState returns a new SharedState with default values.
func DefaultSharedState() *SharedState {
	return &SharedState{
		LinkEnabled:   true,
		SchemaVersion: CurrentSchemaVersion,
	}
}

// Load reads the shared state from disk. A missing or corrupted file yields
// the default state.
func Load() (*SharedState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(config.StatePath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSharedState(), nil
		}
		return nil, err
	}

	var state SharedState
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultSharedState(), nil
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	return &state, nil
}

// Save writes the shared state to disk atomically.
func Save(state *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	path := config.StatePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// SetLinkEnabled updates the link state with transition tracking.
func (s *SharedState) SetLinkEnabled(enabled bool, reason, source string) {
	s.LinkEnabled = enabled
	s.LastTransition = &Transition{
		Reason:    reason,
		Source:    source,
		Timestamp: time.Now().Unix(),
	}
}

// ToggleLink toggles the link state and returns the new value.
func (s *SharedState) ToggleLink(reason, source string) bool {
	s.SetLinkEnabled(!s.LinkEnabled, reason, source)
	return s.LinkEnabled
}

// SetDevicePair updates the selected device pair with transition tracking.
func (s *SharedState) SetDevicePair(aID, aName, bID, bName, source string) {
	s.DeviceAID = aID
	s.DeviceAName = aName
	s.DeviceBID = bID
	s.DeviceBName = bName
	s.LastTransition = &Transition{
		Reason:    "device pair changed",
		Source:    source,
		Timestamp: time.Now().Unix(),
	}
}

// HasDevicePair reports whether both device slots are set.
func (s *SharedState) HasDevicePair() bool {
	return s.DeviceAID != "" && s.DeviceBID != ""
}
