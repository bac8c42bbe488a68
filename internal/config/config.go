// Package config handles configuration file loading and parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings like "100ms", "1s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '100ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the volink configuration, shared by the daemon and the CLI.
// Loaded from ~/.config/volink/config.toml.
type Config struct {
	Devices   DevicesConfig   `toml:"devices"`
	Link      LinkConfig      `toml:"link"`
	Journal   JournalConfig   `toml:"journal"`
	Autostart AutostartConfig `toml:"autostart"`
}

// DevicesConfig holds the persisted device pair. Names are kept alongside IDs
// so a device can be re-resolved by name when its ID changes across reboots.
type DevicesConfig struct {
	AID   string `toml:"a_id"`
	AName string `toml:"a_name"`
	BID   string `toml:"b_id"`
	BName string `toml:"b_name"`
}

// LinkConfig holds synchronization parameters.
type LinkConfig struct {
	Enabled          bool     `toml:"enabled"`           // Initial link state
	PollInterval     Duration `toml:"poll_interval"`     // Idle delay between ticks
	RecoveryInterval Duration `toml:"recovery_interval"` // Backoff while a device is unavailable
	Tolerance        float64  `toml:"tolerance"`         // Absolute volume difference treated as no change
}

// JournalConfig holds sync event journal settings.
type JournalConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"` // Entries kept on prune (0 = unlimited)
}

// AutostartConfig holds auto-start settings.
type AutostartConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Link: LinkConfig{
			Enabled:          true,
			PollInterval:     Duration(100 * time.Millisecond),
			RecoveryInterval: Duration(500 * time.Millisecond),
			Tolerance:        0.001,
		},
		Journal: JournalConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Autostart: AutostartConfig{
			Enabled: false,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "volink", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "volink")
}

// JournalPath returns the path to the sync event journal file.
func JournalPath() string {
	return filepath.Join(DataPath(), "journal.jsonl")
}

// StatePath returns the path to the shared runtime state file.
func StatePath() string {
	return filepath.Join(DataPath(), "state.json")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return fmt.Errorf("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}

// Load loads configuration from the specified path. If path is empty, the
// default config path is used. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path atomically, creating
// parent directories if needed. If path is empty, the default path is used.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Link.PollInterval.Duration() <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.Link.PollInterval.Duration())
	}
	if c.Link.RecoveryInterval.Duration() <= 0 {
		return fmt.Errorf("recovery_interval must be positive, got %s", c.Link.RecoveryInterval.Duration())
	}
	if c.Link.Tolerance < 0 || c.Link.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in [0, 1), got %g", c.Link.Tolerance)
	}
	if c.Journal.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative, got %d", c.Journal.MaxEntries)
	}
	return nil
}

// HasDevicePair reports whether both device slots are configured.
func (c *Config) HasDevicePair() bool {
	return c.Devices.AID != "" && c.Devices.BID != ""
}

// SetDevicePair stores the selected device pair.
func (c *Config) SetDevicePair(aID, aName, bID, bName string) {
	c.Devices.AID = aID
	c.Devices.AName = aName
	c.Devices.BID = bID
	c.Devices.BName = bName
}
