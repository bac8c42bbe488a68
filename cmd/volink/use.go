package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform"
	"github.com/jmsalzman/volink/internal/store"
)

var useOpts struct {
	byID bool
}

var useCmd = &cobra.Command{
	Use:   "use <device-a> <device-b>",
	Short: "Select the device pair to link",
	Long: `Select the two devices whose volumes should be kept in lockstep.

Devices are matched by display name (case-insensitive). Use --by-id to
match on device IDs instead. The selection is persisted to both the
config file and the shared state file, so a running daemon picks it up
without a restart.

Examples:
  volink use Speakers Headphones
  volink use --by-id alsa_output.pci-0000_00_1f.3 bluez_output.AA_BB`,
	Args: cobra.ExactArgs(2),
	RunE: runUse,
}

func init() {
	rootCmd.AddCommand(useCmd)

	useCmd.Flags().BoolVar(&useOpts.byID, "by-id", false,
		"Match arguments against device IDs instead of names")
}

func runUse(cmd *cobra.Command, args []string) error {
	plat, err := platform.New(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize audio backend: %w", err)
	}

	a := resolveArg(plat, args[0])
	if a == nil {
		return fmt.Errorf("no device matches %q", args[0])
	}
	b := resolveArg(plat, args[1])
	if b == nil {
		return fmt.Errorf("no device matches %q", args[1])
	}
	if a.ID() == b.ID() {
		return fmt.Errorf("both arguments resolve to the same device %q", a.Name())
	}

	return persistPair(a.ID(), a.Name(), b.ID(), b.Name())
}

// resolveArg resolves one CLI argument to an endpoint, honoring --by-id.
func resolveArg(plat device.Platform, arg string) *device.Endpoint {
	if useOpts.byID {
		return device.ResolveByID(plat, arg, logger)
	}
	return device.ResolveByName(plat, arg, logger)
}

// persistPair writes the selected pair to the config file and the shared
// state file. Shared between 'use' and 'pick'.
func persistPair(aID, aName, bID, bName string) error {
	c := getConfig()
	c.SetDevicePair(aID, aName, bID, bName)
	if err := c.Save(configPath()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	state, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	state.SetDevicePair(aID, aName, bID, bName, "cli")
	if err := store.Save(state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	fmt.Printf("Linking %s <-> %s\n", displayName(aName, aID), displayName(bName, bID))
	return nil
}

func displayName(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}
