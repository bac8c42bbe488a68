package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmsalzman/volink/internal/store"
)

var linkOpts struct {
	quiet bool // Suppress output, return exit code only
}

// linkCmd represents the link command group.
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Manage the volume link",
	Long: `Manage the volume link between the selected device pair.

When the link is enabled, volinkd mirrors volume changes between the two
selected devices. When disabled, the daemon keeps running but performs
no reads or writes.

Use 'volink link status' to check the current state.
Use 'volink link on' to enable the link.
Use 'volink link off' to disable the link.
Use 'volink link toggle' to flip it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing status
		return linkStatusRun(cmd, args)
	},
}

// linkOnCmd enables the link.
var linkOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable the volume link",
	Long:  `Enable the volume link. The daemon resumes mirroring volume changes.`,
	RunE:  linkOnRun,
}

// linkOffCmd disables the link.
var linkOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable the volume link",
	Long:  `Disable the volume link. The daemon stays up but stops mirroring.`,
	RunE:  linkOffRun,
}

// linkToggleCmd toggles the link.
var linkToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the volume link",
	Long:  `Toggle the volume link between enabled and disabled.`,
	RunE:  linkToggleRun,
}

// linkStatusCmd shows link status.
var linkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show volume link status",
	Long:  `Show whether the volume link is currently enabled, and which devices are paired.`,
	RunE:  linkStatusRun,
}

func init() {
	// Add subcommands
	linkCmd.AddCommand(linkOnCmd)
	linkCmd.AddCommand(linkOffCmd)
	linkCmd.AddCommand(linkToggleCmd)
	linkCmd.AddCommand(linkStatusCmd)

	// Add flags to all subcommands
	for _, cmd := range []*cobra.Command{linkCmd, linkOnCmd, linkOffCmd, linkToggleCmd, linkStatusCmd} {
		cmd.Flags().BoolVarP(&linkOpts.quiet, "quiet", "q", false,
			"Suppress output, return exit code only (0=on, 1=off)")
	}

	// Add to root
	rootCmd.AddCommand(linkCmd)
}

func linkOnRun(cmd *cobra.Command, args []string) error {
	return setLink(true, "link on")
}

func linkOffRun(cmd *cobra.Command, args []string) error {
	return setLink(false, "link off")
}

func linkToggleRun(cmd *cobra.Command, args []string) error {
	state, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	enabled := state.ToggleLink("link toggle", "cli")
	if err := store.Save(state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	reportLink(enabled)
	return nil
}

func setLink(enabled bool, reason string) error {
	state, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	state.SetLinkEnabled(enabled, reason, "cli")
	if err := store.Save(state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	reportLink(enabled)
	return nil
}

func linkStatusRun(cmd *cobra.Command, args []string) error {
	state, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if linkOpts.quiet {
		if !state.LinkEnabled {
			os.Exit(1)
		}
		return nil
	}

	reportLink(state.LinkEnabled)

	if state.HasDevicePair() {
		fmt.Printf("Devices: %s <-> %s\n",
			displayName(state.DeviceAName, state.DeviceAID),
			displayName(state.DeviceBName, state.DeviceBID))
	} else if cfg.HasDevicePair() {
		fmt.Printf("Devices: %s <-> %s (from config)\n",
			displayName(cfg.Devices.AName, cfg.Devices.AID),
			displayName(cfg.Devices.BName, cfg.Devices.BID))
	} else {
		fmt.Println("Devices: none selected (run 'volink pick')")
	}

	if t := state.LastTransition; t != nil {
		ts := time.Unix(t.Timestamp, 0)
		fmt.Printf("Last change: %s via %s (%s)\n", t.Reason, t.Source, humanize.Time(ts))
	}

	return nil
}

func reportLink(enabled bool) {
	if linkOpts.quiet {
		return
	}
	if enabled {
		fmt.Println("Volume link: enabled")
	} else {
		fmt.Println("Volume link: disabled")
	}
}
