package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform"
	"github.com/jmsalzman/volink/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick the device pair interactively",
	Long: `Pick the two devices to link from an interactive list.

The first selection fills slot A, the second fills slot B. Press Esc to
leave without changing the current pair.`,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	plat, err := platform.New(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize audio backend: %w", err)
	}

	candidates := device.OutputDevices(plat)
	sel, err := tui.Run(candidates)
	if err != nil {
		return err
	}
	if sel == nil {
		fmt.Println("Selection cancelled, device pair unchanged.")
		return nil
	}

	return persistPair(sel.A.ID, sel.A.Name, sel.B.ID, sel.B.Name)
}
