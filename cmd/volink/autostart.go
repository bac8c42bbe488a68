package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmsalzman/volink/internal/autostart"
)

// autostartCmd represents the autostart command group.
var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage launching volinkd at login",
	Long: `Manage launching volinkd automatically at login.

On Linux this installs an XDG autostart desktop entry; on Windows it
registers a Run key for the current user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return autostartStatusRun(cmd, args)
	},
}

var autostartOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable autostart",
	RunE:  autostartOnRun,
}

var autostartOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable autostart",
	RunE:  autostartOffRun,
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show autostart status",
	RunE:  autostartStatusRun,
}

func init() {
	autostartCmd.AddCommand(autostartOnCmd)
	autostartCmd.AddCommand(autostartOffCmd)
	autostartCmd.AddCommand(autostartStatusCmd)
	rootCmd.AddCommand(autostartCmd)
}

func autostartOnRun(cmd *cobra.Command, args []string) error {
	if err := autostart.Enable(); err != nil {
		return fmt.Errorf("failed to enable autostart: %w", err)
	}

	c := getConfig()
	c.Autostart.Enabled = true
	if err := c.Save(configPath()); err != nil {
		logger.Warn("autostart enabled but config save failed", "error", err)
	}

	fmt.Println("Autostart: enabled")
	return nil
}

func autostartOffRun(cmd *cobra.Command, args []string) error {
	if err := autostart.Disable(); err != nil {
		return fmt.Errorf("failed to disable autostart: %w", err)
	}

	c := getConfig()
	c.Autostart.Enabled = false
	if err := c.Save(configPath()); err != nil {
		logger.Warn("autostart disabled but config save failed", "error", err)
	}

	fmt.Println("Autostart: disabled")
	return nil
}

func autostartStatusRun(cmd *cobra.Command, args []string) error {
	enabled, err := autostart.Enabled()
	if err != nil {
		return fmt.Errorf("failed to check autostart: %w", err)
	}

	if enabled {
		fmt.Println("Autostart: enabled")
	} else {
		fmt.Println("Autostart: disabled")
	}

	// Flag drift between the installed entry and the config file.
	if c := getConfig(); c != nil && c.Autostart.Enabled != enabled {
		fmt.Printf("Note: config file says %v; run 'volink autostart %s' to reconcile\n",
			c.Autostart.Enabled, onOff(c.Autostart.Enabled))
	}

	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
