package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmsalzman/volink/internal/device"
	"github.com/jmsalzman/volink/internal/platform"
)

var devicesOpts struct {
	format string
	all    bool
}

// deviceRow is the serializable view of a device for json/yaml output.
type deviceRow struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	VolumeControl bool   `json:"volume_control" yaml:"volume_control"`
	Output        bool   `json:"output" yaml:"output"`
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices",
	Long: `List the audio devices the daemon can link.

By default only output devices with a volume control are shown, with
duplicate display names collapsed. Use --all to list every device the
backend reports.

Examples:
  # List linkable output devices
  volink devices

  # Everything the backend sees, as JSON
  volink devices --all --format json`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().StringVarP(&devicesOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml)")
	devicesCmd.Flags().BoolVar(&devicesOpts.all, "all", false,
		"Include devices without volume control")
}

func runDevices(cmd *cobra.Command, args []string) error {
	plat, err := platform.New(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize audio backend: %w", err)
	}

	var infos []device.DeviceInfo
	if devicesOpts.all {
		infos = plat.Devices()
	} else {
		infos = device.OutputDevices(plat)
	}

	rows := make([]deviceRow, 0, len(infos))
	for _, d := range infos {
		rows = append(rows, deviceRow{
			ID:            d.ID,
			Name:          d.Name,
			VolumeControl: d.HasVolumeControl,
			Output:        d.IsOutput,
		})
	}

	switch devicesOpts.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(rows)
	case "plain":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\n", r.Name, r.ID)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q (plain, json, yaml)", devicesOpts.format)
	}
}
