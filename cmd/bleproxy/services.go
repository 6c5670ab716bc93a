package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srg/bleproxy/pkg/gatt"
)

// servicesCmd represents the services command
var servicesCmd = &cobra.Command{
	Use:   "services [device-address]",
	Short: "Enumerate GATT services, characteristics, and descriptors",
	Long: `Connects to the peripheral and prints its full GATT topology.

Examples:
  # Enumerate the built-in demo peripheral
  bleproxy services

  # Enumerate a peripheral from a layout file
  bleproxy services --layout peripheral.yaml

  # JSON output
  bleproxy services --format json

  # Reuse a persistent services cache between runs
  bleproxy services --cache-file ~/.bleproxy-cache.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServices,
}

var servicesFormat string

func init() {
	servicesCmd.Flags().StringVar(&servicesFormat, "format", "table", "Output format: table or json")
}

func runServices(cmd *cobra.Command, args []string) error {
	if servicesFormat != "table" && servicesFormat != "json" {
		return fmt.Errorf("invalid format %q: use table or json", servicesFormat)
	}

	var address string
	if len(args) == 1 {
		address = args[0]
	}

	return withSession(cmd, address, func(ctx context.Context, t *target) error {
		format := servicesFormat
		if !cmd.Flags().Changed("format") && t.cfg.OutputFormat != "" {
			format = t.cfg.OutputFormat
		}

		profile, err := t.session.GetServices(ctx, t.cacheFile != "")
		if err != nil {
			return err
		}

		if format == "json" {
			return printProfileJSON(profile)
		}
		printProfileTable(t.address, t.session.MTUSize(), profile)
		return nil
	})
}

func printProfileJSON(profile *gatt.Profile) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printProfileTable(address string, mtu int, profile *gatt.Profile) {
	// Color only when stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	svcColor := color.New(color.FgCyan, color.Bold)
	charColor := color.New(color.FgGreen)
	propColor := color.New(color.FgYellow)
	dimColor := color.New(color.Faint)

	fmt.Printf("Device %s (MTU %d)\n", address, mtu)
	for _, svc := range profile.Services {
		svcColor.Printf("service %s", svc.UUID)
		dimColor.Printf("  handle=%d\n", svc.Handle)
		for _, ch := range svc.Characteristics {
			fmt.Print("  ")
			charColor.Printf("char %s", ch.UUID)
			dimColor.Printf("  handle=%d", ch.Handle)
			fmt.Print("  [")
			propColor.Print(ch.Property.String())
			fmt.Println("]")
			for _, d := range ch.Descriptors {
				fmt.Print("    ")
				dimColor.Printf("desc %s  handle=%d\n", d.UUID, d.Handle)
			}
		}
	}
}
