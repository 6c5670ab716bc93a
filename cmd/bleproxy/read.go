package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/bleproxy/pkg/gatt"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <uuid>",
	Short: "Read a characteristic or descriptor value",
	Long: `Reads data from a BLE characteristic or descriptor.

Examples:
  # Read Battery Level characteristic
  bleproxy read 2a19

  # Output as hex
  bleproxy read 2a19 --hex

  # Read a descriptor by handle
  bleproxy read --desc 6

  # Continuously watch a characteristic (polls every second)
  bleproxy read 2a19 --watch 1s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRead,
}

var (
	readAddress    string
	readDescHandle uint16
	readHex        bool
	readWatch      time.Duration
)

func init() {
	readCmd.Flags().StringVar(&readAddress, "address", "", "Peripheral address (default: the loaded layout's peripheral)")
	readCmd.Flags().Uint16Var(&readDescHandle, "desc", 0, "Descriptor handle (reads descriptor instead of characteristic)")
	readCmd.Flags().BoolVar(&readHex, "hex", false, "Output as hex string (e.g., 'FF01'); raw bytes by default")
	readCmd.Flags().DurationVar(&readWatch, "watch", 0, "Continuously read at interval (e.g., 1s, 500ms)")
}

func runRead(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && readDescHandle == 0 {
		return fmt.Errorf("UUID required: provide as argument or use --desc with a descriptor handle")
	}

	return withSession(cmd, readAddress, func(ctx context.Context, t *target) error {
		readOnce := func() ([]byte, error) {
			if readDescHandle != 0 {
				return t.session.ReadDescriptor(ctx, readDescHandle)
			}
			return t.session.ReadCharacteristic(ctx, gatt.UUIDRef(args[0]))
		}

		data, err := readOnce()
		if err != nil {
			return err
		}
		outputData(data)

		if readWatch == 0 {
			return nil
		}

		fmt.Fprintf(os.Stderr, "Watching (reading every %v). Press Ctrl+C to stop...\n", readWatch)
		ticker := time.NewTicker(readWatch)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				data, err := readOnce()
				if err != nil {
					return err
				}
				outputData(data)
			}
		}
	})
}

// outputData formats and outputs data according to flags
func outputData(data []byte) {
	if readHex {
		fmt.Println(hex.EncodeToString(data))
		return
	}

	// Default: Raw binary output to stdout
	_, _ = os.Stdout.Write(data)
	fmt.Println()
}
