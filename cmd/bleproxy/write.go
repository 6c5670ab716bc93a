package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <uuid> <hex-data>",
	Short: "Write a value to a characteristic",
	Long: `Writes data to a BLE characteristic. Data is given as a hex string.

Examples:
  # Write with response (default)
  bleproxy write 6e400002-b5a3-f393-e0a9-e50e24dcca9e 48656c6c6f

  # Write without response
  bleproxy write 6e400002-b5a3-f393-e0a9-e50e24dcca9e 48656c6c6f --no-response`,
	Args: cobra.ExactArgs(2),
	RunE: runWrite,
}

var (
	writeAddress    string
	writeNoResponse bool
)

func init() {
	writeCmd.Flags().StringVar(&writeAddress, "address", "", "Peripheral address (default: the loaded layout's peripheral)")
	writeCmd.Flags().BoolVar(&writeNoResponse, "no-response", false, "Write without response")
}

func runWrite(cmd *cobra.Command, args []string) error {
	uuid := args[0]
	data, err := hex.DecodeString(strings.TrimPrefix(args[1], "0x"))
	if err != nil {
		return fmt.Errorf("invalid hex data %q: %w", args[1], err)
	}

	return withSession(cmd, writeAddress, func(ctx context.Context, t *target) error {
		profile, err := t.session.GetServices(ctx, t.cacheFile != "")
		if err != nil {
			return err
		}

		ch := profile.FindCharacteristicByUUID(uuid)
		if ch == nil {
			return fmt.Errorf("characteristic %s not found", uuid)
		}
		if writeNoResponse && len(data) > ch.MaxWriteWithoutResponse {
			return fmt.Errorf("payload of %d bytes exceeds the %d byte write-without-response limit",
				len(data), ch.MaxWriteWithoutResponse)
		}

		if err := t.session.WriteCharacteristic(ctx, ch, data, !writeNoResponse); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), ch.UUID)
		return nil
	})
}
