package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// pairCmd represents the pair command
var pairCmd = &cobra.Command{
	Use:   "pair [device-address]",
	Short: "Pair with the peripheral",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapabilityOp(cmd, args, "pair", func(ctx context.Context, t *target) (bool, error) {
			return t.session.Pair(ctx)
		})
	},
}

// unpairCmd represents the unpair command
var unpairCmd = &cobra.Command{
	Use:   "unpair [device-address]",
	Short: "Remove the pairing with the peripheral",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapabilityOp(cmd, args, "unpair", func(ctx context.Context, t *target) (bool, error) {
			return t.session.Unpair(ctx)
		})
	},
}

// clearCacheCmd represents the clear-cache command
var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache [device-address]",
	Short: "Clear the cached GATT topology, locally and on the proxy",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapabilityOp(cmd, args, "clear-cache", func(ctx context.Context, t *target) (bool, error) {
			return t.session.ClearCache(ctx)
		})
	},
}

func runCapabilityOp(cmd *cobra.Command, args []string, name string,
	fn func(ctx context.Context, t *target) (bool, error)) error {

	var address string
	if len(args) == 1 {
		address = args[0]
	}

	return withSession(cmd, address, func(ctx context.Context, t *target) error {
		ok, err := fn(ctx, t)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s failed, see the proxy logs for the reported code", name)
		}
		fmt.Printf("%s succeeded\n", name)
		return nil
	})
}
