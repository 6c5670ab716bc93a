package main

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/bleproxy/internal/groutine"
	"github.com/srg/bleproxy/internal/ringchan"
	"github.com/srg/bleproxy/pkg/gatt"
)

// subscribeCmd represents the subscribe command
var subscribeCmd = &cobra.Command{
	Use:   "subscribe <uuid>",
	Short: "Subscribe to characteristic notifications",
	Long: `Subscribes to BLE characteristic notifications and outputs received data.

The simulated proxy generates a notification per --sim-rate interval with an
incrementing counter payload.

Examples:
  # Subscribe to battery level updates
  bleproxy subscribe 2a19

  # Hex output, faster simulated traffic
  bleproxy subscribe 2a19 --hex --sim-rate 250ms`,
	Args: cobra.ExactArgs(1),
	RunE: runSubscribe,
}

var (
	subscribeAddress string
	subscribeHex     bool
	subscribeSimRate time.Duration
)

func init() {
	subscribeCmd.Flags().StringVar(&subscribeAddress, "address", "", "Peripheral address (default: the loaded layout's peripheral)")
	subscribeCmd.Flags().BoolVar(&subscribeHex, "hex", false, "Output as hex string; raw bytes by default")
	subscribeCmd.Flags().DurationVar(&subscribeSimRate, "sim-rate", time.Second, "Interval between simulated notifications")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	uuid := args[0]

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	cmd.SetContext(ctx)

	return withSession(cmd, subscribeAddress, func(ctx context.Context, t *target) error {
		profile, err := t.session.GetServices(ctx, t.cacheFile != "")
		if err != nil {
			return err
		}
		ch := profile.FindCharacteristicByUUID(uuid)
		if ch == nil {
			return fmt.Errorf("characteristic %s not found", uuid)
		}

		// Drop-oldest buffer between the delivery path and stdout, so a
		// burst never blocks the transport callback.
		buf := ringchan.New[[]byte](64)

		if err := t.session.StartNotify(ctx, ch, func(data []byte) {
			buf.Send(data)
		}); err != nil {
			return err
		}
		defer func() {
			if err := t.session.StopNotify(context.WithoutCancel(ctx), ch); err != nil {
				t.logger.WithError(err).Warn("Failed to stop notifications")
			}
		}()

		fmt.Fprintf(os.Stderr, "Subscribed to %s. Press Ctrl+C to stop...\n", ch.UUID)

		// Simulated peripheral traffic
		address, handle := t.address, ch.Handle
		groutine.Go(ctx, "sim-notifier", func(ctx context.Context) {
			ticker := time.NewTicker(subscribeSimRate)
			defer ticker.Stop()
			var counter uint32
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					counter++
					payload := make([]byte, 4)
					binary.LittleEndian.PutUint32(payload, counter)
					addr, _ := gatt.MACToInt(address)
					t.proxy.Notify(addr, handle, payload)
				}
			}
		})

		for {
			select {
			case <-ctx.Done():
				if dropped := buf.Dropped(); dropped > 0 {
					fmt.Fprintf(os.Stderr, "Dropped %d notifications\n", dropped)
				}
				return nil
			case data := <-buf.C():
				if subscribeHex {
					fmt.Println(hex.EncodeToString(data))
				} else {
					_, _ = os.Stdout.Write(data)
					fmt.Println()
				}
			}
		}
	})
}
