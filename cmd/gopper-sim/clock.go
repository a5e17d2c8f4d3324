package main

import (
	"fmt"
	"sort"
	"syscall"
	"time"

	"gopper-sim/hosttime"

	"github.com/moby/sys/signal"
	"github.com/spf13/cobra"
)

func newClockCommand(opts *options) *cobra.Command {
	var (
		samples  int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Print wall and monotonic host time samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd.Flags())
			if err != nil {
				return err
			}
			b, err := newBridge(s)
			if err != nil {
				return err
			}
			defer b.Close()

			fmt.Printf("epoch: %d\n", b.Epoch())
			for i := 0; i < samples; i++ {
				if i > 0 {
					b.Sleep(uint64(interval))
				}
				mono := b.Now(hosttime.Monotonic)
				wall := b.Now(hosttime.Wall)
				fmt.Printf("monotonic=%-12d wall=%d offset=%d\n", mono, wall, wall-mono)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&samples, "samples", "n", 1, "Number of samples")
	flags.DurationVar(&interval, "interval", 100*time.Millisecond, "Sleep between samples")
	return cmd
}

func newIRQCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "irq",
		Short: "Print the timer IRQ number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd.Flags())
			if err != nil {
				return err
			}
			b, err := newBridge(s)
			if err != nil {
				return err
			}
			defer b.Close()

			fmt.Printf("irq: %d (SIG%s)\n", int(b.IRQ()), signalName(b.IRQ()))
			return nil
		},
	}
}

// signalName returns the alphabetically first name for sig, so aliases such
// as IOT/ABRT print the same way every time
func signalName(sig syscall.Signal) string {
	names := make([]string, 0, len(signal.SignalMap))
	for name := range signal.SignalMap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if signal.SignalMap[name] == sig {
			return name
		}
	}
	return sig.String()
}
