package main

import (
	"fmt"
	"os"
	"time"

	"gopper-sim/config"
	"gopper-sim/hosttime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	configFile  string
	logLevel    string
	tick        time.Duration
	metricsAddr string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "gopper-sim",
		Short:         "Run the Gopper timer runtime on host time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a TOML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides the config file)")

	cmd.AddCommand(
		newRunCommand(opts),
		newClockCommand(opts),
		newIRQCommand(opts),
	)
	return cmd
}

// settings loads the config file, applies flags that were set and configures
// the global logger
func (o *options) settings(flags *pflag.FlagSet) (*config.Settings, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("tick") {
		cfg.TickInterval = o.tick.String()
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}

	s, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(s.LogLevel)
	return s, nil
}

func newBridge(s *config.Settings) (*hosttime.Bridge, error) {
	guard := s.SleepGuard
	if guard == 0 {
		guard = hosttime.NoSleepGuard
	}
	b, err := hosttime.New(hosttime.Config{
		SleepGuard: guard,
		Signal:     s.IRQSignal,
		Logger:     logrus.WithField("cmd", "gopper-sim"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize host timer")
	}
	return b, nil
}
