package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"gopper-sim/config"
	"gopper-sim/core"
	"gopper-sim/hosttime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// reportInterval is how often, in virtual time, progress is logged
const reportInterval = uint64(time.Second)

func newRunCommand(opts *options) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a periodic timer on the simulated MCU clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd.Flags())
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if duration > 0 {
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return runSim(ctx, s)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&opts.tick, "tick", 0, "Periodic timer interval (overrides the config file)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

func runSim(ctx context.Context, s *config.Settings) error {
	b, err := newBridge(s)
	if err != nil {
		return err
	}
	defer b.Close()

	log := logrus.WithField("cmd", "run")
	reg := prometheus.NewRegistry()
	metrics := core.NewMetrics(reg)
	clock := core.NewClock(b, s.TimerFreq)
	sched := core.NewScheduler(clock, core.SchedulerConfig{
		Metrics: metrics,
		Logger:  log,
	})

	if s.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              s.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer srv.Close()
	}

	line := core.ListenIRQ(b.IRQ())
	irqDone := make(chan struct{})
	go func() {
		defer close(irqDone)
		_ = line.Run(ctx, func() {
			if err := sched.HandleIRQ(); err != nil {
				log.WithError(err).Warn("timer dispatch failed")
			}
		})
	}()

	period := clock.NanosToTicks(uint64(s.TickInterval))
	if period == 0 {
		period = 1
	}
	var ticks atomic.Uint64
	periodic := &core.Timer{
		WakeTime: clock.Uptime() + period,
		Handler: func(t *core.Timer) uint8 {
			ticks.Add(1)
			t.WakeTime += period
			return core.SF_RESCHEDULE
		},
	}
	if err := sched.Add(periodic); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"irq":    int(b.IRQ()),
		"freq":   clock.Freq(),
		"period": period,
	}).Info("simulation started")

	// The reporter sleeps on virtual time, so it may outlive ctx by up to one
	// interval; it only reads clocks and never touches the timer.
	go func() {
		for next := reportInterval; ; next += reportInterval {
			b.SleepUntil(next)
			if ctx.Err() != nil {
				return
			}
			log.WithFields(logrus.Fields{
				"virtual": time.Duration(b.Now(hosttime.Monotonic)),
				"uptime":  clock.Uptime(),
				"ticks":   ticks.Load(),
			}).Info("progress")
		}
	}()

	<-ctx.Done()
	<-irqDone

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		for _, e := range sched.Trace().Events() {
			log.Debug(e.String())
		}
	}
	log.WithField("ticks", ticks.Load()).Info("simulation stopped")
	return nil
}
