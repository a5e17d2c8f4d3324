package core

import "github.com/prometheus/client_golang/prometheus"

// Metrics observes the timer runtime
type Metrics struct {
	IRQs       prometheus.Counter
	Dispatched prometheus.Counter
	ArmErrors  prometheus.Counter
	Lateness   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IRQs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gopper_sim",
			Name:      "irq_total",
			Help:      "Total number of timer IRQs delivered.",
		}),
		Dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gopper_sim",
			Name:      "timer_dispatch_total",
			Help:      "Total number of timer handlers run.",
		}),
		ArmErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gopper_sim",
			Name:      "timer_arm_errors_total",
			Help:      "Total number of failed host timer arm calls.",
		}),
		Lateness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gopper_sim",
			Name:      "irq_lateness_seconds",
			Help:      "Delay between the armed deadline and IRQ delivery.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.IRQs, m.Dispatched, m.ArmErrors, m.Lateness)
	}
	return m
}
