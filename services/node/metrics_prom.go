//go:build !tinygo

package node

import "github.com/prometheus/client_golang/prometheus"

// NewMetrics creates the loop counters and registers them on reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sensornode",
			Subsystem: "loop",
			Name:      name,
			Help:      help,
		})
	}
	ticks := counter("ticks_total", "Loop ticks run")
	sweeps := counter("status_sweeps_total", "Status sweeps run")
	readings := counter("bundles_total", "Measurement bundles read from sensors")
	halts := counter("fatal_halts_total", "Entries into the fatal halt state")
	if reg != nil {
		reg.MustRegister(ticks, sweeps, readings, halts)
	}
	return &Metrics{Ticks: ticks, Sweeps: sweeps, Readings: readings, FatalHalts: halts}
}
