// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "state_db"
	metricsInterval = 10 * time.Second
)

type metrics struct {
	getLatency metric.Averager
	writeStall metric.Averager
	stallStart time.Time

	reads   prometheus.Counter
	misses  prometheus.Counter
	writes  prometheus.Counter
	deletes prometheus.Counter

	// labelled by the level compacted from, "l0" or "lbase"
	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	diskUsage      prometheus.Gauge
	tombstoneCount prometheus.Gauge
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// newMetrics registers the database metrics on a registry of their own so
// they can be gathered next to the vm metrics.
func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	getLatency, err := metric.NewAverager("", namespace+"_get_latency", "time spent waiting for a get", r)
	if err != nil {
		return nil, nil, err
	}
	writeStall, err := metric.NewAverager("", namespace+"_write_stall", "time writes were stalled by compaction", r)
	if err != nil {
		return nil, nil, err
	}

	m := &metrics{
		getLatency: getLatency,
		writeStall: writeStall,
		reads:      newCounter("reads", "number of gets"),
		misses:     newCounter("misses", "number of gets for a missing key"),
		writes:     newCounter("writes", "number of puts"),
		deletes:    newCounter("deletes", "number of deletes"),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions started",
		}, []string{"level"}),
		activeCompactions: newGauge("active_compactions", "number of running compactions"),
		diskUsage:         newGauge("disk_usage", "bytes used on disk"),
		tombstoneCount:    newGauge("tombstone_count", "approximate count of internal tombstones"),
	}
	errs := wrappers.Errs{}
	for _, c := range []prometheus.Collector{
		m.reads,
		m.misses,
		m.writes,
		m.deletes,
		m.compactions,
		m.activeCompactions,
		m.diskUsage,
		m.tombstoneCount,
	} {
		errs.Add(r.Register(c))
	}
	return r, m, errs.Err
}

func (db *Database) listener() *pebble.EventListener {
	return &pebble.EventListener{
		CompactionBegin: func(info pebble.CompactionInfo) {
			level := "lbase"
			if len(info.Input) > 0 && info.Input[0].Level == 0 {
				level = "l0"
			}
			db.metrics.compactions.WithLabelValues(level).Inc()
			db.metrics.activeCompactions.Inc()
		},
		CompactionEnd: func(pebble.CompactionInfo) {
			db.metrics.activeCompactions.Dec()
		},
		WriteStallBegin: func(pebble.WriteStallBeginInfo) {
			db.metrics.stallStart = time.Now()
		},
		WriteStallEnd: func() {
			db.metrics.writeStall.Observe(float64(time.Since(db.metrics.stallStart)))
		},
	}
}

// pollMetrics samples the gauges pebble only exposes on demand until the
// database is closed.
func (db *Database) pollMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			m := db.db.Metrics()
			db.metrics.diskUsage.Set(float64(m.DiskSpaceUsage()))
			db.metrics.tombstoneCount.Set(float64(m.Keys.TombstoneCount))
		case <-db.closing:
			return
		}
	}
}
