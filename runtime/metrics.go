// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	programLabel  = "program"
	functionLabel = "function"
)

type metrics struct {
	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	latency, err := metric.NewAverager(
		"",
		"runtime_call_latency",
		"time spent executing a program function",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		latency: latency,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "calls",
			Help:      "number of program functions invoked",
		}, []string{programLabel, functionLabel}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "failures",
			Help:      "number of program functions that returned an error",
		}, []string{programLabel, functionLabel}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.calls),
		r.Register(m.failures),
	)
	return m, errs.Err
}
