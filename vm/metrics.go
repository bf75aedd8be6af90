// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	txsSubmitted prometheus.Counter
	txsAccepted  prometheus.Counter
	txsFailed    prometheus.Counter
	queries      prometheus.Counter
	stateChanges prometheus.Counter
	txExecute    metric.Averager
}

func newMetrics(r prometheus.Registerer) (*Metrics, error) {
	txExecute, err := metric.NewAverager(
		"",
		"vm_tx_execute",
		"time spent executing a transaction",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_submitted",
			Help:      "number of txs submitted to vm",
		}),
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_accepted",
			Help:      "number of txs whose changes were committed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "txs_failed",
			Help:      "number of txs that were rejected or failed during execution",
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "queries",
			Help:      "number of read-only calls",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "state_changes",
			Help:      "number of state changes committed",
		}),
		txExecute: txExecute,
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsAccepted),
		r.Register(m.txsFailed),
		r.Register(m.queries),
		r.Register(m.stateChanges),
	)
	return m, errs.Err
}
