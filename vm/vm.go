// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm hosts deployed programs on a single state database. Every
// transaction and query runs alone, in arrival order.
package vm

import (
	"context"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ava-labs/incrementer/actions"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
	"github.com/ava-labs/incrementer/storage"
)

type VM struct {
	log     logging.Logger
	tracer  trace.Tracer
	metrics *Metrics
	rt      *runtime.Runtime

	db    state.Database
	state state.Mutable

	// serializes access to [state]
	lock sync.Mutex
}

func New(
	log logging.Logger,
	tracer trace.Tracer,
	db state.Database,
	cfg *runtime.Config,
	registerer prometheus.Registerer,
	programs ...*runtime.Program,
) (*VM, error) {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	rt, err := runtime.NewRuntime(cfg, log, storage.ProgramStore{}, tracer, registerer)
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		if err := rt.Register(p); err != nil {
			return nil, err
		}
	}
	return &VM{
		log:     log,
		tracer:  tracer,
		metrics: m,
		rt:      rt,
		db:      db,
		state:   state.NewDatabaseMutable(db),
	}, nil
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

func (vm *VM) Tracer() trace.Tracer {
	return vm.tracer
}

func (vm *VM) Runtime() *runtime.Runtime {
	return vm.rt
}

// Programs returns the names of programs that can be deployed.
func (vm *VM) Programs() []string {
	return vm.rt.Programs()
}

// ABI returns the interface of the registered program [name].
func (vm *VM) ABI(name string) (runtime.ABI, error) {
	return vm.rt.ABI(name)
}

// ProgramABI returns the interface of the program deployed at [program].
func (vm *VM) ProgramABI(ctx context.Context, program codec.Address) (runtime.ABI, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.rt.ProgramABI(ctx, vm.state, program)
}

// Submit verifies and executes [tx]. Its changes are committed only if it
// succeeds.
func (vm *VM) Submit(ctx context.Context, tx *actions.Transaction) (ids.ID, []byte, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Submit")
	defer span.End()

	vm.lock.Lock()
	defer vm.lock.Unlock()

	vm.metrics.txsSubmitted.Inc()
	start := time.Now()
	buffer := state.NewSimpleMutable(vm.state)
	txID, output, err := tx.Execute(ctx, vm.rt, buffer)
	vm.metrics.txExecute.Observe(float64(time.Since(start)))
	if err != nil {
		vm.metrics.txsFailed.Inc()
		vm.log.Debug("transaction failed",
			zap.Stringer("txID", txID),
			zap.Error(err),
		)
		return txID, nil, err
	}

	changes := buffer.Len()
	if err := buffer.Commit(ctx); err != nil {
		vm.metrics.txsFailed.Inc()
		return txID, nil, err
	}
	vm.metrics.txsAccepted.Inc()
	vm.metrics.stateChanges.Add(float64(changes))
	span.SetAttributes(attribute.String("txID", txID.String()))
	vm.log.Debug("transaction accepted",
		zap.Stringer("txID", txID),
		zap.Stringer("actor", tx.Auth.Actor()),
		zap.Int("changes", changes),
	)
	return txID, output, nil
}

// Query calls [function] on [program] as [actor] without a signature. Any
// writes the function makes are discarded.
func (vm *VM) Query(
	ctx context.Context,
	actor codec.Address,
	program codec.Address,
	function string,
	params []byte,
) ([]byte, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Query", oteltrace.WithAttributes(
		attribute.String("program", program.String()),
		attribute.String("function", function),
	))
	defer span.End()

	vm.lock.Lock()
	defer vm.lock.Unlock()

	vm.metrics.queries.Inc()
	buffer := state.NewSimpleMutable(vm.state)
	defer buffer.Discard()

	return vm.rt.CallProgram(ctx, &runtime.CallInfo{
		State:        buffer,
		Actor:        actor,
		Program:      program,
		FunctionName: function,
		Params:       params,
	})
}

// Shutdown closes the underlying database.
func (vm *VM) Shutdown() error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.db.Close()
}
