// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/state"
)

// ProgramLoader knows where deployed programs live in state.
type ProgramLoader interface {
	// GetProgramName returns the name of the registered program deployed at
	// [program], or ErrProgramNotDeployed.
	GetProgramName(ctx context.Context, im state.Immutable, program codec.Address) (string, error)
	// ProgramState scopes [mu] to the storage owned by [program].
	ProgramState(program codec.Address, mu state.Mutable) state.Mutable
	// Instantiated reports whether a constructor already ran for [program].
	Instantiated(ctx context.Context, im state.Immutable, program codec.Address) (bool, error)
	// SetInstantiated records that a constructor ran for [program].
	SetInstantiated(ctx context.Context, mu state.Mutable, program codec.Address) error
}

type CallInfo struct {
	// State the call reads from. Writes reach it only if the call succeeds.
	State state.Mutable
	// Actor is the caller identity passed to the program.
	Actor codec.Address
	// Program is the account of the deployed program.
	Program      codec.Address
	FunctionName string
	Params       []byte
}

// Runtime executes registered programs. Invocations on a Runtime are
// serialized: each one runs to completion before the next begins.
type Runtime struct {
	log     logging.Logger
	cfg     *Config
	tracer  trace.Tracer
	metrics *metrics
	loader  ProgramLoader

	lock     sync.Mutex
	programs map[string]*Program
}

func NewRuntime(
	cfg *Config,
	log logging.Logger,
	loader ProgramLoader,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
) (*Runtime, error) {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		log:      log,
		cfg:      cfg,
		tracer:   tracer,
		metrics:  m,
		loader:   loader,
		programs: make(map[string]*Program),
	}, nil
}

// Register makes [p] available for deployment under its name.
func (r *Runtime) Register(p *Program) error {
	if p.err != nil {
		return p.err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.programs[p.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProgram, p.name)
	}
	r.programs[p.name] = p
	r.log.Debug("registered program",
		zap.String("program", p.name),
		zap.Int("methods", len(p.methods)),
	)
	return nil
}

// Programs returns the sorted names of registered programs.
func (r *Runtime) Programs() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	names := maps.Keys(r.programs)
	slices.Sort(names)
	return names
}

// Registered reports whether a program called [name] is registered.
func (r *Runtime) Registered(name string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, ok := r.programs[name]
	return ok
}

// ABI returns the interface of the registered program [name].
func (r *Runtime) ABI(name string) (ABI, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, ok := r.programs[name]
	if !ok {
		return ABI{}, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
	}
	return p.ABI(), nil
}

// ProgramABI returns the interface of the program deployed at [program].
func (r *Runtime) ProgramABI(ctx context.Context, im state.Immutable, program codec.Address) (ABI, error) {
	name, err := r.loader.GetProgramName(ctx, im, program)
	if err != nil {
		return ABI{}, err
	}
	return r.ABI(name)
}

// Instantiate runs a constructor of the program deployed at
// [callInfo.Program]. A program is constructed at most once, later calls
// return ErrAlreadyInstantiated.
func (r *Runtime) Instantiate(ctx context.Context, callInfo *CallInfo) ([]byte, error) {
	return r.call(ctx, callInfo, true)
}

// CallProgram runs a message of the program deployed at [callInfo.Program].
func (r *Runtime) CallProgram(ctx context.Context, callInfo *CallInfo) ([]byte, error) {
	return r.call(ctx, callInfo, false)
}

func (r *Runtime) call(ctx context.Context, callInfo *CallInfo, constructor bool) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "Runtime.call", oteltrace.WithAttributes(
		attribute.String("program", callInfo.Program.String()),
		attribute.String("function", callInfo.FunctionName),
		attribute.Bool("constructor", constructor),
	))
	defer span.End()

	r.lock.Lock()
	defer r.lock.Unlock()

	if len(callInfo.Params) > r.cfg.MaxParamsSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrParamsTooLarge, len(callInfo.Params), r.cfg.MaxParamsSize)
	}

	name, err := r.loader.GetProgramName(ctx, callInfo.State, callInfo.Program)
	if err != nil {
		return nil, err
	}
	program, ok := r.programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
	}
	method, err := program.method(callInfo.FunctionName)
	if err != nil {
		return nil, err
	}
	switch {
	case constructor && !method.Constructor:
		return nil, fmt.Errorf("%w: %s.%s", ErrNotConstructor, name, method.Name)
	case !constructor && method.Constructor:
		return nil, fmt.Errorf("%w: %s.%s", ErrNotMessage, name, method.Name)
	}

	// writes are buffered so a failed call leaves no trace in state
	buffer := state.NewSimpleMutable(callInfo.State)
	if constructor {
		instantiated, err := r.loader.Instantiated(ctx, callInfo.State, callInfo.Program)
		if err != nil {
			return nil, err
		}
		if instantiated {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInstantiated, callInfo.Program)
		}
		if err := r.loader.SetInstantiated(ctx, buffer, callInfo.Program); err != nil {
			return nil, err
		}
	}
	env := &Context{
		Actor:   callInfo.Actor,
		Program: callInfo.Program,
		State:   r.loader.ProgramState(callInfo.Program, buffer),
		Log:     r.log,
	}

	r.metrics.calls.WithLabelValues(name, method.Name).Inc()
	start := time.Now()
	result, err := invoke(ctx, method.handler, env, callInfo.Params)
	r.metrics.latency.Observe(float64(time.Since(start)))
	if err != nil {
		r.metrics.failures.WithLabelValues(name, method.Name).Inc()
		r.log.Debug("program call failed",
			zap.String("program", name),
			zap.String("function", method.Name),
			zap.Stringer("actor", callInfo.Actor),
			zap.Error(err),
		)
		return nil, err
	}
	if len(result) > r.cfg.MaxResultSize {
		r.metrics.failures.WithLabelValues(name, method.Name).Inc()
		return nil, fmt.Errorf("%w: %d > %d", ErrResultTooLarge, len(result), r.cfg.MaxResultSize)
	}

	writes := buffer.Len()
	if err := buffer.Commit(ctx); err != nil {
		return nil, err
	}
	r.log.Debug("program call",
		zap.String("program", name),
		zap.String("function", method.Name),
		zap.Stringer("actor", callInfo.Actor),
		zap.Int("writes", writes),
	)
	return result, nil
}

// invoke converts a panicking program function into an error so the host
// keeps running.
func invoke(ctx context.Context, f Function, env *Context, params []byte) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrProgramPanic, r)
		}
	}()
	return f(ctx, env, params)
}
