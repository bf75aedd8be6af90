// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package incrementer is a tutorial program holding a shared counter and a
// per-account mapping of integers.
package incrementer

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/contract"
	"github.com/ava-labs/incrementer/runtime"
)

// Incrementer is the storage layout of the program. The cells hold keys only,
// the values live in the state handed over in each runtime.Context.
type Incrementer struct {
	value contract.Value[int32]
	myMap contract.Mapping[codec.Address, int32]
}

func layout() *Incrementer {
	return &Incrementer{
		value: contract.NewValue[int32]("value"),
		myMap: contract.NewMapping[codec.Address, int32]("my_map"),
	}
}

// Load returns the layout without touching state, for use after deployment.
func Load() *Incrementer {
	return layout()
}

// New sets the counter to [initValue] and records a zero entry for the
// deploying account.
func New(ctx context.Context, env *runtime.Context, initValue int32) (*Incrementer, error) {
	i := layout()
	if err := i.value.Set(ctx, env.State, initValue); err != nil {
		return nil, err
	}
	if err := i.myMap.Insert(ctx, env.State, env.Actor, 0); err != nil {
		return nil, err
	}
	env.Log.Debug("incrementer created",
		zap.Int32("value", initValue),
		zap.Stringer("deployer", env.Actor),
	)
	return i, nil
}

// Default is New with a zero counter.
func Default(ctx context.Context, env *runtime.Context) (*Incrementer, error) {
	return New(ctx, env, 0)
}

// Increment adds [by] to the counter. The addition wraps around at the int32
// bounds.
func (i *Incrementer) Increment(ctx context.Context, env *runtime.Context, by int32) error {
	value, err := i.value.GetOrDefault(ctx, env.State)
	if err != nil {
		return err
	}
	return i.value.Set(ctx, env.State, value+by)
}

// Get returns the counter.
func (i *Incrementer) Get(ctx context.Context, env *runtime.Context) (int32, error) {
	return i.value.GetOrDefault(ctx, env.State)
}

// GetMine returns the caller's entry, or 0 if the caller has none.
func (i *Incrementer) GetMine(ctx context.Context, env *runtime.Context) (int32, error) {
	return i.myMap.GetOrDefault(ctx, env.State, env.Actor)
}
