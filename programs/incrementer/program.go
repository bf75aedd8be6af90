// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package incrementer

import (
	"context"

	"github.com/ava-labs/incrementer/runtime"
)

const (
	Name = "incrementer"

	NewFunction       = "new"
	DefaultFunction   = "default"
	IncrementFunction = "increment"
	GetFunction       = "get"
	GetMineFunction   = "get_mine"
)

type NewParams struct {
	InitValue int32
}

type IncrementParams struct {
	By int32
}

// Program exposes the incrementer to the runtime.
func Program() *runtime.Program {
	return runtime.NewProgram(Name).
		Constructor(NewFunction, []runtime.Param{{Name: "init_value", Type: runtime.I32}}, newHandler).
		Constructor(DefaultFunction, nil, defaultHandler).
		Message(IncrementFunction, []runtime.Param{{Name: "by", Type: runtime.I32}}, runtime.None, incrementHandler).
		Message(GetFunction, nil, runtime.I32, getHandler).
		Message(GetMineFunction, nil, runtime.I32, getMineHandler)
}

func newHandler(ctx context.Context, env *runtime.Context, params []byte) ([]byte, error) {
	p, err := runtime.Deserialize[NewParams](params)
	if err != nil {
		return nil, err
	}
	_, err = New(ctx, env, p.InitValue)
	return nil, err
}

func defaultHandler(ctx context.Context, env *runtime.Context, params []byte) ([]byte, error) {
	if err := runtime.NoParams(params); err != nil {
		return nil, err
	}
	_, err := Default(ctx, env)
	return nil, err
}

func incrementHandler(ctx context.Context, env *runtime.Context, params []byte) ([]byte, error) {
	p, err := runtime.Deserialize[IncrementParams](params)
	if err != nil {
		return nil, err
	}
	return nil, Load().Increment(ctx, env, p.By)
}

func getHandler(ctx context.Context, env *runtime.Context, params []byte) ([]byte, error) {
	if err := runtime.NoParams(params); err != nil {
		return nil, err
	}
	value, err := Load().Get(ctx, env)
	if err != nil {
		return nil, err
	}
	return runtime.Serialize(value)
}

func getMineHandler(ctx context.Context, env *runtime.Context, params []byte) ([]byte, error) {
	if err := runtime.NoParams(params); err != nil {
		return nil, err
	}
	value, err := Load().GetMine(ctx, env)
	if err != nil {
		return nil, err
	}
	return runtime.Serialize(value)
}
