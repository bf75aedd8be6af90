// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
	"github.com/ava-labs/incrementer/storage"
)

var _ Action = (*ProgramCreate)(nil)

// ProgramCreate deploys a registered program to a fresh account and runs one
// of its constructors.
type ProgramCreate struct {
	// Program is the registered name of the program to deploy.
	Program string `json:"program" yaml:"program"`

	// Constructor is the name of the constructor to run.
	Constructor string `json:"constructor" yaml:"constructor"`

	// Params are the borsh encoded constructor arguments.
	Params codec.Bytes `json:"params" yaml:"params"`
}

func (*ProgramCreate) GetTypeID() uint8 {
	return ProgramCreateID
}

type programCreate struct {
	Program     string
	Constructor string
	Params      []byte
}

func (t *ProgramCreate) Digest() ([]byte, error) {
	return borsh.Serialize(programCreate{t.Program, t.Constructor, t.Params})
}

func UnmarshalProgramCreate(b []byte) (*ProgramCreate, error) {
	var raw programCreate
	if err := borsh.Deserialize(&raw, b); err != nil {
		return nil, err
	}
	return &ProgramCreate{
		Program:     raw.Program,
		Constructor: raw.Constructor,
		Params:      raw.Params,
	}, nil
}

// Execute returns the account of the new program.
func (t *ProgramCreate) Execute(
	ctx context.Context,
	rt *runtime.Runtime,
	mu state.Mutable,
	actor codec.Address,
	txID ids.ID,
) ([]byte, error) {
	if len(t.Program) == 0 {
		return nil, ErrMissingProgram
	}
	if len(t.Constructor) == 0 {
		return nil, ErrMissingFunction
	}
	if !rt.Registered(t.Program) {
		return nil, fmt.Errorf("%w: %s", runtime.ErrUnknownProgram, t.Program)
	}

	account := auth.NewProgramAddress(txID)
	_, exists, err := storage.GetProgram(ctx, mu, account)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrProgramExists, account)
	}

	// deployment and construction succeed or fail together
	buffer := state.NewSimpleMutable(mu)
	if err := storage.SetProgram(ctx, buffer, account, t.Program); err != nil {
		return nil, err
	}
	if _, err := rt.Instantiate(ctx, &runtime.CallInfo{
		State:        buffer,
		Actor:        actor,
		Program:      account,
		FunctionName: t.Constructor,
		Params:       t.Params,
	}); err != nil {
		return nil, err
	}
	if err := buffer.Commit(ctx); err != nil {
		return nil, err
	}
	return account[:], nil
}
