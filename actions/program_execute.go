// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
)

var _ Action = (*ProgramExecute)(nil)

// ProgramExecute calls a message of a deployed program.
type ProgramExecute struct {
	// ProgramID is the account of the program to call.
	ProgramID codec.Address `json:"programID" yaml:"programID"`

	// Function is the name of the message to call.
	Function string `json:"function" yaml:"function"`

	// Params are the borsh encoded message arguments.
	Params codec.Bytes `json:"params" yaml:"params"`
}

func (*ProgramExecute) GetTypeID() uint8 {
	return ProgramExecuteID
}

type programExecute struct {
	ProgramID codec.Address
	Function  string
	Params    []byte
}

func (t *ProgramExecute) Digest() ([]byte, error) {
	return borsh.Serialize(programExecute{t.ProgramID, t.Function, t.Params})
}

func UnmarshalProgramExecute(b []byte) (*ProgramExecute, error) {
	var raw programExecute
	if err := borsh.Deserialize(&raw, b); err != nil {
		return nil, err
	}
	return &ProgramExecute{
		ProgramID: raw.ProgramID,
		Function:  raw.Function,
		Params:    raw.Params,
	}, nil
}

// Execute returns the borsh encoded result of the call.
func (t *ProgramExecute) Execute(
	ctx context.Context,
	rt *runtime.Runtime,
	mu state.Mutable,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if len(t.Function) == 0 {
		return nil, ErrMissingFunction
	}
	return rt.CallProgram(ctx, &runtime.CallInfo{
		State:        mu,
		Actor:        actor,
		Program:      t.ProgramID,
		FunctionName: t.Function,
		Params:       t.Params,
	})
}
