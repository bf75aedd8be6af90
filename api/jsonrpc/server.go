// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/incrementer/actions"
	"github.com/ava-labs/incrementer/api"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
)

const (
	Endpoint = "/rpc"
)

var _ api.HandlerFactory[api.VM] = (*JSONRPCServerFactory)(nil)

type JSONRPCServerFactory struct{}

func (JSONRPCServerFactory) New(vm api.VM) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(vm))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	vm api.VM
}

func NewJSONRPCServer(vm api.VM) *JSONRPCServer {
	return &JSONRPCServer{vm}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type ProgramsReply struct {
	Programs []string `json:"programs"`
}

func (j *JSONRPCServer) Programs(_ *http.Request, _ *struct{}, reply *ProgramsReply) error {
	reply.Programs = j.vm.Programs()
	return nil
}

type ABIArgs struct {
	// Program is the name of a registered program. Ignored when
	// [ProgramID] is set.
	Program   string         `json:"program"`
	ProgramID *codec.Address `json:"programID,omitempty"`
}

type ABIReply struct {
	ABI runtime.ABI `json:"abi"`
}

func (j *JSONRPCServer) ABI(req *http.Request, args *ABIArgs, reply *ABIReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.ABI")
	defer span.End()

	var (
		abi runtime.ABI
		err error
	)
	if args.ProgramID != nil {
		abi, err = j.vm.ProgramABI(ctx, *args.ProgramID)
	} else {
		abi, err = j.vm.ABI(args.Program)
	}
	if err != nil {
		return err
	}
	reply.ABI = abi
	return nil
}

type SubmitTxArgs struct {
	Tx codec.Bytes `json:"tx"`
}

type CreateReply struct {
	TxID      ids.ID        `json:"txId"`
	ProgramID codec.Address `json:"programID"`
}

// Create submits a signed ProgramCreate transaction.
func (j *JSONRPCServer) Create(req *http.Request, args *SubmitTxArgs, reply *CreateReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Create")
	defer span.End()

	tx, err := unmarshalTx(args.Tx, actions.ProgramCreateID)
	if err != nil {
		return err
	}
	txID, output, err := j.vm.Submit(ctx, tx)
	if err != nil {
		return err
	}
	programID, err := codec.ToAddress(output)
	if err != nil {
		return err
	}
	reply.TxID = txID
	reply.ProgramID = programID
	return nil
}

type ExecuteReply struct {
	TxID   ids.ID      `json:"txId"`
	Result codec.Bytes `json:"result"`
}

// Execute submits a signed ProgramExecute transaction.
func (j *JSONRPCServer) Execute(req *http.Request, args *SubmitTxArgs, reply *ExecuteReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Execute")
	defer span.End()

	tx, err := unmarshalTx(args.Tx, actions.ProgramExecuteID)
	if err != nil {
		return err
	}
	txID, output, err := j.vm.Submit(ctx, tx)
	if err != nil {
		return err
	}
	reply.TxID = txID
	reply.Result = output
	return nil
}

type QueryArgs struct {
	Actor     codec.Address `json:"actor"`
	ProgramID codec.Address `json:"programID"`
	Function  string        `json:"function"`
	Params    codec.Bytes   `json:"params"`
}

type QueryReply struct {
	Result codec.Bytes `json:"result"`
}

// Query calls a function on behalf of [args.Actor] without changing state.
func (j *JSONRPCServer) Query(req *http.Request, args *QueryArgs, reply *QueryReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Query")
	defer span.End()

	result, err := j.vm.Query(ctx, args.Actor, args.ProgramID, args.Function, args.Params)
	if err != nil {
		return err
	}
	reply.Result = result
	return nil
}

func unmarshalTx(b []byte, typeID uint8) (*actions.Transaction, error) {
	tx, err := actions.UnmarshalTransaction(b)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	if tx.Action.GetTypeID() != typeID {
		return nil, fmt.Errorf("%w: expected action %d but got %d", actions.ErrUnknownAction, typeID, tx.Action.GetTypeID())
	}
	return tx, nil
}
