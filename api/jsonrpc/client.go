// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/atomic"

	"github.com/ava-labs/incrementer/actions"
	"github.com/ava-labs/incrementer/api"
	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/requester"
	"github.com/ava-labs/incrementer/runtime"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	// separates transactions that sign identical actions
	nonce *atomic.Uint64
}

// NewJSONRPCClient returns a client for the service mounted at
// [uri]/ext/incrementer.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += "/ext/" + api.Name + Endpoint
	req := requester.New(uri, api.Name)
	return &JSONRPCClient{
		requester: req,
		nonce:     atomic.NewUint64(uint64(time.Now().UnixNano())),
	}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Programs(ctx context.Context) ([]string, error) {
	resp := new(ProgramsReply)
	err := cli.requester.SendRequest(ctx,
		"programs",
		nil,
		resp,
	)
	return resp.Programs, err
}

func (cli *JSONRPCClient) ABI(ctx context.Context, program string) (runtime.ABI, error) {
	resp := new(ABIReply)
	err := cli.requester.SendRequest(ctx,
		"ABI",
		&ABIArgs{Program: program},
		resp,
	)
	return resp.ABI, err
}

func (cli *JSONRPCClient) ProgramABI(ctx context.Context, programID codec.Address) (runtime.ABI, error) {
	resp := new(ABIReply)
	err := cli.requester.SendRequest(ctx,
		"ABI",
		&ABIArgs{ProgramID: &programID},
		resp,
	)
	return resp.ABI, err
}

// Create deploys [program] and runs [constructor] with [params] signed by
// [factory].
func (cli *JSONRPCClient) Create(
	ctx context.Context,
	factory *auth.ED25519Factory,
	program string,
	constructor string,
	params []byte,
) (ids.ID, codec.Address, error) {
	tx, err := cli.sign(factory, &actions.ProgramCreate{
		Program:     program,
		Constructor: constructor,
		Params:      params,
	})
	if err != nil {
		return ids.Empty, codec.EmptyAddress, err
	}
	resp := new(CreateReply)
	err = cli.requester.SendRequest(ctx,
		"create",
		&SubmitTxArgs{Tx: tx},
		resp,
	)
	return resp.TxID, resp.ProgramID, err
}

// Execute calls [function] on [programID] with [params] signed by [factory].
func (cli *JSONRPCClient) Execute(
	ctx context.Context,
	factory *auth.ED25519Factory,
	programID codec.Address,
	function string,
	params []byte,
) (ids.ID, []byte, error) {
	tx, err := cli.sign(factory, &actions.ProgramExecute{
		ProgramID: programID,
		Function:  function,
		Params:    params,
	})
	if err != nil {
		return ids.Empty, nil, err
	}
	resp := new(ExecuteReply)
	err = cli.requester.SendRequest(ctx,
		"execute",
		&SubmitTxArgs{Tx: tx},
		resp,
	)
	return resp.TxID, resp.Result, err
}

// Query calls [function] on [programID] as [actor] without changing state.
func (cli *JSONRPCClient) Query(
	ctx context.Context,
	actor codec.Address,
	programID codec.Address,
	function string,
	params []byte,
) ([]byte, error) {
	resp := new(QueryReply)
	err := cli.requester.SendRequest(ctx,
		"query",
		&QueryArgs{
			Actor:     actor,
			ProgramID: programID,
			Function:  function,
			Params:    params,
		},
		resp,
	)
	return resp.Result, err
}

func (cli *JSONRPCClient) sign(factory *auth.ED25519Factory, action actions.Action) ([]byte, error) {
	tx, err := actions.NewTransaction(cli.nonce.Inc(), action).Sign(factory)
	if err != nil {
		return nil, err
	}
	return tx.Bytes()
}
