// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/incrementer/actions"
	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/crypto/ed25519"
	"github.com/ava-labs/incrementer/programs/incrementer"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/trace"
)

func newTestVM(t *testing.T) *VM {
	vm, err := New(logging.NoLog{}, trace.Noop(), memdb.New(), runtime.NewConfig(), prometheus.NewRegistry(), incrementer.Program())
	require.NoError(t, err)
	return vm
}

func newFactory(t *testing.T) *auth.ED25519Factory {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return auth.NewED25519Factory(priv)
}

func submit(t *testing.T, vm *VM, factory *auth.ED25519Factory, nonce uint64, action actions.Action) []byte {
	tx, err := actions.NewTransaction(nonce, action).Sign(factory)
	require.NoError(t, err)
	_, output, err := vm.Submit(context.Background(), tx)
	require.NoError(t, err)
	return output
}

func TestVMSubmitAndQuery(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)
	alice := newFactory(t)

	params, err := actions.ParamsToBytes([]actions.Parameter{{Type: runtime.I32, Value: 11}})
	require.NoError(err)
	output := submit(t, vm, alice, 0, &actions.ProgramCreate{
		Program:     incrementer.Name,
		Constructor: incrementer.NewFunction,
		Params:      params,
	})
	program, err := codec.ToAddress(output)
	require.NoError(err)

	abi, err := vm.ProgramABI(ctx, program)
	require.NoError(err)
	require.Equal(incrementer.Name, abi.Program)

	// writes made by a query never land
	by, err := actions.ParamsToBytes([]actions.Parameter{{Type: runtime.I32, Value: 100}})
	require.NoError(err)
	_, err = vm.Query(ctx, alice.Address(), program, incrementer.IncrementFunction, by)
	require.NoError(err)

	by, err = actions.ParamsToBytes([]actions.Parameter{{Type: runtime.I32, Value: 3}})
	require.NoError(err)
	submit(t, vm, alice, 1, &actions.ProgramExecute{
		ProgramID: program,
		Function:  incrementer.IncrementFunction,
		Params:    by,
	})

	result, err := vm.Query(ctx, alice.Address(), program, incrementer.GetFunction, nil)
	require.NoError(err)
	v, err := actions.DecodeResult(runtime.I32, result)
	require.NoError(err)
	require.Equal(int32(14), v)

	result, err = vm.Query(ctx, newFactory(t).Address(), program, incrementer.GetMineFunction, nil)
	require.NoError(err)
	v, err = actions.DecodeResult(runtime.I32, result)
	require.NoError(err)
	require.Equal(int32(0), v)

	require.Equal(float64(2), testutil.ToFloat64(vm.metrics.txsAccepted))
	require.Equal(float64(3), testutil.ToFloat64(vm.metrics.queries))
}

func TestVMConcurrentSubmit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	const txs = 64

	vm := newTestVM(t)
	alice := newFactory(t)
	output := submit(t, vm, alice, 0, &actions.ProgramCreate{
		Program:     incrementer.Name,
		Constructor: incrementer.DefaultFunction,
	})
	program, err := codec.ToAddress(output)
	require.NoError(err)

	by, err := actions.ParamsToBytes([]actions.Parameter{{Type: runtime.I32, Value: 1}})
	require.NoError(err)
	var g errgroup.Group
	for i := 0; i < txs; i++ {
		tx, err := actions.NewTransaction(uint64(i+1), &actions.ProgramExecute{
			ProgramID: program,
			Function:  incrementer.IncrementFunction,
			Params:    by,
		}).Sign(newFactory(t))
		require.NoError(err)
		g.Go(func() error {
			_, _, err := vm.Submit(ctx, tx)
			return err
		})
		g.Go(func() error {
			_, err := vm.Query(ctx, alice.Address(), program, incrementer.GetFunction, nil)
			return err
		})
	}
	require.NoError(g.Wait())

	result, err := vm.Query(ctx, alice.Address(), program, incrementer.GetFunction, nil)
	require.NoError(err)
	v, err := actions.DecodeResult(runtime.I32, result)
	require.NoError(err)
	require.Equal(int32(txs), v)
	require.Equal(float64(txs+1), testutil.ToFloat64(vm.metrics.txsAccepted))
}

func TestVMFailedSubmit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	vm := newTestVM(t)

	tx, err := actions.NewTransaction(0, &actions.ProgramExecute{
		ProgramID: codec.CreateAddress(auth.ProgramID, [32]byte{1}),
		Function:  incrementer.GetFunction,
	}).Sign(newFactory(t))
	require.NoError(err)
	_, _, err = vm.Submit(ctx, tx)
	require.ErrorIs(err, runtime.ErrProgramNotDeployed)
	require.Equal(float64(1), testutil.ToFloat64(vm.metrics.txsFailed))
	require.Zero(testutil.ToFloat64(vm.metrics.stateChanges))
}

func TestVMShutdown(t *testing.T) {
	require := require.New(t)
	vm := newTestVM(t)

	require.NoError(vm.Shutdown())
	_, err := vm.Query(context.Background(), codec.EmptyAddress, codec.EmptyAddress, incrementer.GetFunction, nil)
	require.ErrorIs(err, database.ErrClosed)
}
