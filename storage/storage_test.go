// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/crypto/ed25519"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
)

func TestPrefix(t *testing.T) {
	require := require.New(t)
	program := codec.CreateAddress(1, ids.GenerateTestID())

	require.Equal(append([]byte{programPrefix}, program[:]...), ProgramKey(program))
	require.Equal(append([]byte{programStatePrefix}, program[:]...), ProgramStatePrefix(program))
	require.Equal([]byte{keyPrefix, 'a', 'l', 'i', 'c', 'e'}, NamedKey("alice"))
	require.Equal(append([]byte{instancePrefix}, program[:]...), InstanceKey(program))
}

func TestProgramStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewDatabaseMutable(memdb.New())
	program := codec.CreateAddress(1, ids.GenerateTestID())
	store := ProgramStore{}

	_, err := store.GetProgramName(ctx, mu, program)
	require.ErrorIs(err, runtime.ErrProgramNotDeployed)

	require.NoError(SetProgram(ctx, mu, program, "incrementer"))
	name, err := store.GetProgramName(ctx, mu, program)
	require.NoError(err)
	require.Equal("incrementer", name)

	instantiated, err := store.Instantiated(ctx, mu, program)
	require.NoError(err)
	require.False(instantiated)
	require.NoError(store.SetInstantiated(ctx, mu, program))
	instantiated, err = store.Instantiated(ctx, mu, program)
	require.NoError(err)
	require.True(instantiated)

	scoped := store.ProgramState(program, mu)
	require.NoError(scoped.Insert(ctx, []byte("value"), []byte{1}))
	v, err := mu.GetValue(ctx, append(ProgramStatePrefix(program), []byte("value")...))
	require.NoError(err)
	require.Equal([]byte{1}, v)
}

func TestKeys(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewDatabaseMutable(memdb.New())

	_, ok, err := GetKey(ctx, mu, "alice")
	require.NoError(err)
	require.False(ok)

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	require.NoError(SetKey(ctx, mu, priv, "alice"))
	require.ErrorIs(SetKey(ctx, mu, priv, ""), ErrInvalidKeyName)

	stored, ok, err := GetKey(ctx, mu, "alice")
	require.NoError(err)
	require.True(ok)
	require.Equal(priv, stored)
}
