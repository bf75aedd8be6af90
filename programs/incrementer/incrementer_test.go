// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package incrementer

import (
	"context"
	"math"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
)

// runtimeEnv shares one state between callers.
type runtimeEnv struct {
	actor codec.Address
	state state.Mutable
}

func newEnv(actor codec.Address) *runtimeEnv {
	return &runtimeEnv{
		actor: actor,
		state: state.NewDatabaseMutable(memdb.New()),
	}
}

func (e *runtimeEnv) context() *runtime.Context {
	return e.as(e.actor)
}

func (e *runtimeEnv) as(actor codec.Address) *runtime.Context {
	return &runtime.Context{
		Actor: actor,
		State: e.state,
		Log:   logging.NoLog{},
	}
}

func testAccount() codec.Address {
	return codec.CreateAddress(0, ids.GenerateTestID())
}

func TestDefaultWorks(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newEnv(testAccount()).context()

	i, err := Default(ctx, env)
	require.NoError(err)

	value, err := i.Get(ctx, env)
	require.NoError(err)
	require.Zero(value)
}

func TestItWorks(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newEnv(testAccount()).context()

	i, err := New(ctx, env, 42)
	require.NoError(err)

	value, err := i.Get(ctx, env)
	require.NoError(err)
	require.Equal(int32(42), value)

	require.NoError(i.Increment(ctx, env, 5))
	value, err = i.Get(ctx, env)
	require.NoError(err)
	require.Equal(int32(47), value)

	require.NoError(i.Increment(ctx, env, -50))
	value, err = i.Get(ctx, env)
	require.NoError(err)
	require.Equal(int32(-3), value)
}

func TestMyMapWorks(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	deployer := newEnv(testAccount())
	env := deployer.context()

	i, err := New(ctx, env, 11)
	require.NoError(err)

	// deployer has an explicit zero entry
	ok, err := i.myMap.Contains(ctx, env.State, env.Actor)
	require.NoError(err)
	require.True(ok)
	mine, err := i.GetMine(ctx, env)
	require.NoError(err)
	require.Zero(mine)

	// a caller that was never inserted also reads zero
	other := deployer.as(testAccount())
	ok, err = i.myMap.Contains(ctx, other.State, other.Actor)
	require.NoError(err)
	require.False(ok)
	mine, err = i.GetMine(ctx, other)
	require.NoError(err)
	require.Zero(mine)

	// increment leaves the mapping alone
	require.NoError(i.Increment(ctx, other, 3))
	mine, err = i.GetMine(ctx, env)
	require.NoError(err)
	require.Zero(mine)
	value, err := i.Get(ctx, other)
	require.NoError(err)
	require.Equal(int32(14), value)
}

func TestGetMineReadsCallerEntry(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	deployer := newEnv(testAccount())
	env := deployer.context()

	i, err := Default(ctx, env)
	require.NoError(err)

	other := deployer.as(testAccount())
	require.NoError(i.myMap.Insert(ctx, other.State, other.Actor, 9))

	mine, err := i.GetMine(ctx, other)
	require.NoError(err)
	require.Equal(int32(9), mine)
	mine, err = i.GetMine(ctx, env)
	require.NoError(err)
	require.Zero(mine)
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		name     string
		init     int32
		by       []int32
		expected int32
	}{
		{
			name:     "zero",
			init:     7,
			by:       []int32{0},
			expected: 7,
		},
		{
			name:     "sequence",
			init:     11,
			by:       []int32{3, 4, -2},
			expected: 16,
		},
		{
			name:     "wraps at max",
			init:     math.MaxInt32,
			by:       []int32{1},
			expected: math.MinInt32,
		},
		{
			name:     "wraps at min",
			init:     math.MinInt32,
			by:       []int32{-1},
			expected: math.MaxInt32,
		},
		{
			name:     "wraps and comes back",
			init:     math.MaxInt32,
			by:       []int32{math.MaxInt32, 2},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			env := newEnv(testAccount()).context()

			i, err := New(ctx, env, tt.init)
			require.NoError(err)
			for _, by := range tt.by {
				require.NoError(i.Increment(ctx, env, by))
			}
			value, err := i.Get(ctx, env)
			require.NoError(err)
			require.Equal(tt.expected, value)
		})
	}
}

func TestLoadReadsExistingState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	env := newEnv(testAccount()).context()

	_, err := New(ctx, env, 5)
	require.NoError(err)

	value, err := Load().Get(ctx, env)
	require.NoError(err)
	require.Equal(int32(5), value)
}
