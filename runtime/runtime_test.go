// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/state"
	"github.com/ava-labs/incrementer/trace"
)

var errNegative = errors.New("negative")

type testLoader struct {
	deployed map[codec.Address]string
}

func (l *testLoader) GetProgramName(_ context.Context, _ state.Immutable, program codec.Address) (string, error) {
	name, ok := l.deployed[program]
	if !ok {
		return "", ErrProgramNotDeployed
	}
	return name, nil
}

func (*testLoader) ProgramState(program codec.Address, mu state.Mutable) state.Mutable {
	return state.NewPrefixedMutable(program[:], mu)
}

func instanceKey(program codec.Address) []byte {
	return append([]byte("instance/"), program[:]...)
}

func (*testLoader) Instantiated(ctx context.Context, im state.Immutable, program codec.Address) (bool, error) {
	_, err := im.GetValue(ctx, instanceKey(program))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (*testLoader) SetInstantiated(ctx context.Context, mu state.Mutable, program codec.Address) error {
	return mu.Insert(ctx, instanceKey(program), []byte{1})
}

type setParams struct {
	Value int32
}

// cellProgram stores a single int32 under "v".
func cellProgram() *Program {
	read := func(ctx context.Context, env *Context) (int32, error) {
		b, err := env.State.GetValue(ctx, []byte("v"))
		if err != nil {
			return 0, err
		}
		return int32(binary.LittleEndian.Uint32(b)), nil
	}
	write := func(ctx context.Context, env *Context, v int32) error {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return env.State.Insert(ctx, []byte("v"), b)
	}
	return NewProgram("cell").
		Constructor("new", []Param{{Name: "value", Type: I32}}, func(ctx context.Context, env *Context, params []byte) ([]byte, error) {
			p, err := Deserialize[setParams](params)
			if err != nil {
				return nil, err
			}
			return nil, write(ctx, env, p.Value)
		}).
		Message("set", []Param{{Name: "value", Type: I32}}, None, func(ctx context.Context, env *Context, params []byte) ([]byte, error) {
			p, err := Deserialize[setParams](params)
			if err != nil {
				return nil, err
			}
			if err := write(ctx, env, p.Value); err != nil {
				return nil, err
			}
			if p.Value < 0 {
				return nil, errNegative
			}
			return nil, nil
		}).
		Message("add", []Param{{Name: "value", Type: I32}}, None, func(ctx context.Context, env *Context, params []byte) ([]byte, error) {
			p, err := Deserialize[setParams](params)
			if err != nil {
				return nil, err
			}
			v, err := read(ctx, env)
			if err != nil {
				return nil, err
			}
			return nil, write(ctx, env, v+p.Value)
		}).
		Message("get", nil, I32, func(ctx context.Context, env *Context, params []byte) ([]byte, error) {
			if err := NoParams(params); err != nil {
				return nil, err
			}
			v, err := read(ctx, env)
			if err != nil {
				return nil, err
			}
			return Serialize(v)
		}).
		Message("caller", nil, Address, func(_ context.Context, env *Context, _ []byte) ([]byte, error) {
			return env.Actor[:], nil
		}).
		Message("boom", nil, None, func(context.Context, *Context, []byte) ([]byte, error) {
			panic("boom")
		})
}

func newTestRuntime(t *testing.T, loader ProgramLoader) *Runtime {
	rt, err := NewRuntime(NewConfig(), logging.NoLog{}, loader, trace.Noop(), prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, rt.Register(cellProgram()))
	return rt
}

func mustSerialize(t *testing.T, v any) []byte {
	b, err := Serialize(v)
	require.NoError(t, err)
	return b
}

func TestRuntimeInstantiateAndCall(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	program := codec.CreateAddress(1, ids.GenerateTestID())
	actor := codec.CreateAddress(0, ids.GenerateTestID())
	rt := newTestRuntime(t, &testLoader{deployed: map[codec.Address]string{program: "cell"}})
	db := state.NewDatabaseMutable(memdb.New())

	_, err := rt.Instantiate(ctx, &CallInfo{
		State:        db,
		Actor:        actor,
		Program:      program,
		FunctionName: "new",
		Params:       mustSerialize(t, setParams{Value: 7}),
	})
	require.NoError(err)

	result, err := rt.CallProgram(ctx, &CallInfo{State: db, Actor: actor, Program: program, FunctionName: "get"})
	require.NoError(err)
	require.Equal(mustSerialize(t, int32(7)), result)

	result, err = rt.CallProgram(ctx, &CallInfo{State: db, Actor: actor, Program: program, FunctionName: "caller"})
	require.NoError(err)
	require.Equal(actor[:], result)
}

func TestRuntimeFailedCallLeavesStateUntouched(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	program := codec.CreateAddress(1, ids.GenerateTestID())
	rt := newTestRuntime(t, &testLoader{deployed: map[codec.Address]string{program: "cell"}})
	db := state.NewDatabaseMutable(memdb.New())

	_, err := rt.Instantiate(ctx, &CallInfo{State: db, Program: program, FunctionName: "new", Params: mustSerialize(t, setParams{Value: 1})})
	require.NoError(err)

	_, err = rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "set", Params: mustSerialize(t, setParams{Value: -5})})
	require.ErrorIs(err, errNegative)

	_, err = rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "boom"})
	require.ErrorIs(err, ErrProgramPanic)

	result, err := rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "get"})
	require.NoError(err)
	require.Equal(mustSerialize(t, int32(1)), result)
}

func TestRuntimeInstantiateOnce(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	program := codec.CreateAddress(1, ids.GenerateTestID())
	rt := newTestRuntime(t, &testLoader{deployed: map[codec.Address]string{program: "cell"}})
	db := state.NewDatabaseMutable(memdb.New())

	// a failed constructor does not count
	_, err := rt.Instantiate(ctx, &CallInfo{State: db, Program: program, FunctionName: "new", Params: []byte{1, 0}})
	require.ErrorIs(err, ErrInvalidParams)

	_, err = rt.Instantiate(ctx, &CallInfo{State: db, Program: program, FunctionName: "new", Params: mustSerialize(t, setParams{Value: 7})})
	require.NoError(err)

	_, err = rt.Instantiate(ctx, &CallInfo{State: db, Program: program, FunctionName: "new", Params: mustSerialize(t, setParams{Value: 5})})
	require.ErrorIs(err, ErrAlreadyInstantiated)

	result, err := rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "get"})
	require.NoError(err)
	require.Equal(mustSerialize(t, int32(7)), result)
}

func TestRuntimeConcurrentCalls(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	const calls = 64

	program := codec.CreateAddress(1, ids.GenerateTestID())
	rt := newTestRuntime(t, &testLoader{deployed: map[codec.Address]string{program: "cell"}})
	db := state.NewDatabaseMutable(memdb.New())

	_, err := rt.Instantiate(ctx, &CallInfo{State: db, Program: program, FunctionName: "new", Params: mustSerialize(t, setParams{Value: 0})})
	require.NoError(err)

	add := mustSerialize(t, setParams{Value: 1})
	var g errgroup.Group
	for i := 0; i < calls; i++ {
		g.Go(func() error {
			_, err := rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "add", Params: add})
			return err
		})
		g.Go(func() error {
			_, err := rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "get"})
			return err
		})
	}
	require.NoError(g.Wait())

	result, err := rt.CallProgram(ctx, &CallInfo{State: db, Program: program, FunctionName: "get"})
	require.NoError(err)
	require.Equal(mustSerialize(t, int32(calls)), result)
}

func TestRuntimeCallErrors(t *testing.T) {
	program := codec.CreateAddress(1, ids.GenerateTestID())
	unknown := codec.CreateAddress(1, ids.GenerateTestID())
	loader := &testLoader{deployed: map[codec.Address]string{program: "cell", unknown: "missing"}}
	oversized := make([]byte, NewConfig().MaxParamsSize+1)

	tests := []struct {
		name        string
		constructor bool
		program     codec.Address
		function    string
		params      []byte
		expectedErr error
	}{
		{
			name:        "not deployed",
			program:     codec.CreateAddress(1, ids.GenerateTestID()),
			function:    "get",
			expectedErr: ErrProgramNotDeployed,
		},
		{
			name:        "unregistered program",
			program:     unknown,
			function:    "get",
			expectedErr: ErrUnknownProgram,
		},
		{
			name:        "unknown function",
			program:     program,
			function:    "flip",
			expectedErr: ErrUnknownFunction,
		},
		{
			name:        "constructor called as message",
			program:     program,
			function:    "new",
			params:      []byte{1, 0, 0, 0},
			expectedErr: ErrNotMessage,
		},
		{
			name:        "message called as constructor",
			constructor: true,
			program:     program,
			function:    "get",
			expectedErr: ErrNotConstructor,
		},
		{
			name:        "params too large",
			program:     program,
			function:    "get",
			params:      oversized,
			expectedErr: ErrParamsTooLarge,
		},
		{
			name:        "unexpected params",
			program:     program,
			function:    "get",
			params:      []byte{1},
			expectedErr: ErrInvalidParams,
		},
		{
			name:        "short params",
			constructor: true,
			program:     program,
			function:    "new",
			params:      []byte{1, 0},
			expectedErr: ErrInvalidParams,
		},
		{
			name:        "trailing params",
			constructor: true,
			program:     program,
			function:    "new",
			params:      []byte{1, 0, 0, 0, 0},
			expectedErr: ErrInvalidParams,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			rt := newTestRuntime(t, loader)
			callInfo := &CallInfo{
				State:        state.NewDatabaseMutable(memdb.New()),
				Program:      tt.program,
				FunctionName: tt.function,
				Params:       tt.params,
			}
			var err error
			if tt.constructor {
				_, err = rt.Instantiate(ctx, callInfo)
			} else {
				_, err = rt.CallProgram(ctx, callInfo)
			}
			require.ErrorIs(err, tt.expectedErr)
		})
	}
}

func TestRuntimeLoaderError(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	loader := NewMockProgramLoader(ctrl)
	loader.EXPECT().GetProgramName(gomock.Any(), gomock.Any(), gomock.Any()).Return("", database.ErrClosed)

	rt := newTestRuntime(t, loader)
	_, err := rt.CallProgram(ctx, &CallInfo{
		State:        state.NewDatabaseMutable(memdb.New()),
		Program:      codec.CreateAddress(1, ids.GenerateTestID()),
		FunctionName: "get",
	})
	require.ErrorIs(err, database.ErrClosed)
}

func TestRuntimeScopesProgramState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	program := codec.CreateAddress(1, ids.GenerateTestID())
	db := memdb.New()
	scoped := state.NewPrefixedMutable([]byte("scope/"), state.NewDatabaseMutable(db))

	loader := NewMockProgramLoader(ctrl)
	loader.EXPECT().GetProgramName(gomock.Any(), gomock.Any(), program).Return("cell", nil)
	loader.EXPECT().Instantiated(gomock.Any(), gomock.Any(), program).Return(false, nil)
	loader.EXPECT().SetInstantiated(gomock.Any(), gomock.Any(), program).Return(nil)
	loader.EXPECT().ProgramState(program, gomock.Any()).DoAndReturn(
		func(_ codec.Address, mu state.Mutable) state.Mutable {
			return state.NewPrefixedMutable([]byte("scope/"), mu)
		},
	)

	rt := newTestRuntime(t, loader)
	_, err := rt.Instantiate(ctx, &CallInfo{
		State:        state.NewDatabaseMutable(db),
		Program:      program,
		FunctionName: "new",
		Params:       mustSerialize(t, setParams{Value: 3}),
	})
	require.NoError(err)

	v, err := scoped.GetValue(ctx, []byte("v"))
	require.NoError(err)
	require.Equal([]byte{3, 0, 0, 0}, v)
}

func TestRegister(t *testing.T) {
	require := require.New(t)
	rt := newTestRuntime(t, &testLoader{})

	require.ErrorIs(rt.Register(cellProgram()), ErrDuplicateProgram)
	require.Equal([]string{"cell"}, rt.Programs())
	require.True(rt.Registered("cell"))
	require.False(rt.Registered("missing"))

	dup := NewProgram("dup").
		Message("get", nil, I32, nil).
		Message("get", nil, I32, nil)
	require.ErrorIs(rt.Register(dup), ErrDuplicateFunction)
}

func TestABI(t *testing.T) {
	require := require.New(t)
	rt := newTestRuntime(t, &testLoader{})

	abi, err := rt.ABI("cell")
	require.NoError(err)
	require.Equal("cell", abi.Program)

	names := make([]string, 0, len(abi.Methods))
	for _, m := range abi.Methods {
		names = append(names, m.Name)
	}
	require.Equal([]string{"add", "boom", "caller", "get", "new", "set"}, names)

	m, ok := abi.Method("new")
	require.True(ok)
	require.True(m.Constructor)
	require.Equal([]Param{{Name: "value", Type: I32}}, m.Params)

	m, ok = abi.Method("get")
	require.True(ok)
	require.False(m.Constructor)
	require.Equal(I32, m.Returns)

	_, err = rt.ABI("missing")
	require.ErrorIs(err, ErrUnknownProgram)
}
