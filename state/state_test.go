// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"
)

func TestSimpleMutableBuffersUntilCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	parent := NewDatabaseMutable(db)
	require.NoError(parent.Insert(ctx, []byte("a"), []byte{1}))

	mu := NewSimpleMutable(parent)
	require.NoError(mu.Insert(ctx, []byte("b"), []byte{2}))
	require.NoError(mu.Remove(ctx, []byte("a")))
	require.Equal(2, mu.Len())

	// buffered view
	_, err := mu.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err := mu.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, v)

	// parent untouched
	v, err = db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)
	_, err = db.Get([]byte("b"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(mu.Commit(ctx))
	require.Zero(mu.Len())

	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err = db.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
}

func TestSimpleMutableDiscard(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	mu := NewSimpleMutable(NewDatabaseMutable(db))
	require.NoError(mu.Insert(ctx, []byte("k"), []byte("v")))
	mu.Discard()
	require.NoError(mu.Commit(ctx))

	_, err := db.Get([]byte("k"))
	require.ErrorIs(err, database.ErrNotFound)
}

func TestSimpleMutableCopiesValues(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	mu := NewSimpleMutable(NewDatabaseMutable(memdb.New()))
	value := []byte{1, 2, 3}
	require.NoError(mu.Insert(ctx, []byte("k"), value))
	value[0] = 9

	v, err := mu.GetValue(ctx, []byte("k"))
	require.NoError(err)
	require.Equal([]byte{1, 2, 3}, v)
}

func TestSimpleMutableNested(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	outer := NewSimpleMutable(NewDatabaseMutable(db))
	inner := NewSimpleMutable(outer)

	require.NoError(inner.Insert(ctx, []byte("k"), []byte("v")))
	require.NoError(inner.Commit(ctx))
	require.Equal(1, outer.Len())

	_, err := db.Get([]byte("k"))
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(outer.Commit(ctx))
	v, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
}

var errWrite = errors.New("write failed")

type failingMutable struct {
	Mutable
}

func (failingMutable) Insert(context.Context, []byte, []byte) error {
	return errWrite
}

func TestSimpleMutableCommitError(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	mu := NewSimpleMutable(failingMutable{NewDatabaseMutable(memdb.New())})
	require.NoError(mu.Insert(ctx, []byte("k"), []byte("v")))
	require.ErrorIs(mu.Commit(ctx), errWrite)
	require.Equal(1, mu.Len())
}

func TestPrefixedMutable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	base := NewDatabaseMutable(db)
	a := NewPrefixedMutable([]byte{0x1, 'a'}, base)
	b := NewPrefixedMutable([]byte{0x1, 'b'}, base)

	require.NoError(a.Insert(ctx, []byte("value"), []byte{1}))
	require.NoError(b.Insert(ctx, []byte("value"), []byte{2}))

	v, err := a.GetValue(ctx, []byte("value"))
	require.NoError(err)
	require.Equal([]byte{1}, v)

	v, err = db.Get([]byte{0x1, 'b', 'v', 'a', 'l', 'u', 'e'})
	require.NoError(err)
	require.Equal([]byte{2}, v)

	require.NoError(a.Remove(ctx, []byte("value")))
	_, err = a.GetValue(ctx, []byte("value"))
	require.ErrorIs(err, database.ErrNotFound)
	_, err = b.GetValue(ctx, []byte("value"))
	require.NoError(err)
}
