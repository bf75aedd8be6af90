// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"io"
)

// Database is the durable store underneath all state. It is satisfied by
// avalanchego's memdb and by the pebble package.
type Database interface {
	io.Closer

	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

var _ Mutable = (*databaseMutable)(nil)

type databaseMutable struct {
	db Database
}

// NewDatabaseMutable writes straight through to [db].
func NewDatabaseMutable(db Database) Mutable {
	return &databaseMutable{db: db}
}

func (d *databaseMutable) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return d.db.Get(key)
}

func (d *databaseMutable) Insert(_ context.Context, key []byte, value []byte) error {
	return d.db.Put(key, value)
}

func (d *databaseMutable) Remove(_ context.Context, key []byte) error {
	return d.db.Delete(key)
}
