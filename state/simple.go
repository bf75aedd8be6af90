// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"
)

var _ Mutable = (*SimpleMutable)(nil)

type change struct {
	value  []byte
	delete bool
}

// SimpleMutable buffers writes over a parent Mutable until Commit. Reads see
// the buffered writes first.
type SimpleMutable struct {
	v Mutable

	changes map[string]*change
}

func NewSimpleMutable(v Mutable) *SimpleMutable {
	return &SimpleMutable{v, make(map[string]*change)}
}

func (s *SimpleMutable) GetValue(ctx context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.delete {
			return nil, database.ErrNotFound
		}
		return slices.Clone(v.value), nil
	}
	return s.v.GetValue(ctx, k)
}

func (s *SimpleMutable) Insert(_ context.Context, k []byte, v []byte) error {
	s.changes[string(k)] = &change{value: slices.Clone(v)}
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	s.changes[string(k)] = &change{delete: true}
	return nil
}

// Len returns the number of keys with pending changes.
func (s *SimpleMutable) Len() int {
	return len(s.changes)
}

// Commit writes pending changes into the parent in key order and clears the
// buffer. On error the buffer is left untouched.
func (s *SimpleMutable) Commit(ctx context.Context) error {
	keys := maps.Keys(s.changes)
	slices.Sort(keys)
	for _, k := range keys {
		op := s.changes[k]
		if op.delete {
			if err := s.v.Remove(ctx, []byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := s.v.Insert(ctx, []byte(k), op.value); err != nil {
			return err
		}
	}
	s.changes = make(map[string]*change)
	return nil
}

// Discard drops pending changes.
func (s *SimpleMutable) Discard() {
	s.changes = make(map[string]*change)
}
