// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract provides typed storage cells that programs use to lay out
// their state on top of host storage.
package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/near/borsh-go"

	"github.com/ava-labs/incrementer/state"
)

var (
	ErrCorruptValue = errors.New("corrupt value")
	ErrInvalidKey   = errors.New("invalid key")
)

// Value is a single storage cell holding a T under Key.
type Value[T any] struct {
	Key []byte
}

func NewValue[T any](key string) Value[T] {
	return Value[T]{Key: []byte(key)}
}

// Get returns the stored value and whether it exists.
func (v Value[T]) Get(ctx context.Context, im state.Immutable) (T, bool, error) {
	return get[T](ctx, im, v.Key)
}

// GetOrDefault returns the zero T when the cell is empty.
func (v Value[T]) GetOrDefault(ctx context.Context, im state.Immutable) (T, error) {
	value, _, err := v.Get(ctx, im)
	return value, err
}

func (v Value[T]) Set(ctx context.Context, mu state.Mutable, value T) error {
	return put(ctx, mu, v.Key, value)
}

func (v Value[T]) Clear(ctx context.Context, mu state.Mutable) error {
	return mu.Remove(ctx, v.Key)
}

// Mapping stores V values keyed by K under Prefix. Entries are independent
// storage cells, reading one never loads the others.
type Mapping[K any, V any] struct {
	Prefix []byte
}

func NewMapping[K any, V any](prefix string) Mapping[K, V] {
	return Mapping[K, V]{Prefix: []byte(prefix)}
}

func (m Mapping[K, V]) key(k K) ([]byte, error) {
	encoded, err := borsh.Serialize(k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	key := make([]byte, len(m.Prefix)+len(encoded))
	copy(key, m.Prefix)
	copy(key[len(m.Prefix):], encoded)
	return key, nil
}

// Get returns the entry for k and whether it exists.
func (m Mapping[K, V]) Get(ctx context.Context, im state.Immutable, k K) (V, bool, error) {
	key, err := m.key(k)
	if err != nil {
		var empty V
		return empty, false, err
	}
	return get[V](ctx, im, key)
}

// GetOrDefault returns the zero V when k has no entry.
func (m Mapping[K, V]) GetOrDefault(ctx context.Context, im state.Immutable, k K) (V, error) {
	value, _, err := m.Get(ctx, im, k)
	return value, err
}

func (m Mapping[K, V]) Contains(ctx context.Context, im state.Immutable, k K) (bool, error) {
	_, ok, err := m.Get(ctx, im, k)
	return ok, err
}

func (m Mapping[K, V]) Insert(ctx context.Context, mu state.Mutable, k K, value V) error {
	key, err := m.key(k)
	if err != nil {
		return err
	}
	return put(ctx, mu, key, value)
}

func (m Mapping[K, V]) Remove(ctx context.Context, mu state.Mutable, k K) error {
	key, err := m.key(k)
	if err != nil {
		return err
	}
	return mu.Remove(ctx, key)
}

func get[T any](ctx context.Context, im state.Immutable, key []byte) (T, bool, error) {
	var value T
	b, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	if err := borsh.Deserialize(&value, b); err != nil {
		return value, false, fmt.Errorf("%w: key %x: %w", ErrCorruptValue, key, err)
	}
	return value, true, nil
}

func put[T any](ctx context.Context, mu state.Mutable, key []byte, value T) error {
	b, err := borsh.Serialize(value)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, key, b)
}
