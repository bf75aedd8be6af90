// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/crypto/ed25519"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
)

const (
	programPrefix      = 0x0
	programStatePrefix = 0x1
	keyPrefix          = 0x2
	instancePrefix     = 0x3
)

var ErrInvalidKeyName = errors.New("invalid key name")

//
// Program
//

func ProgramKey(program codec.Address) (k []byte) {
	k = make([]byte, 1+codec.AddressLen)
	k[0] = programPrefix
	copy(k[1:], program[:])
	return
}

func ProgramStatePrefix(program codec.Address) (k []byte) {
	k = make([]byte, 1+codec.AddressLen)
	k[0] = programStatePrefix
	copy(k[1:], program[:])
	return
}

// [program] -> [name of the registered program]
func GetProgram(
	ctx context.Context,
	db state.Immutable,
	program codec.Address,
) (
	string, // program name
	bool, // exists
	error,
) {
	v, err := db.GetValue(ctx, ProgramKey(program))
	if errors.Is(err, database.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

// SetProgram records that [program] runs the registered program [name].
func SetProgram(
	ctx context.Context,
	mu state.Mutable,
	program codec.Address,
	name string,
) error {
	return mu.Insert(ctx, ProgramKey(program), []byte(name))
}

func InstanceKey(program codec.Address) (k []byte) {
	k = make([]byte, 1+codec.AddressLen)
	k[0] = instancePrefix
	copy(k[1:], program[:])
	return
}

// GetInstantiated reports whether a constructor ran for [program].
func GetInstantiated(ctx context.Context, db state.Immutable, program codec.Address) (bool, error) {
	_, err := db.GetValue(ctx, InstanceKey(program))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func SetInstantiated(ctx context.Context, mu state.Mutable, program codec.Address) error {
	return mu.Insert(ctx, InstanceKey(program), []byte{1})
}

// ProgramState scopes [mu] to the storage owned by [program].
func ProgramState(program codec.Address, mu state.Mutable) state.Mutable {
	return state.NewPrefixedMutable(ProgramStatePrefix(program), mu)
}

var _ runtime.ProgramLoader = ProgramStore{}

// ProgramStore resolves deployed programs using the key layout above.
type ProgramStore struct{}

func (ProgramStore) GetProgramName(ctx context.Context, im state.Immutable, program codec.Address) (string, error) {
	name, exists, err := GetProgram(ctx, im, program)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", runtime.ErrProgramNotDeployed, program)
	}
	return name, nil
}

func (ProgramStore) ProgramState(program codec.Address, mu state.Mutable) state.Mutable {
	return ProgramState(program, mu)
}

func (ProgramStore) Instantiated(ctx context.Context, im state.Immutable, program codec.Address) (bool, error) {
	return GetInstantiated(ctx, im, program)
}

func (ProgramStore) SetInstantiated(ctx context.Context, mu state.Mutable, program codec.Address) error {
	return SetInstantiated(ctx, mu, program)
}

//
// Keys
//

func NamedKey(name string) (k []byte) {
	k = make([]byte, 1+len(name))
	k[0] = keyPrefix
	copy(k[1:], name)
	return
}

// GetKey returns the private key stored under [name].
func GetKey(ctx context.Context, db state.Immutable, name string) (ed25519.PrivateKey, bool, error) {
	v, err := db.GetValue(ctx, NamedKey(name))
	if errors.Is(err, database.ErrNotFound) {
		return ed25519.EmptyPrivateKey, false, nil
	}
	if err != nil {
		return ed25519.EmptyPrivateKey, false, err
	}
	if len(v) != ed25519.PrivateKeyLen {
		return ed25519.EmptyPrivateKey, false, ed25519.ErrInvalidPrivateKey
	}
	return ed25519.PrivateKey(v), true, nil
}

// SetKey stores [privateKey] under [name].
func SetKey(ctx context.Context, mu state.Mutable, privateKey ed25519.PrivateKey, name string) error {
	if len(name) == 0 {
		return ErrInvalidKeyName
	}
	return mu.Insert(ctx, NamedKey(name), privateKey[:])
}
