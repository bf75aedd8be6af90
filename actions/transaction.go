// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/near/borsh-go"

	"github.com/ava-labs/incrementer/auth"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
	"github.com/ava-labs/incrementer/state"
)

// Action is a state transition authorized by an actor.
type Action interface {
	GetTypeID() uint8
	// Digest is the canonical encoding of the action that gets signed.
	Digest() ([]byte, error)
	// Execute applies the action on [mu]. [txID] is unique per transaction.
	Execute(
		ctx context.Context,
		rt *runtime.Runtime,
		mu state.Mutable,
		actor codec.Address,
		txID ids.ID,
	) ([]byte, error)
}

// Transaction binds an [Action] to a signature. [Nonce] lets the same actor
// submit identical actions more than once.
type Transaction struct {
	Nonce  uint64
	Action Action
	Auth   *auth.ED25519
}

type txDigest struct {
	Nonce  uint64
	TypeID uint8
	Action []byte
}

func NewTransaction(nonce uint64, action Action) *Transaction {
	return &Transaction{Nonce: nonce, Action: action}
}

func (t *Transaction) Digest() ([]byte, error) {
	action, err := t.Action.Digest()
	if err != nil {
		return nil, err
	}
	return borsh.Serialize(txDigest{
		Nonce:  t.Nonce,
		TypeID: t.Action.GetTypeID(),
		Action: action,
	})
}

// Sign attaches a signature from [factory] over the digest.
func (t *Transaction) Sign(factory *auth.ED25519Factory) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	t.Auth = factory.Sign(msg)
	return t, nil
}

// ID commits to both the digest and the signature.
func (t *Transaction) ID() (ids.ID, error) {
	if t.Auth == nil {
		return ids.Empty, ErrMissingAuth
	}
	msg, err := t.Digest()
	if err != nil {
		return ids.Empty, err
	}
	return ids.ID(hashing.ComputeHash256Array(append(msg, t.Auth.Bytes()...))), nil
}

// Execute verifies the signature and runs the action with the signer as
// actor.
func (t *Transaction) Execute(ctx context.Context, rt *runtime.Runtime, mu state.Mutable) (ids.ID, []byte, error) {
	if t.Auth == nil {
		return ids.Empty, nil, ErrMissingAuth
	}
	msg, err := t.Digest()
	if err != nil {
		return ids.Empty, nil, err
	}
	if err := t.Auth.Verify(ctx, msg); err != nil {
		return ids.Empty, nil, err
	}
	txID := ids.ID(hashing.ComputeHash256Array(append(msg, t.Auth.Bytes()...)))
	output, err := t.Action.Execute(ctx, rt, mu, t.Auth.Actor(), txID)
	return txID, output, err
}

type txBytes struct {
	Nonce  uint64
	TypeID uint8
	Action []byte
	Auth   []byte
}

// Bytes encodes a signed transaction for transport.
func (t *Transaction) Bytes() ([]byte, error) {
	if t.Auth == nil {
		return nil, ErrMissingAuth
	}
	action, err := t.Action.Digest()
	if err != nil {
		return nil, err
	}
	return borsh.Serialize(txBytes{
		Nonce:  t.Nonce,
		TypeID: t.Action.GetTypeID(),
		Action: action,
		Auth:   t.Auth.Bytes(),
	})
}

func UnmarshalTransaction(b []byte) (*Transaction, error) {
	var raw txBytes
	if err := borsh.Deserialize(&raw, b); err != nil {
		return nil, err
	}
	var (
		action Action
		err    error
	)
	switch raw.TypeID {
	case ProgramCreateID:
		action, err = UnmarshalProgramCreate(raw.Action)
	case ProgramExecuteID:
		action, err = UnmarshalProgramExecute(raw.Action)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, raw.TypeID)
	}
	if err != nil {
		return nil, err
	}
	sig, err := auth.UnmarshalED25519(raw.Auth)
	if err != nil {
		return nil, err
	}
	return &Transaction{Nonce: raw.Nonce, Action: action, Auth: sig}, nil
}
