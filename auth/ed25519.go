// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/crypto/ed25519"
)

const (
	// ED25519ID prefixes addresses of ed25519 key holders.
	ED25519ID uint8 = 0
	// ProgramID prefixes addresses of deployed programs.
	ProgramID uint8 = 1

	ED25519Size = 1 + ed25519.PublicKeyLen + ed25519.SignatureLen
)

// ED25519 proves that [Signer] authorized a message. The derived address is
// the caller identity handed to contracts.
type ED25519 struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`

	addr codec.Address
}

func (d *ED25519) address() codec.Address {
	if d.addr == codec.EmptyAddress {
		d.addr = NewED25519Address(d.Signer)
	}
	return d.addr
}

func (*ED25519) GetTypeID() uint8 {
	return ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.Signer, d.Signature) {
		return ed25519.ErrInvalidSignature
	}
	return nil
}

// Actor is the address of the signer.
func (d *ED25519) Actor() codec.Address {
	return d.address()
}

func (d *ED25519) Bytes() []byte {
	b := make([]byte, ED25519Size)
	b[0] = ED25519ID
	copy(b[1:], d.Signer[:])
	copy(b[1+ed25519.PublicKeyLen:], d.Signature[:])
	return b
}

func UnmarshalED25519(bytes []byte) (*ED25519, error) {
	if len(bytes) != ED25519Size {
		return nil, fmt.Errorf("%w: size %d != %d", ErrInvalidAuth, len(bytes), ED25519Size)
	}
	if bytes[0] != ED25519ID {
		return nil, fmt.Errorf("%w: unexpected typeID %d != %d", ErrInvalidAuth, bytes[0], ED25519ID)
	}

	var d ED25519
	copy(d.Signer[:], bytes[1:])
	copy(d.Signature[:], bytes[1+ed25519.PublicKeyLen:])
	return &d, nil
}

// ED25519Factory signs messages on behalf of a single private key.
type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Sign(msg []byte) *ED25519 {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{Signer: d.priv.PublicKey(), Signature: sig}
}

func (d *ED25519Factory) Address() codec.Address {
	return NewED25519Address(d.priv.PublicKey())
}

func NewED25519Address(pk ed25519.PublicKey) codec.Address {
	return codec.CreateAddress(ED25519ID, ids.ID(hashing.ComputeHash256Array(pk[:])))
}

// NewProgramAddress derives the account of a program from the id of the
// transaction that created it.
func NewProgramAddress(txID ids.ID) codec.Address {
	return codec.CreateAddress(ProgramID, txID)
}
