// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"

	"github.com/hdevalence/ed25519consensus"

	"github.com/ava-labs/incrementer/codec"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// Signatures are verified under ZIP-215 (https://zips.z.cash/zip-0215) so
// every node accepts the same set of signatures regardless of which ed25519
// implementation produced them.
const (
	PublicKeyLen  = ed25519.PublicKeySize
	PrivateKeyLen = ed25519.PrivateKeySize
	// ed25519.PrivateKey is seed|publicKey, the public key starts here.
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize
)

var (
	EmptyPublicKey  = PublicKey{}
	EmptyPrivateKey = PrivateKey{}
	EmptySignature  = Signature{}
)

// GeneratePrivateKey returns a Ed25519 PrivateKey.
func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey returns the public half of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

// ToHex encodes p for storage in key files.
func (p PrivateKey) ToHex() string {
	return codec.ToHex(p[:])
}

// PrivateKeyFromHex parses a key produced by ToHex.
func PrivateKeyFromHex(s string) (PrivateKey, error) {
	b, err := codec.LoadHex(s, PrivateKeyLen)
	if err != nil {
		return EmptyPrivateKey, ErrInvalidPrivateKey
	}
	return PrivateKey(b), nil
}

// PublicKeyFromBytes copies b into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLen {
		return EmptyPublicKey, ErrInvalidPublicKey
	}
	return PublicKey(b), nil
}

// SignatureFromBytes copies b into a Signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureLen {
		return EmptySignature, ErrInvalidSignature
	}
	return Signature(b), nil
}

// Sign returns a valid signature for msg using pk.
func Sign(msg []byte, pk PrivateKey) Signature {
	return Signature(ed25519.Sign(pk[:], msg))
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}
