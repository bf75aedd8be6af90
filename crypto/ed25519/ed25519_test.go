// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePrivateKeyDifferent(t *testing.T) {
	require := require.New(t)
	const numKeysToGenerate = 10
	seen := make(map[PrivateKey]struct{}, numKeysToGenerate)

	for i := 0; i < numKeysToGenerate; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		require.NotEqual(EmptyPrivateKey, priv)
		seen[priv] = struct{}{}
	}
	require.Len(seen, numKeysToGenerate)
}

func TestSignVerify(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err)

	msg := []byte("increment by 3")
	sig := Sign(msg, priv)
	require.True(Verify(msg, priv.PublicKey(), sig))
	require.False(Verify([]byte("increment by 4"), priv.PublicKey(), sig))

	other, err := GeneratePrivateKey()
	require.NoError(err)
	require.False(Verify(msg, other.PublicKey(), sig))
}

func TestPrivateKeyHex(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err)

	parsed, err := PrivateKeyFromHex(priv.ToHex())
	require.NoError(err)
	require.Equal(priv, parsed)

	parsed, err = PrivateKeyFromHex("0x" + priv.ToHex())
	require.NoError(err)
	require.Equal(priv, parsed)

	_, err = PrivateKeyFromHex("abcd")
	require.ErrorIs(err, ErrInvalidPrivateKey)
}

func TestKeyFromBytes(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err)
	pub := priv.PublicKey()

	parsed, err := PublicKeyFromBytes(pub[:])
	require.NoError(err)
	require.Equal(pub, parsed)

	_, err = PublicKeyFromBytes(pub[1:])
	require.ErrorIs(err, ErrInvalidPublicKey)

	sig := Sign([]byte("get"), priv)
	parsedSig, err := SignatureFromBytes(sig[:])
	require.NoError(err)
	require.Equal(sig, parsedSig)

	_, err = SignatureFromBytes(nil)
	require.ErrorIs(err, ErrInvalidSignature)
}
