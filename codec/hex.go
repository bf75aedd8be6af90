// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "encoding/hex"

// ToHex converts bytes to a hex string without prefix.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// LoadHex converts a hex encoded string (with or without 0x) into bytes.
// Pass -1 as [expectedSize] to accept any length.
func LoadHex(s string, expectedSize int) ([]byte, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}

	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if expectedSize != -1 && len(bytes) != expectedSize {
		return nil, ErrInvalidSize
	}
	return bytes, nil
}

// Bytes is a byte slice that marshals to hex in JSON and YAML.
type Bytes []byte

func (b Bytes) String() string {
	return ToHex(b)
}

// MarshalText returns the hex representation of b.
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText sets b to the bytes represented by text.
func (b *Bytes) UnmarshalText(text []byte) error {
	bytes, err := LoadHex(string(text), -1)
	if err != nil {
		return err
	}
	*b = bytes
	return nil
}
