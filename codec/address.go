// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

const AddressLen = 33

// Address identifies an account: either a key holder that signs calls or a
// deployed program. The first byte is the type of the account and the
// remaining 32 bytes are its id.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	var a Address
	a[0] = typeID
	copy(a[1:], id[:])
	return a
}

// ToAddress parses raw bytes into an Address.
func ToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidAddress, AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// StringToAddress parses the hex form produced by String or MarshalText.
func StringToAddress(s string) (Address, error) {
	b, err := LoadHex(s, AddressLen)
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return ToAddress(b)
}

// TypeID returns the account type byte.
func (a Address) TypeID() uint8 {
	return a[0]
}

// ID returns the 32 byte account id without the type byte.
func (a Address) ID() ids.ID {
	var id ids.ID
	copy(id[:], a[1:])
	return id
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return ToHex(a[:])
}

// MarshalText returns the 0x prefixed hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte("0x" + a.String()), nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := StringToAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
