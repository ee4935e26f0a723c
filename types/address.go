// Package types provides the primitive value types shared by the stateberry
// state-transition engine: addresses, asset denominations, rollup and
// transaction identifiers, and validator keys.
package types

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressLen is the length in bytes of an account address.
const AddressLen = 20

// Address is an account address: a fixed-length byte array paired with the
// bech32m human-readable prefix it was supplied with. The prefix is part of
// the address identity for validation purposes (actions carrying addresses
// with a prefix other than the chain's base prefix are rejected), but only
// the byte array is used as the storage key.
type Address struct {
	bytes  [AddressLen]byte
	prefix string
}

// NewAddress creates an address from a prefix and raw bytes.
func NewAddress(prefix string, bytes [AddressLen]byte) Address {
	return Address{bytes: bytes, prefix: prefix}
}

// ParseAddress decodes a bech32m-encoded address string.
func ParseAddress(s string) (Address, error) {
	prefix, data, _, err := bech32.DecodeGeneric(s)
	if err != nil {
		return Address{}, fmt.Errorf("decoding bech32m address: %w", err)
	}
	converted, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("converting address bits: %w", err)
	}
	if len(converted) != AddressLen {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressLen, len(converted))
	}
	var b [AddressLen]byte
	copy(b[:], converted)
	return Address{bytes: b, prefix: prefix}, nil
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() [AddressLen]byte {
	return a.bytes
}

// Prefix returns the bech32m prefix the address was constructed with.
func (a Address) Prefix() string {
	return a.prefix
}

// WithPrefix returns a copy of the address carrying a different prefix.
func (a Address) WithPrefix(prefix string) Address {
	return Address{bytes: a.bytes, prefix: prefix}
}

// String returns the bech32m encoding of the address.
func (a Address) String() string {
	converted, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		// ConvertBits from 8 to 5 bits with padding cannot fail on valid input.
		return fmt.Sprintf("invalid-address(%x)", a.bytes)
	}
	encoded, err := bech32.EncodeM(a.prefix, converted)
	if err != nil {
		return fmt.Sprintf("invalid-address(%x)", a.bytes)
	}
	return encoded
}

// Equal reports whether two addresses have identical bytes and prefix.
func (a Address) Equal(other Address) bool {
	return a.bytes == other.bytes && a.prefix == other.prefix
}

// ErrEmptyAddress indicates an address value was required but absent.
var ErrEmptyAddress = errors.New("address must not be empty")
