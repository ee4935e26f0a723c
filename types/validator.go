package types

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// VerificationKeyLen is the length in bytes of a validator verification key.
const VerificationKeyLen = ed25519.PublicKeySize

// VerificationKey is a validator's ed25519 public key.
type VerificationKey [VerificationKeyLen]byte

// VerificationKeyFromBytes builds a verification key from raw bytes.
func VerificationKeyFromBytes(raw []byte) (VerificationKey, error) {
	if len(raw) != VerificationKeyLen {
		return VerificationKey{}, fmt.Errorf("verification key must be %d bytes, got %d", VerificationKeyLen, len(raw))
	}
	var key VerificationKey
	copy(key[:], raw)
	return key, nil
}

// Verify reports whether sig is a valid signature over msg by this key.
func (k VerificationKey) Verify(msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(k[:]), msg, sig)
}

// String returns the hex encoding of the key.
func (k VerificationKey) String() string {
	return hex.EncodeToString(k[:])
}
