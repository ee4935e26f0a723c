package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// RollupIDLen is the length in bytes of a rollup identifier.
const RollupIDLen = 32

// RollupID identifies a rollup whose data is sequenced by this chain.
type RollupID [RollupIDLen]byte

// NewRollupID derives a rollup ID from an arbitrary-length name by hashing.
func NewRollupID(name []byte) RollupID {
	return RollupID(sha256.Sum256(name))
}

// RollupIDFromBytes builds a rollup ID from exactly RollupIDLen raw bytes.
func RollupIDFromBytes(raw []byte) (RollupID, error) {
	if len(raw) != RollupIDLen {
		return RollupID{}, fmt.Errorf("rollup id must be %d bytes, got %d", RollupIDLen, len(raw))
	}
	var id RollupID
	copy(id[:], raw)
	return id, nil
}

// String returns the hex encoding of the rollup ID.
func (id RollupID) String() string {
	return hex.EncodeToString(id[:])
}

// TransactionIDLen is the length in bytes of a transaction identifier.
const TransactionIDLen = 32

// TransactionID is the hash identifying a sequencer transaction.
type TransactionID [TransactionIDLen]byte

// String returns the hex encoding of the transaction ID.
func (id TransactionID) String() string {
	return hex.EncodeToString(id[:])
}
