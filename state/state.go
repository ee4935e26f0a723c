// Package state provides typed access to the engine's ledger state: account
// balances and nonces, bridge account metadata, chain authority (sudo address
// and validator set), asset mappings, the fee allow-list and schedule, IBC
// authority and escrow, and per-block context.
//
// Every function takes a ledger handle (StateReader or StateWriter) so the
// same accessors work against the store, a block delta or a nested action
// delta. Keys in the verifiable namespace contribute to the chain's root
// hash; anti-replay records, the fee-asset allow-list, staged validator
// updates and block fee totals live in the non-verifiable namespace.
package state

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

func addrKey(addr types.Address) string {
	raw := addr.Bytes()
	return hex.EncodeToString(raw[:])
}

func assetKey(asset types.Asset) string {
	id := asset.ID()
	return hex.EncodeToString(id[:])
}

func putUint64(s ledger.StateWriter, key string, value uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return s.Put(key, buf)
}

func getUint64(s ledger.StateReader, key string) (uint64, error) {
	raw, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	return decodeUint64(raw)
}

func decodeUint64(raw []byte) (uint64, error) {
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("stored value must be 8 bytes, got %d", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func encodeUint64(value uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return buf
}
