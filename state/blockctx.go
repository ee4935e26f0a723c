package state

import (
	"fmt"
	"time"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

const (
	basePrefixKey      = "prefixes/base"
	ibcCompatPrefixKey = "prefixes/ibc_compat"
	chainIDKey         = "block/chain_id"
	blockHeightKey     = "block/height"
	blockTimestampKey  = "block/timestamp"
)

// PutBasePrefix stores the chain's permitted address prefix.
func PutBasePrefix(s ledger.StateWriter, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("base prefix must not be empty")
	}
	return s.Put(basePrefixKey, []byte(prefix))
}

// GetBasePrefix returns the chain's permitted address prefix.
func GetBasePrefix(s ledger.StateReader) (string, error) {
	raw, err := s.Get(basePrefixKey)
	if err != nil {
		return "", fmt.Errorf("reading base prefix from storage: %w", err)
	}
	if raw == nil {
		return "", fmt.Errorf("base prefix not set")
	}
	return string(raw), nil
}

// PutIBCCompatPrefix stores the compat prefix accepted on ICS-20 withdrawal
// return addresses alongside the base prefix.
func PutIBCCompatPrefix(s ledger.StateWriter, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("ibc compat prefix must not be empty")
	}
	return s.Put(ibcCompatPrefixKey, []byte(prefix))
}

// GetIBCCompatPrefix returns the compat address prefix.
func GetIBCCompatPrefix(s ledger.StateReader) (string, error) {
	raw, err := s.Get(ibcCompatPrefixKey)
	if err != nil {
		return "", fmt.Errorf("reading ibc compat prefix from storage: %w", err)
	}
	if raw == nil {
		return "", fmt.Errorf("ibc compat prefix not set")
	}
	return string(raw), nil
}

// EnsureBasePrefix verifies that addr carries the chain's permitted prefix.
func EnsureBasePrefix(s ledger.StateReader, addr types.Address) error {
	base, err := GetBasePrefix(s)
	if err != nil {
		return err
	}
	if addr.Prefix() != base {
		return fmt.Errorf("address has prefix `%s` but only `%s` is permitted", addr.Prefix(), base)
	}
	return nil
}

// PutChainID stores the chain identifier.
func PutChainID(s ledger.StateWriter, chainID string) error {
	if chainID == "" {
		return fmt.Errorf("chain id must not be empty")
	}
	return s.Put(chainIDKey, []byte(chainID))
}

// GetChainID returns the chain identifier.
func GetChainID(s ledger.StateReader) (string, error) {
	raw, err := s.Get(chainIDKey)
	if err != nil {
		return "", fmt.Errorf("reading chain id from storage: %w", err)
	}
	if raw == nil {
		return "", fmt.Errorf("chain id not set")
	}
	return string(raw), nil
}

// PutBlockHeight stores the height of the block being executed.
func PutBlockHeight(s ledger.StateWriter, height uint64) error {
	return putUint64(s, blockHeightKey, height)
}

// GetBlockHeight returns the height of the block being executed.
func GetBlockHeight(s ledger.StateReader) (uint64, error) {
	height, err := getUint64(s, blockHeightKey)
	if err != nil {
		return 0, fmt.Errorf("reading block height from storage: %w", err)
	}
	return height, nil
}

// PutBlockTimestamp stores the consensus timestamp of the block being
// executed.
func PutBlockTimestamp(s ledger.StateWriter, ts time.Time) error {
	buf, err := ts.UTC().MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding block timestamp: %w", err)
	}
	return s.Put(blockTimestampKey, buf)
}

// GetBlockTimestamp returns the consensus timestamp of the block being
// executed.
func GetBlockTimestamp(s ledger.StateReader) (time.Time, error) {
	raw, err := s.Get(blockTimestampKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading block timestamp from storage: %w", err)
	}
	if raw == nil {
		return time.Time{}, fmt.Errorf("block timestamp not set")
	}
	var ts time.Time
	if err := ts.UnmarshalBinary(raw); err != nil {
		return time.Time{}, fmt.Errorf("decoding block timestamp: %w", err)
	}
	return ts, nil
}
