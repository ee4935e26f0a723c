package state

import (
	"fmt"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

func balanceKey(addr types.Address, asset types.Asset) string {
	return "accounts/balance/" + addrKey(addr) + "/" + assetKey(asset)
}

func nonceKey(addr types.Address) string {
	return "accounts/nonce/" + addrKey(addr)
}

// GetBalance returns the balance of addr in asset. Missing accounts have
// balance zero.
func GetBalance(s ledger.StateReader, addr types.Address, asset types.Asset) (uint64, error) {
	balance, err := getUint64(s, balanceKey(addr, asset))
	if err != nil {
		return 0, fmt.Errorf("reading account balance from storage: %w", err)
	}
	return balance, nil
}

// PutBalance sets the balance of addr in asset.
func PutBalance(s ledger.StateWriter, addr types.Address, asset types.Asset, balance uint64) error {
	return putUint64(s, balanceKey(addr, asset), balance)
}

// IncreaseBalance adds amount to addr's balance in asset, failing on
// overflow.
func IncreaseBalance(s ledger.StateWriter, addr types.Address, asset types.Asset, amount uint64) error {
	balance, err := GetBalance(s, addr, asset)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("increasing balance of %s overflows", addr)
	}
	return PutBalance(s, addr, asset, balance+amount)
}

// DecreaseBalance subtracts amount from addr's balance in asset, failing if
// the balance is insufficient.
func DecreaseBalance(s ledger.StateWriter, addr types.Address, asset types.Asset, amount uint64) error {
	balance, err := GetBalance(s, addr, asset)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("insufficient funds in account %s for asset %s", addr, asset)
	}
	return PutBalance(s, addr, asset, balance-amount)
}

// GetNonce returns addr's transaction nonce. Missing accounts have nonce
// zero.
func GetNonce(s ledger.StateReader, addr types.Address) (uint32, error) {
	raw, err := s.Get(nonceKey(addr))
	if err != nil {
		return 0, fmt.Errorf("reading account nonce from storage: %w", err)
	}
	if raw == nil {
		return 0, nil
	}
	nonce, err := decodeUint64(raw)
	if err != nil {
		return 0, fmt.Errorf("decoding account nonce: %w", err)
	}
	return uint32(nonce), nil
}

// PutNonce sets addr's transaction nonce.
func PutNonce(s ledger.StateWriter, addr types.Address, nonce uint32) error {
	return putUint64(s, nonceKey(addr), uint64(nonce))
}
