package state

import (
	"fmt"
	"strconv"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

func bridgeRollupIDKey(addr types.Address) string {
	return "bridge/account/" + addrKey(addr) + "/rollup_id"
}

func bridgeAssetKey(addr types.Address) string {
	return "bridge/account/" + addrKey(addr) + "/asset"
}

func bridgeSudoKey(addr types.Address) string {
	return "bridge/account/" + addrKey(addr) + "/sudo"
}

func bridgeWithdrawerKey(addr types.Address) string {
	return "bridge/account/" + addrKey(addr) + "/withdrawer"
}

func withdrawalEventKey(bridge types.Address, eventID string) string {
	return "bridge/withdrawal_event/" + addrKey(bridge) + "/" + eventID
}

// depositsObjectKey is the ephemeral object-store key under which Deposit
// records accumulate during block execution.
const depositsObjectKey = "deposits"

// Deposit records funds moved into a bridge account, destined for inclusion
// in the target rollup's block data.
type Deposit struct {
	BridgeAddress           types.Address
	RollupID                types.RollupID
	Amount                  uint64
	Asset                   types.Asset
	DestinationChainAddress string
	SourceTransactionID     types.TransactionID
	SourceActionIndex       uint64
}

// PutBridgeAccount registers addr as a bridge account for the given rollup
// and asset, with sudo and withdrawer authority.
func PutBridgeAccount(s ledger.StateWriter, addr types.Address, rollupID types.RollupID, asset types.Asset, sudo, withdrawer types.Address) error {
	if err := s.Put(bridgeRollupIDKey(addr), rollupID[:]); err != nil {
		return err
	}
	id := asset.ID()
	if err := s.Put(bridgeAssetKey(addr), id[:]); err != nil {
		return err
	}
	if err := PutBridgeSudo(s, addr, sudo); err != nil {
		return err
	}
	return PutBridgeWithdrawer(s, addr, withdrawer)
}

// IsBridgeAccount reports whether addr is registered as a bridge account.
func IsBridgeAccount(s ledger.StateReader, addr types.Address) (bool, error) {
	raw, err := s.Get(bridgeRollupIDKey(addr))
	if err != nil {
		return false, fmt.Errorf("reading bridge account from storage: %w", err)
	}
	return raw != nil, nil
}

// GetBridgeRollupID returns the rollup a bridge account forwards deposits to.
func GetBridgeRollupID(s ledger.StateReader, addr types.Address) (types.RollupID, error) {
	raw, err := s.Get(bridgeRollupIDKey(addr))
	if err != nil {
		return types.RollupID{}, fmt.Errorf("reading bridge rollup id from storage: %w", err)
	}
	if raw == nil {
		return types.RollupID{}, fmt.Errorf("account %s is not a bridge account", addr)
	}
	return types.RollupIDFromBytes(raw)
}

// GetBridgeAsset returns the asset id a bridge account accepts.
func GetBridgeAsset(s ledger.StateReader, addr types.Address) (types.AssetID, error) {
	raw, err := s.Get(bridgeAssetKey(addr))
	if err != nil {
		return types.AssetID{}, fmt.Errorf("reading bridge asset from storage: %w", err)
	}
	if raw == nil {
		return types.AssetID{}, fmt.Errorf("account %s is not a bridge account", addr)
	}
	if len(raw) != types.AssetIDLen {
		return types.AssetID{}, fmt.Errorf("stored bridge asset id must be %d bytes, got %d", types.AssetIDLen, len(raw))
	}
	var id types.AssetID
	copy(id[:], raw)
	return id, nil
}

// PutBridgeSudo sets the bridge account's sudo authority.
func PutBridgeSudo(s ledger.StateWriter, addr, sudo types.Address) error {
	raw := sudo.Bytes()
	return s.Put(bridgeSudoKey(addr), raw[:])
}

// GetBridgeSudo returns the bridge account's sudo authority, rendered with
// the chain's base prefix.
func GetBridgeSudo(s ledger.StateReader, addr types.Address) (types.Address, error) {
	return getStoredAddress(s, bridgeSudoKey(addr), "bridge sudo address")
}

// PutBridgeWithdrawer sets the address authorized to withdraw from the
// bridge account.
func PutBridgeWithdrawer(s ledger.StateWriter, addr, withdrawer types.Address) error {
	raw := withdrawer.Bytes()
	return s.Put(bridgeWithdrawerKey(addr), raw[:])
}

// GetBridgeWithdrawer returns the address authorized to withdraw from the
// bridge account.
func GetBridgeWithdrawer(s ledger.StateReader, addr types.Address) (types.Address, error) {
	return getStoredAddress(s, bridgeWithdrawerKey(addr), "bridge withdrawer address")
}

func getStoredAddress(s ledger.StateReader, key, what string) (types.Address, error) {
	raw, err := s.Get(key)
	if err != nil {
		return types.Address{}, fmt.Errorf("reading %s from storage: %w", what, err)
	}
	if raw == nil {
		return types.Address{}, fmt.Errorf("%s not set", what)
	}
	if len(raw) != types.AddressLen {
		return types.Address{}, fmt.Errorf("stored %s must be %d bytes, got %d", what, types.AddressLen, len(raw))
	}
	base, err := GetBasePrefix(s)
	if err != nil {
		return types.Address{}, err
	}
	var b [types.AddressLen]byte
	copy(b[:], raw)
	return types.NewAddress(base, b), nil
}

// CheckWithdrawalEventUnused fails if the rollup withdrawal event id has
// already been consumed for the bridge account, naming the block number that
// consumed it.
func CheckWithdrawalEventUnused(s ledger.StateReader, bridge types.Address, eventID string) error {
	raw, err := s.GetNonVerifiable(withdrawalEventKey(bridge, eventID))
	if err != nil {
		return fmt.Errorf("reading withdrawal event record from storage: %w", err)
	}
	if raw == nil {
		return nil
	}
	blockNum, err := decodeUint64(raw)
	if err != nil {
		return fmt.Errorf("decoding withdrawal event record: %w", err)
	}
	return fmt.Errorf("withdrawal event ID `%s` used by block number %d", eventID, blockNum)
}

// PutWithdrawalEvent records that the rollup withdrawal event id was
// consumed at the given rollup block number. A given (bridge, event id) pair
// is written at most once; callers must check with
// CheckWithdrawalEventUnused first.
func PutWithdrawalEvent(s ledger.StateWriter, bridge types.Address, eventID string, rollupBlockNumber uint64) error {
	return s.PutNonVerifiable(withdrawalEventKey(bridge, eventID), encodeUint64(rollupBlockNumber))
}

// CacheDeposit appends a deposit to the current block's ephemeral deposit
// cache and records its event.
func CacheDeposit(s ledger.StateWriter, deposit Deposit) {
	deposits, _ := s.GetObject(depositsObjectKey).([]Deposit)
	deposits = append(deposits, deposit)
	s.PutObject(depositsObjectKey, deposits)
	s.Record(DepositEvent(deposit))
}

// CachedDeposits returns the deposits cached during the current block.
func CachedDeposits(s ledger.StateReader) []Deposit {
	deposits, _ := s.GetObject(depositsObjectKey).([]Deposit)
	return deposits
}

// DepositEvent builds the "tx.deposit" event for a deposit.
func DepositEvent(deposit Deposit) ledger.Event {
	return ledger.NewEvent("tx.deposit").
		AddStringAttribute("bridgeAddress", deposit.BridgeAddress.String()).
		AddStringAttribute("rollupId", deposit.RollupID.String()).
		AddStringAttribute("amount", strconv.FormatUint(deposit.Amount, 10)).
		AddStringAttribute("asset", deposit.Asset.String()).
		AddStringAttribute("destinationChainAddress", deposit.DestinationChainAddress).
		AddStringAttribute("sourceTransactionId", deposit.SourceTransactionID.String()).
		AddStringAttribute("sourceActionIndex", strconv.FormatUint(deposit.SourceActionIndex, 10))
}
