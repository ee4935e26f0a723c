package state

import (
	"fmt"

	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

const ibcSudoAddressKey = "ibc/sudo"

func ibcRelayerKey(addr types.Address) string {
	return "ibc/relayer/" + addrKey(addr)
}

func channelEscrowKey(channel string, asset types.Asset) string {
	return "ibc/escrow/" + channel + "/" + assetKey(asset)
}

// PutIBCSudoAddress sets the IBC governance authority.
func PutIBCSudoAddress(s ledger.StateWriter, sudo types.Address) error {
	raw := sudo.Bytes()
	return s.Put(ibcSudoAddressKey, raw[:])
}

// GetIBCSudoAddress returns the IBC governance authority.
func GetIBCSudoAddress(s ledger.StateReader) (types.Address, error) {
	return getStoredAddress(s, ibcSudoAddressKey, "ibc sudo address")
}

// PutIBCRelayer adds addr to the set of addresses permitted to submit IBC
// relay actions.
func PutIBCRelayer(s ledger.StateWriter, addr types.Address) error {
	return s.Put(ibcRelayerKey(addr), []byte{1})
}

// DeleteIBCRelayer removes addr from the relayer set.
func DeleteIBCRelayer(s ledger.StateWriter, addr types.Address) error {
	return s.Delete(ibcRelayerKey(addr))
}

// IsIBCRelayer reports whether addr may submit IBC relay actions.
func IsIBCRelayer(s ledger.StateReader, addr types.Address) (bool, error) {
	raw, err := s.Get(ibcRelayerKey(addr))
	if err != nil {
		return false, fmt.Errorf("reading ibc relayer set from storage: %w", err)
	}
	return raw != nil, nil
}

// GetChannelEscrow returns the amount of asset escrowed on channel.
func GetChannelEscrow(s ledger.StateReader, channel string, asset types.Asset) (uint64, error) {
	balance, err := getUint64(s, channelEscrowKey(channel, asset))
	if err != nil {
		return 0, fmt.Errorf("reading channel escrow from storage: %w", err)
	}
	return balance, nil
}

// IncreaseChannelEscrow adds amount of asset to the channel's escrow.
func IncreaseChannelEscrow(s ledger.StateWriter, channel string, asset types.Asset, amount uint64) error {
	balance, err := GetChannelEscrow(s, channel, asset)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("escrow balance for channel %s overflows", channel)
	}
	return putUint64(s, channelEscrowKey(channel, asset), balance+amount)
}

// DecreaseChannelEscrow releases amount of asset from the channel's escrow.
func DecreaseChannelEscrow(s ledger.StateWriter, channel string, asset types.Asset, amount uint64) error {
	balance, err := GetChannelEscrow(s, channel, asset)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("insufficient escrow balance on channel %s for asset %s", channel, asset)
	}
	return putUint64(s, channelEscrowKey(channel, asset), balance-amount)
}
