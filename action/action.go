// Package action defines the sixteen user-submitted action types accepted by
// the state-transition engine, together with the fee components attached to
// each action kind. Action values are immutable intent: they are untrusted
// until turned into checked actions by the checked package.
package action

import (
	"github.com/blockberries/stateberry/ibc"
	"github.com/blockberries/stateberry/types"
)

// Kind identifies an action variant. Kind strings are stable: they key the
// fee schedule in storage and appear in events and metrics.
type Kind string

const (
	KindTransfer             Kind = "transfer"
	KindRollupDataSubmission Kind = "rollup_data_submission"
	KindValidatorUpdate      Kind = "validator_update"
	KindSudoAddressChange    Kind = "sudo_address_change"
	KindIbcRelay             Kind = "ibc_relay"
	KindIbcSudoChange        Kind = "ibc_sudo_change"
	KindIcs20Withdrawal      Kind = "ics20_withdrawal"
	KindIbcRelayerChange     Kind = "ibc_relayer_change"
	KindFeeAssetChange       Kind = "fee_asset_change"
	KindInitBridgeAccount    Kind = "init_bridge_account"
	KindBridgeLock           Kind = "bridge_lock"
	KindBridgeUnlock         Kind = "bridge_unlock"
	KindBridgeSudoChange     Kind = "bridge_sudo_change"
	KindBridgeTransfer       Kind = "bridge_transfer"
	KindFeeChange            Kind = "fee_change"
	KindRecoverIbcClient     Kind = "recover_ibc_client"
)

// Kinds lists every action kind, in catalogue order.
var Kinds = []Kind{
	KindTransfer,
	KindRollupDataSubmission,
	KindValidatorUpdate,
	KindSudoAddressChange,
	KindIbcRelay,
	KindIbcSudoChange,
	KindIcs20Withdrawal,
	KindIbcRelayerChange,
	KindFeeAssetChange,
	KindInitBridgeAccount,
	KindBridgeLock,
	KindBridgeUnlock,
	KindBridgeSudoChange,
	KindBridgeTransfer,
	KindFeeChange,
	KindRecoverIbcClient,
}

// Action is the closed set of user-submitted action types.
type Action interface {
	Kind() Kind
}

// FeeComponents is the fee schedule entry for one action kind. The fee for
// an action is base + multiplier*value, where value is the action's value
// weight (transferred amount, or payload length for rollup data).
type FeeComponents struct {
	Base       uint64 `json:"base"`
	Multiplier uint64 `json:"multiplier"`
}

// Transfer moves funds between two ordinary accounts.
type Transfer struct {
	To       types.Address
	Amount   uint64
	Asset    types.Asset
	FeeAsset types.Asset
}

func (Transfer) Kind() Kind { return KindTransfer }

// RollupDataSubmission carries an opaque payload destined for a rollup's
// block data. It touches no ledger state.
type RollupDataSubmission struct {
	RollupID types.RollupID
	Data     []byte
	FeeAsset types.Asset
}

func (RollupDataSubmission) Kind() Kind { return KindRollupDataSubmission }

// ValidatorUpdate inserts, reweights or (with power zero) removes a
// validator. Sudo-gated.
type ValidatorUpdate struct {
	VerificationKey types.VerificationKey
	Power           uint64
}

func (ValidatorUpdate) Kind() Kind { return KindValidatorUpdate }

// SudoAddressChange transfers chain governance authority. Sudo-gated.
type SudoAddressChange struct {
	NewAddress types.Address
}

func (SudoAddressChange) Kind() Kind { return KindSudoAddressChange }

// IbcRelay wraps a raw IBC relay message; validation and the packet state
// transition are delegated to the IBC handler.
type IbcRelay struct {
	Message ibc.RelayMessage
}

func (IbcRelay) Kind() Kind { return KindIbcRelay }

// IbcSudoChange transfers IBC governance authority. IBC-sudo-gated.
type IbcSudoChange struct {
	NewAddress types.Address
}

func (IbcSudoChange) Kind() Kind { return KindIbcSudoChange }

// Ics20Withdrawal sends funds to another chain over an ICS-20 transfer
// channel. When BridgeAddress is set, the withdrawal drains a bridge account
// and must carry the rollup withdrawal attribution in its memo.
type Ics20Withdrawal struct {
	Amount                  uint64
	Denom                   types.Asset
	DestinationChainAddress string
	ReturnAddress           types.Address
	TimeoutHeight           ibc.Height
	TimeoutTime             uint64
	SourceChannel           string
	FeeAsset                types.Asset
	Memo                    string
	BridgeAddress           *types.Address
	UseCompatAddress        bool
}

func (Ics20Withdrawal) Kind() Kind { return KindIcs20Withdrawal }

// IbcRelayerChange adds or removes an address from the IBC relayer set.
// Exactly one of Addition or Removal is set. IBC-sudo-gated.
type IbcRelayerChange struct {
	Addition *types.Address
	Removal  *types.Address
}

func (IbcRelayerChange) Kind() Kind { return KindIbcRelayerChange }

// FeeAssetChange adds or removes an asset from the fee-asset allow-list.
// Exactly one of Addition or Removal is set. Sudo-gated.
type FeeAssetChange struct {
	Addition *types.Asset
	Removal  *types.Asset
}

func (FeeAssetChange) Kind() Kind { return KindFeeAssetChange }

// InitBridgeAccount registers the transaction signer's account as a bridge
// account for a rollup. Sudo and withdrawer authority default to the signer
// when unset.
type InitBridgeAccount struct {
	RollupID          types.RollupID
	Asset             types.Asset
	FeeAsset          types.Asset
	SudoAddress       *types.Address
	WithdrawerAddress *types.Address
}

func (InitBridgeAccount) Kind() Kind { return KindInitBridgeAccount }

// BridgeLock moves funds from an ordinary account into a bridge account,
// producing a Deposit for the bridge's rollup.
type BridgeLock struct {
	To                      types.Address
	Amount                  uint64
	Asset                   types.Asset
	FeeAsset                types.Asset
	DestinationChainAddress string
}

func (BridgeLock) Kind() Kind { return KindBridgeLock }

// BridgeUnlock releases funds from a bridge account to an ordinary account,
// consuming a rollup withdrawal event exactly once.
type BridgeUnlock struct {
	To                      types.Address
	Amount                  uint64
	FeeAsset                types.Asset
	Memo                    string
	BridgeAddress           types.Address
	RollupBlockNumber       uint64
	RollupWithdrawalEventID string
}

func (BridgeUnlock) Kind() Kind { return KindBridgeUnlock }

// BridgeSudoChange updates a bridge account's sudo and/or withdrawer
// authority. Bridge-sudo-gated.
type BridgeSudoChange struct {
	BridgeAddress        types.Address
	NewSudoAddress       *types.Address
	NewWithdrawerAddress *types.Address
	FeeAsset             types.Asset
}

func (BridgeSudoChange) Kind() Kind { return KindBridgeSudoChange }

// BridgeTransfer moves funds between two bridge accounts atomically,
// combining the unlock of the source and the lock into the destination.
type BridgeTransfer struct {
	To                      types.Address
	Amount                  uint64
	FeeAsset                types.Asset
	DestinationChainAddress string
	BridgeAddress           types.Address
	RollupBlockNumber       uint64
	RollupWithdrawalEventID string
}

func (BridgeTransfer) Kind() Kind { return KindBridgeTransfer }

// FeeChange replaces the fee components of one action kind. Sudo-gated.
type FeeChange struct {
	ActionKind Kind
	Fees       FeeComponents
}

func (FeeChange) Kind() Kind { return KindFeeChange }

// RecoverIbcClient replaces a non-active IBC client's volatile fields with
// those of an active substitute client. Sudo-gated.
type RecoverIbcClient struct {
	SubjectClientID    string
	SubstituteClientID string
}

func (RecoverIbcClient) Kind() Kind { return KindRecoverIbcClient }
