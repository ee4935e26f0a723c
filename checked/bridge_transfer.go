package checked

import (
	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

// BridgeTransfer is the checked form of an atomic funds move between two
// bridge accounts. It is composed of the unlock leg of the source bridge and
// the lock leg of the destination bridge, both validated against the same
// snapshot and sharing the transaction's authorization context.
type BridgeTransfer struct {
	act    action.BridgeTransfer
	ctx    TransactionContext
	unlock *BridgeUnlock
	lock   *BridgeLock
}

// NewBridgeTransfer validates a bridge transfer against the given snapshot
// by constructing both sub-action legs. The lock leg's asset is forced to
// the source bridge account's asset.
func NewBridgeTransfer(act action.BridgeTransfer, ctx TransactionContext, s ledger.StateReader) (*BridgeTransfer, error) {
	unlock, err := newSubActionBridgeUnlock(action.BridgeUnlock{
		To:                      act.To,
		Amount:                  act.Amount,
		FeeAsset:                act.FeeAsset,
		BridgeAddress:           act.BridgeAddress,
		RollupBlockNumber:       act.RollupBlockNumber,
		RollupWithdrawalEventID: act.RollupWithdrawalEventID,
	}, ctx, s)
	if err != nil {
		return nil, err
	}

	assetID, err := state.GetBridgeAsset(s, act.BridgeAddress)
	if err != nil {
		return nil, err
	}
	lock, err := newSubActionBridgeLock(action.BridgeLock{
		To:                      act.To,
		Amount:                  act.Amount,
		Asset:                   types.NewIBCAsset(assetID),
		FeeAsset:                act.FeeAsset,
		DestinationChainAddress: act.DestinationChainAddress,
	}, ctx, s)
	if err != nil {
		return nil, err
	}

	c := &BridgeTransfer{act: act, ctx: ctx, unlock: unlock, lock: lock}
	if err := c.feeChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *BridgeTransfer) Kind() action.Kind { return action.KindBridgeTransfer }

// RunMutableChecks runs both legs' mutable checks against the same state,
// plus the composite's own fee checks.
func (c *BridgeTransfer) RunMutableChecks(s ledger.StateReader) error {
	if err := c.unlock.RunMutableChecks(s); err != nil {
		return err
	}
	if err := c.lock.RunMutableChecks(s); err != nil {
		return err
	}
	return c.feeChecks(s)
}

// feeChecks verifies the composite's fee. The source bridge account funds
// the amount and the signer funds the fee; checkCovers collapses the two
// into one combined requirement when they are the same account and asset.
func (c *BridgeTransfer) feeChecks(s ledger.StateReader) error {
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindBridgeTransfer, c.act.Amount)
	if err != nil {
		return err
	}
	asset, err := c.unlock.bridgeAsset(s)
	if err != nil {
		return err
	}
	return checkCovers(s, c.act.BridgeAddress, asset, c.act.Amount, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute re-validates both legs and applies the combined effect: one direct
// balance move from source to destination bridge account, the lock leg's
// Deposit and event, the unlock leg's anti-replay marker, and the composite
// fee.
func (c *BridgeTransfer) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	asset, err := c.unlock.bridgeAsset(s)
	if err != nil {
		return err
	}
	if err := state.DecreaseBalance(s, c.act.BridgeAddress, asset, c.act.Amount); err != nil {
		return err
	}
	if err := state.IncreaseBalance(s, c.act.To, asset, c.act.Amount); err != nil {
		return err
	}
	state.CacheDeposit(s, c.lock.Deposit())
	if err := state.PutWithdrawalEvent(s, c.act.BridgeAddress, c.act.RollupWithdrawalEventID, c.act.RollupBlockNumber); err != nil {
		return err
	}
	return chargeFee(s, c.ctx, action.KindBridgeTransfer, c.act.FeeAsset, c.act.Amount)
}
