package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

// InitBridgeAccount is the checked form of a bridge account registration.
// The transaction signer's account becomes the bridge account; sudo and
// withdrawer authority default to the signer when unset.
type InitBridgeAccount struct {
	act        action.InitBridgeAccount
	ctx        TransactionContext
	sudo       types.Address
	withdrawer types.Address
}

// NewInitBridgeAccount validates a bridge account registration against the
// given snapshot.
func NewInitBridgeAccount(act action.InitBridgeAccount, ctx TransactionContext, s ledger.StateReader) (*InitBridgeAccount, error) {
	sudo := ctx.Signer
	if act.SudoAddress != nil {
		if err := state.EnsureBasePrefix(s, *act.SudoAddress); err != nil {
			return nil, err
		}
		sudo = *act.SudoAddress
	}
	withdrawer := ctx.Signer
	if act.WithdrawerAddress != nil {
		if err := state.EnsureBasePrefix(s, *act.WithdrawerAddress); err != nil {
			return nil, err
		}
		withdrawer = *act.WithdrawerAddress
	}

	c := &InitBridgeAccount{act: act, ctx: ctx, sudo: sudo, withdrawer: withdrawer}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *InitBridgeAccount) Kind() action.Kind { return action.KindInitBridgeAccount }

// RunMutableChecks verifies the signer's account is not already a bridge
// account, the fee asset is allowed, and the signer can cover the fee.
func (c *InitBridgeAccount) RunMutableChecks(s ledger.StateReader) error {
	isBridge, err := state.IsBridgeAccount(s, c.ctx.Signer)
	if err != nil {
		return err
	}
	if isBridge {
		return fmt.Errorf("bridge account already exists")
	}
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindInitBridgeAccount, 0)
	if err != nil {
		return err
	}
	return checkCovers(s, c.ctx.Signer, c.act.FeeAsset, 0, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute registers the bridge account and charges the fee.
func (c *InitBridgeAccount) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if err := state.PutBridgeAccount(s, c.ctx.Signer, c.act.RollupID, c.act.Asset, c.sudo, c.withdrawer); err != nil {
		return err
	}
	return chargeFee(s, c.ctx, action.KindInitBridgeAccount, c.act.FeeAsset, 0)
}
