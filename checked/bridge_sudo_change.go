package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// BridgeSudoChange is the checked form of a bridge account authority
// update.
type BridgeSudoChange struct {
	act action.BridgeSudoChange
	ctx TransactionContext
}

// NewBridgeSudoChange validates a bridge sudo change against the given
// snapshot.
func NewBridgeSudoChange(act action.BridgeSudoChange, ctx TransactionContext, s ledger.StateReader) (*BridgeSudoChange, error) {
	if act.NewSudoAddress == nil && act.NewWithdrawerAddress == nil {
		return nil, fmt.Errorf("bridge sudo change must set at least one of new sudo address or new withdrawer address")
	}
	if err := state.EnsureBasePrefix(s, act.BridgeAddress); err != nil {
		return nil, err
	}
	if act.NewSudoAddress != nil {
		if err := state.EnsureBasePrefix(s, *act.NewSudoAddress); err != nil {
			return nil, err
		}
	}
	if act.NewWithdrawerAddress != nil {
		if err := state.EnsureBasePrefix(s, *act.NewWithdrawerAddress); err != nil {
			return nil, err
		}
	}

	c := &BridgeSudoChange{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *BridgeSudoChange) Kind() action.Kind { return action.KindBridgeSudoChange }

// RunMutableChecks verifies the signer holds sudo authority over the bridge
// account, the fee asset is allowed, and the signer can cover the fee.
func (c *BridgeSudoChange) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetBridgeSudo(s, c.act.BridgeAddress)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to change bridge sudo address")
	}
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindBridgeSudoChange, 0)
	if err != nil {
		return err
	}
	return checkCovers(s, c.ctx.Signer, c.act.FeeAsset, 0, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute applies the authority update and charges the fee.
func (c *BridgeSudoChange) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if c.act.NewSudoAddress != nil {
		if err := state.PutBridgeSudo(s, c.act.BridgeAddress, *c.act.NewSudoAddress); err != nil {
			return err
		}
	}
	if c.act.NewWithdrawerAddress != nil {
		if err := state.PutBridgeWithdrawer(s, c.act.BridgeAddress, *c.act.NewWithdrawerAddress); err != nil {
			return err
		}
	}
	return chargeFee(s, c.ctx, action.KindBridgeSudoChange, c.act.FeeAsset, 0)
}
