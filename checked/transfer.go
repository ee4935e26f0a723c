package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// Transfer is the checked form of a funds transfer between two ordinary
// accounts.
type Transfer struct {
	act action.Transfer
	ctx TransactionContext
}

// NewTransfer validates a transfer action against the given snapshot.
func NewTransfer(act action.Transfer, ctx TransactionContext, s ledger.StateReader) (*Transfer, error) {
	if act.Amount == 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if err := state.EnsureBasePrefix(s, act.To); err != nil {
		return nil, err
	}

	c := &Transfer{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Transfer) Kind() action.Kind { return action.KindTransfer }

// RunMutableChecks verifies the signer is not a bridge account, the fee
// asset is allowed, and the signer can cover the amount and fee.
func (c *Transfer) RunMutableChecks(s ledger.StateReader) error {
	isBridge, err := state.IsBridgeAccount(s, c.ctx.Signer)
	if err != nil {
		return err
	}
	if isBridge {
		return fmt.Errorf("cannot transfer out of bridge account; BridgeUnlock or BridgeTransfer must be used")
	}
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindTransfer, c.act.Amount)
	if err != nil {
		return err
	}
	return checkCovers(s, c.ctx.Signer, c.act.Asset, c.act.Amount, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute moves the funds and charges the fee.
func (c *Transfer) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if err := state.DecreaseBalance(s, c.ctx.Signer, c.act.Asset, c.act.Amount); err != nil {
		return err
	}
	if err := state.IncreaseBalance(s, c.act.To, c.act.Asset, c.act.Amount); err != nil {
		return err
	}
	return chargeFee(s, c.ctx, action.KindTransfer, c.act.FeeAsset, c.act.Amount)
}
