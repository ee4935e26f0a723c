package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// FeeAssetChange is the checked form of a fee-asset allow-list update.
type FeeAssetChange struct {
	act action.FeeAssetChange
	ctx TransactionContext
}

// NewFeeAssetChange validates a fee asset change against the given snapshot.
func NewFeeAssetChange(act action.FeeAssetChange, ctx TransactionContext, s ledger.StateReader) (*FeeAssetChange, error) {
	if (act.Addition == nil) == (act.Removal == nil) {
		return nil, fmt.Errorf("fee asset change must set exactly one of addition or removal")
	}

	c := &FeeAssetChange{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FeeAssetChange) Kind() action.Kind { return action.KindFeeAssetChange }

// RunMutableChecks verifies sudo authorization and, for removals, that the
// asset is not the last allowed fee asset.
func (c *FeeAssetChange) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to change fee assets")
	}
	if c.act.Removal != nil {
		allowed, err := state.AllowedFeeAssets(s)
		if err != nil {
			return err
		}
		if len(allowed) == 1 && allowed[0].Equal(*c.act.Removal) {
			return state.ErrLastFeeAsset
		}
	}
	return nil
}

// Execute applies the allow-list update.
func (c *FeeAssetChange) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if c.act.Addition != nil {
		return state.PutAllowedFeeAsset(s, *c.act.Addition)
	}
	return state.DeleteAllowedFeeAsset(s, *c.act.Removal)
}
