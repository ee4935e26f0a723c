package checked

import (
	"fmt"
	"slices"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// FeeChange is the checked form of a fee schedule update for one action
// kind.
type FeeChange struct {
	act action.FeeChange
	ctx TransactionContext
}

// NewFeeChange validates a fee change against the given snapshot.
func NewFeeChange(act action.FeeChange, ctx TransactionContext, s ledger.StateReader) (*FeeChange, error) {
	if !slices.Contains(action.Kinds, act.ActionKind) {
		return nil, fmt.Errorf("unknown action kind `%s`", act.ActionKind)
	}

	c := &FeeChange{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FeeChange) Kind() action.Kind { return action.KindFeeChange }

// RunMutableChecks verifies the signer is the current sudo address.
func (c *FeeChange) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to change fees")
	}
	return nil
}

// Execute replaces the fee components for the target action kind.
func (c *FeeChange) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	return state.PutFeeComponents(s, c.act.ActionKind, c.act.Fees)
}
