package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// IbcSudoChange is the checked form of an IBC governance handover.
type IbcSudoChange struct {
	act action.IbcSudoChange
	ctx TransactionContext
}

// NewIbcSudoChange validates an IBC sudo change against the given snapshot.
func NewIbcSudoChange(act action.IbcSudoChange, ctx TransactionContext, s ledger.StateReader) (*IbcSudoChange, error) {
	if err := state.EnsureBasePrefix(s, act.NewAddress); err != nil {
		return nil, err
	}

	c := &IbcSudoChange{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *IbcSudoChange) Kind() action.Kind { return action.KindIbcSudoChange }

// RunMutableChecks verifies the signer is the current IBC sudo address.
func (c *IbcSudoChange) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetIBCSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to change ibc sudo address")
	}
	return nil
}

// Execute replaces the IBC sudo address.
func (c *IbcSudoChange) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	return state.PutIBCSudoAddress(s, c.act.NewAddress)
}
