package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// SudoAddressChange is the checked form of a chain governance handover.
type SudoAddressChange struct {
	act action.SudoAddressChange
	ctx TransactionContext
}

// NewSudoAddressChange validates a sudo address change against the given
// snapshot.
func NewSudoAddressChange(act action.SudoAddressChange, ctx TransactionContext, s ledger.StateReader) (*SudoAddressChange, error) {
	if err := state.EnsureBasePrefix(s, act.NewAddress); err != nil {
		return nil, err
	}

	c := &SudoAddressChange{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SudoAddressChange) Kind() action.Kind { return action.KindSudoAddressChange }

// RunMutableChecks verifies the signer is the current sudo address.
func (c *SudoAddressChange) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to change sudo address")
	}
	return nil
}

// Execute replaces the sudo address.
func (c *SudoAddressChange) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	return state.PutSudoAddress(s, c.act.NewAddress)
}
