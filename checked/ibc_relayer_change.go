package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// IbcRelayerChange is the checked form of an IBC relayer set update.
type IbcRelayerChange struct {
	act action.IbcRelayerChange
	ctx TransactionContext
}

// NewIbcRelayerChange validates a relayer set change against the given
// snapshot.
func NewIbcRelayerChange(act action.IbcRelayerChange, ctx TransactionContext, s ledger.StateReader) (*IbcRelayerChange, error) {
	if (act.Addition == nil) == (act.Removal == nil) {
		return nil, fmt.Errorf("ibc relayer change must set exactly one of addition or removal")
	}
	addr := act.Addition
	if addr == nil {
		addr = act.Removal
	}
	if err := state.EnsureBasePrefix(s, *addr); err != nil {
		return nil, err
	}

	c := &IbcRelayerChange{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *IbcRelayerChange) Kind() action.Kind { return action.KindIbcRelayerChange }

// RunMutableChecks verifies the signer is the current IBC sudo address.
func (c *IbcRelayerChange) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetIBCSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to change ibc relayer set")
	}
	return nil
}

// Execute applies the relayer set update.
func (c *IbcRelayerChange) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if c.act.Addition != nil {
		return state.PutIBCRelayer(s, *c.act.Addition)
	}
	return state.DeleteIBCRelayer(s, *c.act.Removal)
}
