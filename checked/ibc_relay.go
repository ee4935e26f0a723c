package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ibc"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// IbcRelay is the checked form of a raw IBC relay message. Per-message
// validation and the resulting state transition are delegated to the IBC
// handler; the engine checks only that the signer is a permitted relayer.
type IbcRelay struct {
	act action.IbcRelay
	ctx TransactionContext
}

// NewIbcRelay validates a relay submission against the given snapshot.
func NewIbcRelay(act action.IbcRelay, ctx TransactionContext, s ledger.StateReader) (*IbcRelay, error) {
	if act.Message == nil {
		return nil, fmt.Errorf("ibc relay message must be set")
	}

	c := &IbcRelay{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *IbcRelay) Kind() action.Kind { return action.KindIbcRelay }

// RunMutableChecks verifies the signer is in the IBC relayer set.
func (c *IbcRelay) RunMutableChecks(s ledger.StateReader) error {
	isRelayer, err := state.IsIBCRelayer(s, c.ctx.Signer)
	if err != nil {
		return err
	}
	if !isRelayer {
		return fmt.Errorf("transaction signer not authorized to submit ibc relay actions")
	}
	return nil
}

// Execute hands the message to the IBC handler under the current block
// time.
func (c *IbcRelay) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	now, err := state.GetBlockTimestamp(s)
	if err != nil {
		return err
	}
	return ibc.HandleRelay(s, c.act.Message, now)
}
