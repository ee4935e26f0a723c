package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// ValidatorUpdate is the checked form of a validator-set change. Execution
// stages the delta; the block-execution loop collects staged updates at
// block end and hands them to consensus.
type ValidatorUpdate struct {
	act action.ValidatorUpdate
	ctx TransactionContext
}

// NewValidatorUpdate validates a validator update against the given
// snapshot.
func NewValidatorUpdate(act action.ValidatorUpdate, ctx TransactionContext, s ledger.StateReader) (*ValidatorUpdate, error) {
	c := &ValidatorUpdate{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ValidatorUpdate) Kind() action.Kind { return action.KindValidatorUpdate }

// RunMutableChecks verifies sudo authorization and, for removals, that the
// validator exists and is not the only member of the set.
func (c *ValidatorUpdate) RunMutableChecks(s ledger.StateReader) error {
	sudo, err := state.GetSudoAddress(s)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(sudo) {
		return fmt.Errorf("transaction signer not authorized to update validator set")
	}
	if c.act.Power == 0 {
		vs, err := state.GetValidatorSet(s)
		if err != nil {
			return err
		}
		if !vs.Contains(c.act.VerificationKey) {
			return fmt.Errorf("cannot remove a non-existing validator")
		}
		if vs.Len() == 1 {
			return fmt.Errorf("cannot remove the only validator")
		}
	}
	return nil
}

// Execute stages the validator update for the block-end collector.
func (c *ValidatorUpdate) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	return state.StageValidatorUpdate(s, state.Validator{
		VerificationKey: c.act.VerificationKey,
		Power:           c.act.Power,
	})
}
