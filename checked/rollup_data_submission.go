package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
)

// RollupDataSubmission is the checked form of an opaque payload submission
// for a rollup. The payload itself is forwarded by the block-assembly
// subsystem; the engine only validates and charges for it.
type RollupDataSubmission struct {
	act action.RollupDataSubmission
	ctx TransactionContext
}

// NewRollupDataSubmission validates a rollup data submission.
func NewRollupDataSubmission(act action.RollupDataSubmission, ctx TransactionContext, s ledger.StateReader) (*RollupDataSubmission, error) {
	if len(act.Data) == 0 {
		return nil, fmt.Errorf("cannot have empty data for sequence action")
	}

	c := &RollupDataSubmission{act: act, ctx: ctx}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RollupDataSubmission) Kind() action.Kind { return action.KindRollupDataSubmission }

// RunMutableChecks verifies the fee asset is allowed and the signer can
// cover the fee.
func (c *RollupDataSubmission) RunMutableChecks(s ledger.StateReader) error {
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindRollupDataSubmission, uint64(len(c.act.Data)))
	if err != nil {
		return err
	}
	return checkCovers(s, c.ctx.Signer, c.act.FeeAsset, 0, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute charges the submission fee. The payload reaches the rollup through
// block data, not through ledger state.
func (c *RollupDataSubmission) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	return chargeFee(s, c.ctx, action.KindRollupDataSubmission, c.act.FeeAsset, uint64(len(c.act.Data)))
}
