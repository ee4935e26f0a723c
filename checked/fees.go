package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

// feeDue computes the fee for an action of the given kind and value weight.
func feeDue(s ledger.StateReader, kind action.Kind, value uint64) (uint64, error) {
	fc, err := state.GetFeeComponents(s, kind)
	if err != nil {
		return 0, err
	}
	variable := fc.Multiplier * value
	if fc.Multiplier != 0 && variable/fc.Multiplier != value {
		return 0, fmt.Errorf("fee calculation for %s overflows", kind)
	}
	fee := fc.Base + variable
	if fee < fc.Base {
		return 0, fmt.Errorf("fee calculation for %s overflows", kind)
	}
	return fee, nil
}

// ensureFeeAssetAllowed verifies the fee asset is on the allow-list.
func ensureFeeAssetAllowed(s ledger.StateReader, feeAsset types.Asset) error {
	allowed, err := state.IsAllowedFeeAsset(s, feeAsset)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("asset `%s` is not an allowed fee asset", feeAsset)
	}
	return nil
}

// checkCovers verifies that the spending accounts can cover both the
// transferred amount and the fee, collapsing to a single combined check when
// the amount and the fee are drawn from the same account and asset.
func checkCovers(s ledger.StateReader, from types.Address, asset types.Asset, amount uint64, feePayer types.Address, feeAsset types.Asset, fee uint64) error {
	if from.Equal(feePayer) && asset.Equal(feeAsset) {
		needed := amount + fee
		if needed < amount {
			return fmt.Errorf("amount and fee overflow")
		}
		balance, err := state.GetBalance(s, from, asset)
		if err != nil {
			return err
		}
		if balance < needed {
			return fmt.Errorf("insufficient funds in account %s to cover amount and fee", from)
		}
		return nil
	}

	balance, err := state.GetBalance(s, from, asset)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("insufficient funds in account %s to cover amount", from)
	}
	feeBalance, err := state.GetBalance(s, feePayer, feeAsset)
	if err != nil {
		return err
	}
	if feeBalance < fee {
		return fmt.Errorf("insufficient funds in account %s to cover fee", feePayer)
	}
	return nil
}

// chargeFee deducts the fee for the action from the signer, accrues it into
// the block fee totals and records the fee event. Solvency is guaranteed by
// the caller's mutable checks.
func chargeFee(s ledger.StateWriter, ctx TransactionContext, kind action.Kind, feeAsset types.Asset, value uint64) error {
	fee, err := feeDue(s, kind, value)
	if err != nil {
		return err
	}
	if fee == 0 {
		return nil
	}
	if err := state.DecreaseBalance(s, ctx.Signer, feeAsset, fee); err != nil {
		return fmt.Errorf("deducting fee: %w", err)
	}
	if err := state.AddToBlockFees(s, feeAsset, fee); err != nil {
		return err
	}
	s.Record(state.FeeEvent(kind, feeAsset, fee, ctx.PositionInTransaction))
	return nil
}
