// Package checked implements the checked action engine: the validated,
// ready-to-execute form of every user-submitted action.
//
// Every variant follows the same two-phase protocol. Construction runs the
// immutable checks (predicates that cannot change between construction and
// execution) and then the mutable checks once, to fail fast. Execution
// re-runs the mutable checks unconditionally, because the action may have
// been constructed against an earlier snapshot, and only then applies its
// storage writes and events. An action whose checks fail at execution
// performs no writes at all.
package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

// TransactionContext carries the authenticated context an action runs in:
// the transaction's signer, its id, and the action's position within it.
type TransactionContext struct {
	Signer                types.Address
	TransactionID         types.TransactionID
	PositionInTransaction uint64
}

// CheckedAction is the validated form of one action, ready for execution.
type CheckedAction interface {
	// Kind returns the action kind this checked action was built from.
	Kind() action.Kind

	// RunMutableChecks runs the predicates that read mutable ledger state.
	// It is idempotent and side-effect-free, and is re-run at the start of
	// every Execute.
	RunMutableChecks(s ledger.StateReader) error

	// Execute re-runs the mutable checks and, on success, applies the
	// action's storage writes and events. On failure no writes are
	// performed.
	Execute(s ledger.StateWriter) error
}

// New constructs the checked form of a, validating it against the given
// state snapshot. A non-nil error rejects the whole containing transaction.
func New(a action.Action, ctx TransactionContext, s ledger.StateReader) (CheckedAction, error) {
	switch act := a.(type) {
	case action.Transfer:
		return NewTransfer(act, ctx, s)
	case action.RollupDataSubmission:
		return NewRollupDataSubmission(act, ctx, s)
	case action.ValidatorUpdate:
		return NewValidatorUpdate(act, ctx, s)
	case action.SudoAddressChange:
		return NewSudoAddressChange(act, ctx, s)
	case action.IbcRelay:
		return NewIbcRelay(act, ctx, s)
	case action.IbcSudoChange:
		return NewIbcSudoChange(act, ctx, s)
	case action.Ics20Withdrawal:
		return NewIcs20Withdrawal(act, ctx, s)
	case action.IbcRelayerChange:
		return NewIbcRelayerChange(act, ctx, s)
	case action.FeeAssetChange:
		return NewFeeAssetChange(act, ctx, s)
	case action.InitBridgeAccount:
		return NewInitBridgeAccount(act, ctx, s)
	case action.BridgeLock:
		return NewBridgeLock(act, ctx, s)
	case action.BridgeUnlock:
		return NewBridgeUnlock(act, ctx, s)
	case action.BridgeSudoChange:
		return NewBridgeSudoChange(act, ctx, s)
	case action.BridgeTransfer:
		return NewBridgeTransfer(act, ctx, s)
	case action.FeeChange:
		return NewFeeChange(act, ctx, s)
	case action.RecoverIbcClient:
		return NewRecoverIbcClient(act, ctx, s)
	default:
		return nil, fmt.Errorf("unsupported action type %T", a)
	}
}
