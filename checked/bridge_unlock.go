package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

// maxMemoLen bounds the free-form memo on bridge unlocks.
const maxMemoLen = 64

// maxWithdrawalEventIDLen bounds the rollup withdrawal event identifier.
const maxWithdrawalEventIDLen = 256

// BridgeUnlock is the checked form of a funds release from a bridge
// account, consuming the originating rollup withdrawal event exactly once.
type BridgeUnlock struct {
	act  action.BridgeUnlock
	ctx  TransactionContext
	mode mode
}

// NewBridgeUnlock validates a top-level bridge unlock against the given
// snapshot.
func NewBridgeUnlock(act action.BridgeUnlock, ctx TransactionContext, s ledger.StateReader) (*BridgeUnlock, error) {
	return newBridgeUnlock(act, ctx, modeTopLevel, s)
}

// newSubActionBridgeUnlock validates the unlock leg of a composite action.
// The destination-is-not-a-bridge-account predicate and fee handling are
// relaxed.
func newSubActionBridgeUnlock(act action.BridgeUnlock, ctx TransactionContext, s ledger.StateReader) (*BridgeUnlock, error) {
	return newBridgeUnlock(act, ctx, modeSubAction, s)
}

func newBridgeUnlock(act action.BridgeUnlock, ctx TransactionContext, m mode, s ledger.StateReader) (*BridgeUnlock, error) {
	if act.Amount == 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if len(act.Memo) > maxMemoLen {
		return nil, fmt.Errorf("memo must not be more than %d bytes", maxMemoLen)
	}
	if err := validateWithdrawalEventID(act.RollupWithdrawalEventID); err != nil {
		return nil, err
	}
	if act.RollupBlockNumber == 0 {
		return nil, fmt.Errorf("rollup block number must be greater than zero")
	}
	if err := state.EnsureBasePrefix(s, act.To); err != nil {
		return nil, err
	}
	if err := state.EnsureBasePrefix(s, act.BridgeAddress); err != nil {
		return nil, err
	}

	c := &BridgeUnlock{act: act, ctx: ctx, mode: m}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}
	return c, nil
}

func validateWithdrawalEventID(eventID string) error {
	if eventID == "" {
		return fmt.Errorf("rollup withdrawal event id must be non-empty")
	}
	if len(eventID) > maxWithdrawalEventIDLen {
		return fmt.Errorf("rollup withdrawal event id must not be more than %d bytes", maxWithdrawalEventIDLen)
	}
	return nil
}

func (c *BridgeUnlock) Kind() action.Kind { return action.KindBridgeUnlock }

// RunMutableChecks verifies the signer holds withdrawer authority over the
// bridge account, the withdrawal event is unused, the bridge account is
// solvent and, for top-level unlocks, that the destination is not itself a
// bridge account.
func (c *BridgeUnlock) RunMutableChecks(s ledger.StateReader) error {
	withdrawer, err := state.GetBridgeWithdrawer(s, c.act.BridgeAddress)
	if err != nil {
		return err
	}
	if !c.ctx.Signer.Equal(withdrawer) {
		return fmt.Errorf("signer is not the authorized withdrawer for the bridge account")
	}
	if err := state.CheckWithdrawalEventUnused(s, c.act.BridgeAddress, c.act.RollupWithdrawalEventID); err != nil {
		return err
	}

	asset, err := c.bridgeAsset(s)
	if err != nil {
		return err
	}

	if c.mode == modeSubAction {
		balance, err := state.GetBalance(s, c.act.BridgeAddress, asset)
		if err != nil {
			return err
		}
		if balance < c.act.Amount {
			return fmt.Errorf("insufficient funds in account %s to cover amount", c.act.BridgeAddress)
		}
		return nil
	}

	toIsBridge, err := state.IsBridgeAccount(s, c.act.To)
	if err != nil {
		return err
	}
	if toIsBridge {
		return fmt.Errorf("bridge accounts cannot receive bridge unlocks")
	}
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindBridgeUnlock, c.act.Amount)
	if err != nil {
		return err
	}
	return checkCovers(s, c.act.BridgeAddress, asset, c.act.Amount, c.ctx.Signer, c.act.FeeAsset, fee)
}

// bridgeAsset returns the bridge account's asset in its IBC form, which is
// the form balances are keyed by.
func (c *BridgeUnlock) bridgeAsset(s ledger.StateReader) (types.Asset, error) {
	id, err := state.GetBridgeAsset(s, c.act.BridgeAddress)
	if err != nil {
		return types.Asset{}, err
	}
	return types.NewIBCAsset(id), nil
}

// Execute releases the funds, records the anti-replay marker and charges
// the fee.
func (c *BridgeUnlock) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	asset, err := c.bridgeAsset(s)
	if err != nil {
		return err
	}
	if err := state.DecreaseBalance(s, c.act.BridgeAddress, asset, c.act.Amount); err != nil {
		return err
	}
	if err := state.IncreaseBalance(s, c.act.To, asset, c.act.Amount); err != nil {
		return err
	}
	if err := state.PutWithdrawalEvent(s, c.act.BridgeAddress, c.act.RollupWithdrawalEventID, c.act.RollupBlockNumber); err != nil {
		return err
	}
	return chargeFee(s, c.ctx, action.KindBridgeUnlock, c.act.FeeAsset, c.act.Amount)
}
