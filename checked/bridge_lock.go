package checked

import (
	"fmt"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
)

// mode distinguishes a top-level action from one embedded in a composite.
// Sub-action legs share all predicates with their top-level form except the
// one that constrains the transaction signer's own account, and leave fee
// handling to the enclosing composite.
type mode int

const (
	modeTopLevel mode = iota
	modeSubAction
)

// BridgeLock is the checked form of a funds lock into a bridge account. The
// Deposit it emits is computed once at construction; the trace-form asset
// resolution it needs cannot fail again at execution because the asset
// mapping is append-only.
type BridgeLock struct {
	act     action.BridgeLock
	ctx     TransactionContext
	mode    mode
	deposit state.Deposit
}

// NewBridgeLock validates a top-level bridge lock against the given
// snapshot.
func NewBridgeLock(act action.BridgeLock, ctx TransactionContext, s ledger.StateReader) (*BridgeLock, error) {
	return newBridgeLock(act, ctx, modeTopLevel, s)
}

// newSubActionBridgeLock validates the lock leg of a composite action. The
// signer-is-not-a-bridge-account predicate and fee handling are relaxed; the
// enclosing composite owns solvency and fees.
func newSubActionBridgeLock(act action.BridgeLock, ctx TransactionContext, s ledger.StateReader) (*BridgeLock, error) {
	return newBridgeLock(act, ctx, modeSubAction, s)
}

func newBridgeLock(act action.BridgeLock, ctx TransactionContext, m mode, s ledger.StateReader) (*BridgeLock, error) {
	if act.Amount == 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if err := state.EnsureBasePrefix(s, act.To); err != nil {
		return nil, err
	}

	c := &BridgeLock{act: act, ctx: ctx, mode: m}
	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}

	rollupID, err := state.GetBridgeRollupID(s, act.To)
	if err != nil {
		return nil, err
	}
	resolved, err := state.ResolveAsset(s, act.Asset)
	if err != nil {
		return nil, err
	}
	c.deposit = state.Deposit{
		BridgeAddress:           act.To,
		RollupID:                rollupID,
		Amount:                  act.Amount,
		Asset:                   resolved,
		DestinationChainAddress: act.DestinationChainAddress,
		SourceTransactionID:     ctx.TransactionID,
		SourceActionIndex:       ctx.PositionInTransaction,
	}
	return c, nil
}

func (c *BridgeLock) Kind() action.Kind { return action.KindBridgeLock }

// RunMutableChecks verifies the destination is a bridge account accepting
// this asset and, for top-level locks, that the signer is not itself a
// bridge account and can cover the amount and fee.
func (c *BridgeLock) RunMutableChecks(s ledger.StateReader) error {
	isBridge, err := state.IsBridgeAccount(s, c.act.To)
	if err != nil {
		return err
	}
	if !isBridge {
		return fmt.Errorf("bridge lock must be sent to a bridge account")
	}
	bridgeAsset, err := state.GetBridgeAsset(s, c.act.To)
	if err != nil {
		return err
	}
	if bridgeAsset != c.act.Asset.ID() {
		return fmt.Errorf("asset ID is not authorized for transfer to bridge account")
	}

	if c.mode == modeSubAction {
		return nil
	}

	signerIsBridge, err := state.IsBridgeAccount(s, c.ctx.Signer)
	if err != nil {
		return err
	}
	if signerIsBridge {
		return fmt.Errorf("bridge accounts cannot send bridge locks")
	}
	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindBridgeLock, c.act.Amount)
	if err != nil {
		return err
	}
	return checkCovers(s, c.ctx.Signer, c.act.Asset, c.act.Amount, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute moves the funds into the bridge account, caches the Deposit and
// charges the fee. Only top-level locks execute directly; BridgeTransfer
// applies its lock leg's effects inline in its own Execute.
func (c *BridgeLock) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if err := state.DecreaseBalance(s, c.ctx.Signer, c.act.Asset, c.act.Amount); err != nil {
		return err
	}
	if err := state.IncreaseBalance(s, c.act.To, c.act.Asset, c.act.Amount); err != nil {
		return err
	}
	state.CacheDeposit(s, c.deposit)
	return chargeFee(s, c.ctx, action.KindBridgeLock, c.act.FeeAsset, c.act.Amount)
}

// Deposit returns the deposit record computed at construction.
func (c *BridgeLock) Deposit() state.Deposit {
	return c.deposit
}
