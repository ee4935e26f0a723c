// Package transaction turns an authenticated sequencer transaction into its
// checked form and executes it atomically. Construction validates the
// transaction envelope (chain id, nonce, at least one action) and builds the
// checked form of every action against one state snapshot. Execution
// re-checks the nonce, bumps it, and runs the actions in order inside a
// forked ledger delta, so a transaction that fails partway leaves no writes
// behind.
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/checked"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

var (
	// ErrNoActions rejects a transaction with an empty action list.
	ErrNoActions = errors.New("transaction must contain at least one action")

	// ErrChainIDMismatch rejects a transaction built for another chain.
	ErrChainIDMismatch = errors.New("transaction chain id does not match chain")

	// ErrInvalidNonce rejects a transaction whose nonce is not the signer's
	// next expected nonce.
	ErrInvalidNonce = errors.New("invalid transaction nonce")
)

// Transaction is an authenticated sequencer transaction: the envelope fields
// plus the decoded actions. Signature verification and wire decoding happen
// in the node before the engine sees it.
type Transaction struct {
	ID      types.TransactionID
	Signer  types.Address
	ChainID string
	Nonce   uint32
	Actions []action.Action
}

// CheckedTransaction is the validated form of a transaction, holding the
// checked form of every action in order.
type CheckedTransaction struct {
	tx      Transaction
	actions []checked.CheckedAction
}

// NewCheckedTransaction validates the transaction envelope against the given
// state snapshot and constructs the checked form of every action. Any
// failing action rejects the whole transaction with that action's error.
func NewCheckedTransaction(tx Transaction, s ledger.StateReader) (*CheckedTransaction, error) {
	if len(tx.Actions) == 0 {
		return nil, ErrNoActions
	}

	chainID, err := state.GetChainID(s)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	if tx.ChainID != chainID {
		return nil, fmt.Errorf("%w: transaction built for `%s`, chain is `%s`", ErrChainIDMismatch, tx.ChainID, chainID)
	}

	if err := state.EnsureBasePrefix(s, tx.Signer); err != nil {
		return nil, err
	}

	ct := &CheckedTransaction{
		tx:      tx,
		actions: make([]checked.CheckedAction, 0, len(tx.Actions)),
	}
	if err := ct.checkNonce(s); err != nil {
		return nil, err
	}

	for i, act := range tx.Actions {
		ctx := checked.TransactionContext{
			Signer:                tx.Signer,
			TransactionID:         tx.ID,
			PositionInTransaction: uint64(i),
		}
		ca, err := checked.New(act, ctx, s)
		if err != nil {
			return nil, fmt.Errorf("checking action %d (%s): %w", i, act.Kind(), err)
		}
		ct.actions = append(ct.actions, ca)
	}
	return ct, nil
}

// ID returns the transaction's id.
func (ct *CheckedTransaction) ID() types.TransactionID {
	return ct.tx.ID
}

// Signer returns the transaction's authenticated signer.
func (ct *CheckedTransaction) Signer() types.Address {
	return ct.tx.Signer
}

// Nonce returns the transaction's nonce.
func (ct *CheckedTransaction) Nonce() uint32 {
	return ct.tx.Nonce
}

// Actions returns the checked actions in transaction order.
func (ct *CheckedTransaction) Actions() []checked.CheckedAction {
	return ct.actions
}

// Execute runs the transaction against the given ledger delta. The nonce is
// re-checked and bumped, then every action executes in order. All writes go
// through a fork of the delta and are applied only if the whole transaction
// succeeds.
func (ct *CheckedTransaction) Execute(parent *ledger.Tx) error {
	return ct.execute(parent, nil)
}

// execute is Execute with an optional per-action completion hook, used by
// the Executor to time individual actions.
func (ct *CheckedTransaction) execute(parent *ledger.Tx, onAction func(ca checked.CheckedAction, elapsed time.Duration)) error {
	fork := parent.Fork()

	if err := ct.checkNonce(fork); err != nil {
		return err
	}
	if err := state.PutNonce(fork, ct.tx.Signer, ct.tx.Nonce+1); err != nil {
		return fmt.Errorf("bumping signer nonce: %w", err)
	}

	for i, ca := range ct.actions {
		start := time.Now()
		if err := ca.Execute(fork); err != nil {
			return fmt.Errorf("executing action %d (%s): %w", i, ca.Kind(), err)
		}
		if onAction != nil {
			onAction(ca, time.Since(start))
		}
	}
	return fork.Apply()
}

func (ct *CheckedTransaction) checkNonce(s ledger.StateReader) error {
	current, err := state.GetNonce(s, ct.tx.Signer)
	if err != nil {
		return fmt.Errorf("reading signer nonce: %w", err)
	}
	if ct.tx.Nonce != current {
		return fmt.Errorf("%w: got %d, expected %d", ErrInvalidNonce, ct.tx.Nonce, current)
	}
	return nil
}
