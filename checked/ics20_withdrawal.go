package checked

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ibc"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

// RollupWithdrawalMemo is the JSON schema a bridge-originated ICS-20
// withdrawal must carry in its memo, attributing the withdrawal to a rollup
// event.
type RollupWithdrawalMemo struct {
	RollupBlockNumber       uint64 `json:"rollup_block_number"`
	RollupWithdrawalEventID string `json:"rollup_withdrawal_event_id"`
	Memo                    string `json:"memo,omitempty"`
}

// Ics20Withdrawal is the checked form of an outbound ICS-20 transfer. The
// source of funds is either the transaction signer or, for rollup-originated
// withdrawals, a bridge account the signer holds withdrawer authority over.
type Ics20Withdrawal struct {
	act    action.Ics20Withdrawal
	ctx    TransactionContext
	source types.Address
	memo   *RollupWithdrawalMemo
	trace  types.Asset
}

// NewIcs20Withdrawal validates an ICS-20 withdrawal against the given
// snapshot.
func NewIcs20Withdrawal(act action.Ics20Withdrawal, ctx TransactionContext, s ledger.StateReader) (*Ics20Withdrawal, error) {
	if act.Amount == 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if act.SourceChannel == "" {
		return nil, fmt.Errorf("source channel must be set")
	}
	if act.TimeoutTime == 0 {
		return nil, fmt.Errorf("timeout time must be non-zero")
	}
	if act.DestinationChainAddress == "" {
		return nil, fmt.Errorf("destination chain address must not be empty")
	}
	if err := checkReturnAddressPrefix(s, act); err != nil {
		return nil, err
	}

	c := &Ics20Withdrawal{act: act, ctx: ctx, source: ctx.Signer}
	if act.BridgeAddress != nil {
		if err := state.EnsureBasePrefix(s, *act.BridgeAddress); err != nil {
			return nil, err
		}
		var memo RollupWithdrawalMemo
		if err := json.Unmarshal([]byte(act.Memo), &memo); err != nil {
			return nil, fmt.Errorf("parsing rollup withdrawal memo: %w", err)
		}
		if err := validateWithdrawalEventID(memo.RollupWithdrawalEventID); err != nil {
			return nil, err
		}
		if memo.RollupBlockNumber == 0 {
			return nil, fmt.Errorf("rollup block number must be greater than zero")
		}
		c.source = *act.BridgeAddress
		c.memo = &memo
	}

	if err := c.RunMutableChecks(s); err != nil {
		return nil, err
	}

	trace, err := state.ResolveAsset(s, act.Denom)
	if err != nil {
		return nil, err
	}
	c.trace = trace
	return c, nil
}

func checkReturnAddressPrefix(s ledger.StateReader, act action.Ics20Withdrawal) error {
	if !act.UseCompatAddress {
		return state.EnsureBasePrefix(s, act.ReturnAddress)
	}
	compat, err := state.GetIBCCompatPrefix(s)
	if err != nil {
		return err
	}
	if act.ReturnAddress.Prefix() != compat {
		return fmt.Errorf("address has prefix `%s` but only `%s` is permitted", act.ReturnAddress.Prefix(), compat)
	}
	return nil
}

func (c *Ics20Withdrawal) Kind() action.Kind { return action.KindIcs20Withdrawal }

// FromBridgeAccount reports whether the withdrawal spends from a bridge
// account rather than the signer's own account.
func (c *Ics20Withdrawal) FromBridgeAccount() bool {
	return c.act.BridgeAddress != nil
}

// RunMutableChecks verifies authorization over the source of funds, the
// anti-replay record for bridge withdrawals, the fee-asset allow-list and
// solvency.
func (c *Ics20Withdrawal) RunMutableChecks(s ledger.StateReader) error {
	if c.act.BridgeAddress != nil {
		withdrawer, err := state.GetBridgeWithdrawer(s, *c.act.BridgeAddress)
		if err != nil {
			return err
		}
		if !c.ctx.Signer.Equal(withdrawer) {
			return fmt.Errorf("signer is not the authorized withdrawer for the bridge account")
		}
		if err := state.CheckWithdrawalEventUnused(s, *c.act.BridgeAddress, c.memo.RollupWithdrawalEventID); err != nil {
			return err
		}
	} else {
		isBridge, err := state.IsBridgeAccount(s, c.ctx.Signer)
		if err != nil {
			return err
		}
		if isBridge {
			return fmt.Errorf("ics20 withdrawal from a bridge account must set the bridge address")
		}
	}

	if err := ensureFeeAssetAllowed(s, c.act.FeeAsset); err != nil {
		return err
	}
	fee, err := feeDue(s, action.KindIcs20Withdrawal, c.act.Amount)
	if err != nil {
		return err
	}
	return checkCovers(s, c.source, c.act.Denom, c.act.Amount, c.ctx.Signer, c.act.FeeAsset, fee)
}

// Execute debits the source, escrows or burns the funds depending on
// whether this chain is the token's source, sends the packet, records the
// anti-replay marker for bridge withdrawals and charges the fee.
func (c *Ics20Withdrawal) Execute(s ledger.StateWriter) error {
	if err := c.RunMutableChecks(s); err != nil {
		return err
	}
	if err := state.DecreaseBalance(s, c.source, c.act.Denom, c.act.Amount); err != nil {
		return err
	}
	if ibc.IsSourceChain(c.trace, ibc.TransferPort, c.act.SourceChannel) {
		if err := state.IncreaseChannelEscrow(s, c.act.SourceChannel, c.act.Denom, c.act.Amount); err != nil {
			return err
		}
	}

	sender := c.source
	if c.act.UseCompatAddress {
		compat, err := state.GetIBCCompatPrefix(s)
		if err != nil {
			return err
		}
		sender = sender.WithPrefix(compat)
	}
	data := ibc.FungibleTokenPacketData{
		Denom:    c.trace.String(),
		Amount:   strconv.FormatUint(c.act.Amount, 10),
		Sender:   sender.String(),
		Receiver: c.act.DestinationChainAddress,
		Memo:     c.act.Memo,
	}
	if _, err := ibc.SendTransferPacket(s, c.act.SourceChannel, data, c.act.TimeoutHeight, c.act.TimeoutTime); err != nil {
		return err
	}

	if c.act.BridgeAddress != nil {
		if err := state.PutWithdrawalEvent(s, *c.act.BridgeAddress, c.memo.RollupWithdrawalEventID, c.memo.RollupBlockNumber); err != nil {
			return err
		}
	}
	return chargeFee(s, c.ctx, action.KindIcs20Withdrawal, c.act.FeeAsset, c.act.Amount)
}
