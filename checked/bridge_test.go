package checked

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

func TestInitBridgeAccount(t *testing.T) {
	t.Run("registers the signer as a bridge account", func(t *testing.T) {
		f := newFixture(t)
		withdrawer := addr(0x05)

		checked, err := NewInitBridgeAccount(action.InitBridgeAccount{
			RollupID:          rollupOne,
			Asset:             stone,
			FeeAsset:          stone,
			WithdrawerAddress: &withdrawer,
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		is, err := state.IsBridgeAccount(f.tx, signerAddr)
		require.NoError(t, err)
		require.True(t, is)

		// Sudo defaults to the signer; withdrawer was set explicitly.
		sudo, err := state.GetBridgeSudo(f.tx, signerAddr)
		require.NoError(t, err)
		require.True(t, sudo.Equal(signerAddr))

		got, err := state.GetBridgeWithdrawer(f.tx, signerAddr)
		require.NoError(t, err)
		require.True(t, got.Equal(withdrawer))
	})

	t.Run("existing bridge account rejected", func(t *testing.T) {
		f := newFixture(t)
		f.initBridge(signerAddr, rollupOne, stone, sudoAddr, sudoAddr)

		_, err := NewInitBridgeAccount(action.InitBridgeAccount{
			RollupID: rollupOne,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "bridge account already exists")
	})
}

func TestBridgeLock(t *testing.T) {
	t.Run("moves funds and caches deposit", func(t *testing.T) {
		f := newFixture(t)
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, sudoAddr, sudoAddr)

		checked, err := NewBridgeLock(action.BridgeLock{
			To:                      bridge,
			Amount:                  500,
			Asset:                   stone,
			FeeAsset:                stone,
			DestinationChainAddress: "rollup-recipient",
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Equal(t, uint64(1_000_000-500), f.balance(signerAddr, stone))
		require.Equal(t, uint64(500), f.balance(bridge, stone))

		deposits := state.CachedDeposits(f.tx)
		require.Len(t, deposits, 1)
		require.Equal(t, rollupOne, deposits[0].RollupID)
		require.Equal(t, uint64(500), deposits[0].Amount)
		require.Equal(t, "rollup-recipient", deposits[0].DestinationChainAddress)
		require.Equal(t, testTxID, deposits[0].SourceTransactionID)
		require.Len(t, f.eventsOfType("tx.deposit"), 1)
	})

	t.Run("destination must be a bridge account", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewBridgeLock(action.BridgeLock{
			To:       addr(0x02),
			Amount:   500,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "bridge lock must be sent to a bridge account")
	})

	t.Run("mismatched asset rejected", func(t *testing.T) {
		f := newFixture(t)
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, sudoAddr, sudoAddr)

		_, err := NewBridgeLock(action.BridgeLock{
			To:       bridge,
			Amount:   500,
			Asset:    pebble,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "asset ID is not authorized for transfer to bridge account")
	})

	t.Run("bridge account cannot send locks", func(t *testing.T) {
		f := newFixture(t)
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, sudoAddr, sudoAddr)
		f.initBridge(signerAddr, rollupTwo, stone, sudoAddr, sudoAddr)

		_, err := NewBridgeLock(action.BridgeLock{
			To:       bridge,
			Amount:   500,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "bridge accounts cannot send bridge locks")
	})
}

func TestBridgeUnlock(t *testing.T) {
	setup := func(f *fixture) types.Address {
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, sudoAddr, signerAddr)
		f.fund(bridge, stone, 10_000)
		return bridge
	}

	unlockAction := func(bridge types.Address) action.BridgeUnlock {
		return action.BridgeUnlock{
			To:                      addr(0x03),
			Amount:                  1_000,
			FeeAsset:                stone,
			BridgeAddress:           bridge,
			RollupBlockNumber:       7,
			RollupWithdrawalEventID: "event-1",
		}
	}

	t.Run("releases funds and records anti-replay marker", func(t *testing.T) {
		f := newFixture(t)
		bridge := setup(f)

		checked, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Equal(t, uint64(9_000), f.balance(bridge, stone))
		require.Equal(t, uint64(1_000), f.balance(addr(0x03), stone))

		err = state.CheckWithdrawalEventUnused(f.tx, bridge, "event-1")
		require.ErrorContains(t, err, "withdrawal event ID `event-1` used by block number 7")
	})

	t.Run("unauthorized withdrawer rejected", func(t *testing.T) {
		f := newFixture(t)
		bridge := setup(f)
		f.fund(addr(0x09), stone, 100)

		_, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(addr(0x09)), f.tx)
		require.ErrorContains(t, err, "signer is not the authorized withdrawer for the bridge account")
	})

	t.Run("destination bridge account rejected", func(t *testing.T) {
		f := newFixture(t)
		bridge := setup(f)
		f.initBridge(addr(0x03), rollupTwo, stone, sudoAddr, sudoAddr)

		_, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "bridge accounts cannot receive bridge unlocks")
	})

	t.Run("immutable field validation", func(t *testing.T) {
		f := newFixture(t)
		bridge := setup(f)

		for name, mutate := range map[string]func(*action.BridgeUnlock){
			"amount must be greater than zero":                       func(a *action.BridgeUnlock) { a.Amount = 0 },
			"memo must not be more than 64 bytes":                    func(a *action.BridgeUnlock) { a.Memo = string(make([]byte, 65)) },
			"rollup withdrawal event id must be non-empty":           func(a *action.BridgeUnlock) { a.RollupWithdrawalEventID = "" },
			"rollup withdrawal event id must not be more than 256 bytes": func(a *action.BridgeUnlock) { a.RollupWithdrawalEventID = string(make([]byte, 257)) },
			"rollup block number must be greater than zero":          func(a *action.BridgeUnlock) { a.RollupBlockNumber = 0 },
		} {
			t.Run(name, func(t *testing.T) {
				act := unlockAction(bridge)
				mutate(&act)
				_, err := NewBridgeUnlock(act, f.ctx(signerAddr), f.tx)
				require.ErrorContains(t, err, name)
			})
		}
	})

	t.Run("bridge as its own withdrawer must cover amount plus fee", func(t *testing.T) {
		f := newFixture(t)
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, sudoAddr, bridge)
		f.setFee(action.KindBridgeUnlock, 50, 0)
		f.fund(bridge, stone, 1_020)

		// 1000 alone is covered, 1000 plus the fee of 50 is not.
		_, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(bridge), f.tx)
		require.ErrorContains(t, err, "to cover amount and fee")

		f.fund(bridge, stone, 1_050)
		checked, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(bridge), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Zero(t, f.balance(bridge, stone))
		require.Equal(t, uint64(1_000), f.balance(addr(0x03), stone))
	})

	t.Run("second construction from same snapshot fails at execute", func(t *testing.T) {
		f := newFixture(t)
		bridge := setup(f)

		first, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		second, err := NewBridgeUnlock(unlockAction(bridge), f.ctx(signerAddr), f.tx)
		require.NoError(t, err)

		require.NoError(t, first.Execute(f.tx))

		err = second.Execute(f.tx)
		require.ErrorContains(t, err, "withdrawal event ID `event-1` used by block number 7")
		// The failed execution wrote nothing.
		require.Equal(t, uint64(9_000), f.balance(bridge, stone))
		require.Equal(t, uint64(1_000), f.balance(addr(0x03), stone))
	})
}

func TestBridgeSudoChange(t *testing.T) {
	t.Run("updates authorities", func(t *testing.T) {
		f := newFixture(t)
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, signerAddr, addr(0x05))
		newSudo := addr(0x06)
		newWithdrawer := addr(0x07)

		checked, err := NewBridgeSudoChange(action.BridgeSudoChange{
			BridgeAddress:        bridge,
			NewSudoAddress:       &newSudo,
			NewWithdrawerAddress: &newWithdrawer,
			FeeAsset:             stone,
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		sudo, err := state.GetBridgeSudo(f.tx, bridge)
		require.NoError(t, err)
		require.True(t, sudo.Equal(newSudo))

		withdrawer, err := state.GetBridgeWithdrawer(f.tx, bridge)
		require.NoError(t, err)
		require.True(t, withdrawer.Equal(newWithdrawer))
	})

	t.Run("non-sudo signer rejected", func(t *testing.T) {
		f := newFixture(t)
		bridge := addr(0x02)
		f.initBridge(bridge, rollupOne, stone, addr(0x06), addr(0x05))
		newSudo := addr(0x07)

		_, err := NewBridgeSudoChange(action.BridgeSudoChange{
			BridgeAddress:  bridge,
			NewSudoAddress: &newSudo,
			FeeAsset:       stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "transaction signer not authorized to change bridge sudo address")
	})

	t.Run("no change rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewBridgeSudoChange(action.BridgeSudoChange{
			BridgeAddress: addr(0x02),
			FeeAsset:      stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "must set at least one of new sudo address or new withdrawer address")
	})
}

func TestBridgeTransfer(t *testing.T) {
	setup := func(f *fixture) (source, dest types.Address) {
		source = addr(0x02)
		dest = addr(0x03)
		f.initBridge(source, rollupOne, stone, sudoAddr, signerAddr)
		f.initBridge(dest, rollupTwo, stone, sudoAddr, sudoAddr)
		return source, dest
	}

	transferAction := func(source, dest types.Address, amount uint64) action.BridgeTransfer {
		return action.BridgeTransfer{
			To:                      dest,
			Amount:                  amount,
			FeeAsset:                stone,
			DestinationChainAddress: "rollup-recipient",
			BridgeAddress:           source,
			RollupBlockNumber:       9,
			RollupWithdrawalEventID: "event-9",
		}
	}

	t.Run("atomically moves funds between bridge accounts", func(t *testing.T) {
		f := newFixture(t)
		source, dest := setup(f)
		f.fund(source, stone, 800)

		checked, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Zero(t, f.balance(source, stone))
		require.Equal(t, uint64(800), f.balance(dest, stone))

		deposits := state.CachedDeposits(f.tx)
		require.Len(t, deposits, 1)
		require.Equal(t, rollupTwo, deposits[0].RollupID)
		require.Equal(t, uint64(800), deposits[0].Amount)

		err = state.CheckWithdrawalEventUnused(f.tx, source, "event-9")
		require.ErrorContains(t, err, "withdrawal event ID `event-9` used by block number 9")
	})

	t.Run("mismatched destination asset rejected", func(t *testing.T) {
		f := newFixture(t)
		source := addr(0x02)
		dest := addr(0x03)
		f.initBridge(source, rollupOne, stone, sudoAddr, signerAddr)
		f.initBridge(dest, rollupTwo, pebble, sudoAddr, sudoAddr)
		f.fund(source, stone, 800)

		_, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "asset ID is not authorized for transfer to bridge account")
	})

	t.Run("unauthorized withdrawer rejected", func(t *testing.T) {
		f := newFixture(t)
		source, dest := setup(f)
		f.fund(source, stone, 800)

		_, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(addr(0x09)), f.tx)
		require.ErrorContains(t, err, "signer is not the authorized withdrawer for the bridge account")
	})

	t.Run("insolvent source rejected", func(t *testing.T) {
		f := newFixture(t)
		source, dest := setup(f)
		f.fund(source, stone, 10)

		_, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "insufficient funds")
	})

	t.Run("source bridge paying its own fee must cover amount plus fee", func(t *testing.T) {
		f := newFixture(t)
		source := addr(0x02)
		dest := addr(0x03)
		// The source bridge account is its own withdrawer and fee payer.
		f.initBridge(source, rollupOne, stone, sudoAddr, source)
		f.initBridge(dest, rollupTwo, stone, sudoAddr, sudoAddr)
		f.setFee(action.KindBridgeTransfer, 50, 0)
		f.fund(source, stone, 820)

		// 800 alone is covered, 800 plus the fee of 50 is not.
		_, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(source), f.tx)
		require.ErrorContains(t, err, "to cover amount and fee")

		f.fund(source, stone, 850)
		checked, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(source), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Zero(t, f.balance(source, stone))
		require.Equal(t, uint64(800), f.balance(dest, stone))
	})

	t.Run("fee shortfall of the self-paying bridge rejects before any write", func(t *testing.T) {
		f := newFixture(t)
		source := addr(0x02)
		dest := addr(0x03)
		f.initBridge(source, rollupOne, stone, sudoAddr, source)
		f.initBridge(dest, rollupTwo, stone, sudoAddr, sudoAddr)
		f.setFee(action.KindBridgeTransfer, 50, 0)
		f.fund(source, stone, 850)

		checked, err := NewBridgeTransfer(transferAction(source, dest, 800), f.ctx(source), f.tx)
		require.NoError(t, err)

		// Drain below amount plus fee after construction; the re-check at
		// execution must reject before moving any funds.
		f.fund(source, stone, 820)
		err = checked.Execute(f.tx)
		require.ErrorContains(t, err, "to cover amount and fee")

		require.Equal(t, uint64(820), f.balance(source, stone))
		require.Zero(t, f.balance(dest, stone))
		require.NoError(t, state.CheckWithdrawalEventUnused(f.tx, source, "event-9"))
	})
}
