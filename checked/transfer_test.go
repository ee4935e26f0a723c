package checked

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/state"
)

func TestTransfer(t *testing.T) {
	t.Run("moves funds and charges fee", func(t *testing.T) {
		f := newFixture(t)
		f.setFee(action.KindTransfer, 12, 0)
		to := addr(0x02)

		checked, err := NewTransfer(action.Transfer{
			To:       to,
			Amount:   100,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Equal(t, uint64(1_000_000-100-12), f.balance(signerAddr, stone))
		require.Equal(t, uint64(100), f.balance(to, stone))

		totals, err := state.GetBlockFees(f.tx)
		require.NoError(t, err)
		require.Len(t, totals, 1)
		for _, total := range totals {
			require.Equal(t, uint64(12), total)
		}
		require.Len(t, f.eventsOfType("tx.fees"), 1)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewTransfer(action.Transfer{
			To:       addr(0x02),
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "amount must be greater than zero")
	})

	t.Run("foreign destination prefix rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewTransfer(action.Transfer{
			To:       addr(0x02).WithPrefix("other"),
			Amount:   100,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "address has prefix `other` but only `stone` is permitted")
	})

	t.Run("disallowed fee asset rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewTransfer(action.Transfer{
			To:       addr(0x02),
			Amount:   100,
			Asset:    stone,
			FeeAsset: pebble,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "not an allowed fee asset")
	})

	t.Run("bridge account cannot transfer", func(t *testing.T) {
		f := newFixture(t)
		f.initBridge(signerAddr, rollupOne, stone, sudoAddr, sudoAddr)

		_, err := NewTransfer(action.Transfer{
			To:       addr(0x02),
			Amount:   100,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "cannot transfer out of bridge account; BridgeUnlock or BridgeTransfer must be used")
	})

	t.Run("insufficient funds rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewTransfer(action.Transfer{
			To:       addr(0x02),
			Amount:   2_000_000,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "insufficient funds")
	})

	t.Run("split asset fee payment", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, state.PutAllowedFeeAsset(f.tx, pebble))
		f.setFee(action.KindTransfer, 5, 0)
		f.fund(signerAddr, pebble, 50)
		to := addr(0x02)

		checked, err := NewTransfer(action.Transfer{
			To:       to,
			Amount:   100,
			Asset:    stone,
			FeeAsset: pebble,
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Equal(t, uint64(1_000_000-100), f.balance(signerAddr, stone))
		require.Equal(t, uint64(45), f.balance(signerAddr, pebble))
		require.Equal(t, uint64(100), f.balance(to, stone))
	})

	t.Run("stale check fails at execute without partial writes", func(t *testing.T) {
		f := newFixture(t)
		to := addr(0x02)
		checked, err := NewTransfer(action.Transfer{
			To:       to,
			Amount:   900_000,
			Asset:    stone,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)

		// Drain the signer between construction and execution.
		require.NoError(t, state.PutBalance(f.tx, signerAddr, stone, 1))

		err = checked.Execute(f.tx)
		require.ErrorContains(t, err, "insufficient funds")
		require.Equal(t, uint64(1), f.balance(signerAddr, stone))
		require.Zero(t, f.balance(to, stone))
	})
}

func TestRollupDataSubmission(t *testing.T) {
	t.Run("charges fee by payload length", func(t *testing.T) {
		f := newFixture(t)
		f.setFee(action.KindRollupDataSubmission, 10, 2)

		checked, err := NewRollupDataSubmission(action.RollupDataSubmission{
			RollupID: rollupOne,
			Data:     []byte("payload"),
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.NoError(t, err)
		require.NoError(t, checked.Execute(f.tx))

		require.Equal(t, uint64(1_000_000-10-2*7), f.balance(signerAddr, stone))
	})

	t.Run("empty data rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewRollupDataSubmission(action.RollupDataSubmission{
			RollupID: rollupOne,
			FeeAsset: stone,
		}, f.ctx(signerAddr), f.tx)
		require.ErrorContains(t, err, "cannot have empty data for sequence action")
	})
}
