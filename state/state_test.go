package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/types"
)

const testPrefix = "stone"

func testState(t *testing.T) *ledger.Tx {
	t.Helper()
	store := ledger.NewMemStore()
	t.Cleanup(func() { store.Close() })
	tx := ledger.NewTx(store)
	require.NoError(t, PutBasePrefix(tx, testPrefix))
	return tx
}

func testAddress(b byte) types.Address {
	var raw [types.AddressLen]byte
	raw[0] = b
	return types.NewAddress(testPrefix, raw)
}

func TestEnsureBasePrefix(t *testing.T) {
	tx := testState(t)

	require.NoError(t, EnsureBasePrefix(tx, testAddress(1)))

	err := EnsureBasePrefix(tx, testAddress(1).WithPrefix("other"))
	require.ErrorContains(t, err, "address has prefix `other` but only `stone` is permitted")
}

func TestBalances(t *testing.T) {
	tx := testState(t)
	addr := testAddress(1)
	asset := types.NewTraceAsset("stone")

	t.Run("missing account has zero balance", func(t *testing.T) {
		balance, err := GetBalance(tx, addr, asset)
		require.NoError(t, err)
		require.Zero(t, balance)
	})

	t.Run("increase and decrease", func(t *testing.T) {
		require.NoError(t, IncreaseBalance(tx, addr, asset, 100))
		require.NoError(t, DecreaseBalance(tx, addr, asset, 30))

		balance, err := GetBalance(tx, addr, asset)
		require.NoError(t, err)
		require.Equal(t, uint64(70), balance)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		err := DecreaseBalance(tx, addr, asset, 1000)
		require.ErrorContains(t, err, "insufficient funds")
	})

	t.Run("overflow", func(t *testing.T) {
		require.NoError(t, PutBalance(tx, addr, asset, ^uint64(0)))
		err := IncreaseBalance(tx, addr, asset, 1)
		require.ErrorContains(t, err, "overflows")
	})

	t.Run("balances are per asset", func(t *testing.T) {
		other := types.NewTraceAsset("pebble")
		balance, err := GetBalance(tx, addr, other)
		require.NoError(t, err)
		require.Zero(t, balance)
	})
}

func TestNonces(t *testing.T) {
	tx := testState(t)
	addr := testAddress(1)

	nonce, err := GetNonce(tx, addr)
	require.NoError(t, err)
	require.Zero(t, nonce)

	require.NoError(t, PutNonce(tx, addr, 7))
	nonce, err = GetNonce(tx, addr)
	require.NoError(t, err)
	require.Equal(t, uint32(7), nonce)
}

func TestAssetMapping(t *testing.T) {
	tx := testState(t)
	asset := types.NewTraceAsset("transfer/channel-0/stone")

	has, err := HasAssetTrace(tx, asset.ID())
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, PutAssetTrace(tx, asset))

	resolved, err := ResolveAssetTrace(tx, asset.ID())
	require.NoError(t, err)
	require.Equal(t, asset.Trace(), resolved.Trace())

	t.Run("resolve passes through trace-form assets", func(t *testing.T) {
		resolved, err := ResolveAsset(tx, types.NewTraceAsset("stone"))
		require.NoError(t, err)
		require.Equal(t, "stone", resolved.Trace())
	})

	t.Run("resolve consults mapping for ibc-form assets", func(t *testing.T) {
		resolved, err := ResolveAsset(tx, types.NewIBCAsset(asset.ID()))
		require.NoError(t, err)
		require.Equal(t, asset.Trace(), resolved.Trace())
	})

	t.Run("unknown ibc-form asset fails", func(t *testing.T) {
		_, err := ResolveAsset(tx, types.NewIBCAsset(types.NewTraceAsset("unknown").ID()))
		require.ErrorContains(t, err, "no trace denomination recorded")
	})
}

func TestBridgeAccounts(t *testing.T) {
	tx := testState(t)
	bridge := testAddress(1)
	sudo := testAddress(2)
	withdrawer := testAddress(3)
	rollupID := types.NewRollupID([]byte("rollup"))
	asset := types.NewTraceAsset("stone")

	is, err := IsBridgeAccount(tx, bridge)
	require.NoError(t, err)
	require.False(t, is)

	require.NoError(t, PutBridgeAccount(tx, bridge, rollupID, asset, sudo, withdrawer))

	is, err = IsBridgeAccount(tx, bridge)
	require.NoError(t, err)
	require.True(t, is)

	gotRollup, err := GetBridgeRollupID(tx, bridge)
	require.NoError(t, err)
	require.Equal(t, rollupID, gotRollup)

	gotAsset, err := GetBridgeAsset(tx, bridge)
	require.NoError(t, err)
	require.Equal(t, asset.ID(), gotAsset)

	gotSudo, err := GetBridgeSudo(tx, bridge)
	require.NoError(t, err)
	require.True(t, gotSudo.Equal(sudo))

	gotWithdrawer, err := GetBridgeWithdrawer(tx, bridge)
	require.NoError(t, err)
	require.True(t, gotWithdrawer.Equal(withdrawer))
}

func TestWithdrawalEvents(t *testing.T) {
	tx := testState(t)
	bridge := testAddress(1)

	require.NoError(t, CheckWithdrawalEventUnused(tx, bridge, "event-1"))
	require.NoError(t, PutWithdrawalEvent(tx, bridge, "event-1", 42))

	err := CheckWithdrawalEventUnused(tx, bridge, "event-1")
	require.ErrorContains(t, err, "withdrawal event ID `event-1` used by block number 42")

	t.Run("records are per bridge account", func(t *testing.T) {
		require.NoError(t, CheckWithdrawalEventUnused(tx, testAddress(2), "event-1"))
	})
}

func TestDepositCache(t *testing.T) {
	tx := testState(t)

	require.Empty(t, CachedDeposits(tx))

	deposit := Deposit{
		BridgeAddress:           testAddress(1),
		RollupID:                types.NewRollupID([]byte("rollup")),
		Amount:                  50,
		Asset:                   types.NewTraceAsset("stone"),
		DestinationChainAddress: "dest",
	}
	CacheDeposit(tx, deposit)

	deposits := CachedDeposits(tx)
	require.Len(t, deposits, 1)
	require.Equal(t, deposit, deposits[0])

	events := tx.Events()
	require.Len(t, events, 1)
	require.Equal(t, "tx.deposit", events[0].Type)
}

func TestValidatorSet(t *testing.T) {
	tx := testState(t)

	key1, err := types.VerificationKeyFromBytes(make([]byte, types.VerificationKeyLen))
	require.NoError(t, err)
	raw2 := make([]byte, types.VerificationKeyLen)
	raw2[0] = 1
	key2, err := types.VerificationKeyFromBytes(raw2)
	require.NoError(t, err)

	t.Run("fresh chain has empty set", func(t *testing.T) {
		vs, err := GetValidatorSet(tx)
		require.NoError(t, err)
		require.Zero(t, vs.Len())
	})

	t.Run("round trip", func(t *testing.T) {
		vs := NewValidatorSet(
			Validator{VerificationKey: key1, Power: 10},
			Validator{VerificationKey: key2, Power: 20},
		)
		require.NoError(t, PutValidatorSet(tx, vs))

		got, err := GetValidatorSet(tx)
		require.NoError(t, err)
		require.Equal(t, 2, got.Len())
		require.Equal(t, uint64(10), got.PowerOf(key1))
		require.Equal(t, uint64(20), got.PowerOf(key2))
	})

	t.Run("apply removes at power zero", func(t *testing.T) {
		vs := NewValidatorSet(Validator{VerificationKey: key1, Power: 10})
		vs.Apply(Validator{VerificationKey: key1, Power: 0})
		require.False(t, vs.Contains(key1))
	})

	t.Run("staged updates", func(t *testing.T) {
		require.NoError(t, StageValidatorUpdate(tx, Validator{VerificationKey: key1, Power: 5}))
		require.NoError(t, StageValidatorUpdate(tx, Validator{VerificationKey: key1, Power: 7}))

		updates, err := StagedValidatorUpdates(tx)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		require.Equal(t, uint64(7), updates[0].Power)

		require.NoError(t, ClearValidatorUpdates(tx))
		updates, err = StagedValidatorUpdates(tx)
		require.NoError(t, err)
		require.Empty(t, updates)
	})
}

func TestFeeAssetAllowList(t *testing.T) {
	tx := testState(t)
	stone := types.NewTraceAsset("stone")
	pebble := types.NewTraceAsset("pebble")

	require.NoError(t, PutAllowedFeeAsset(tx, stone))
	require.NoError(t, PutAllowedFeeAsset(tx, pebble))

	allowed, err := IsAllowedFeeAsset(tx, stone)
	require.NoError(t, err)
	require.True(t, allowed)

	assets, err := AllowedFeeAssets(tx)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	require.NoError(t, DeleteAllowedFeeAsset(tx, pebble))

	t.Run("cannot remove last asset", func(t *testing.T) {
		err := DeleteAllowedFeeAsset(tx, stone)
		require.ErrorIs(t, err, ErrLastFeeAsset)

		allowed, err := IsAllowedFeeAsset(tx, stone)
		require.NoError(t, err)
		require.True(t, allowed)
	})
}

func TestFeeComponents(t *testing.T) {
	tx := testState(t)

	fees, err := GetFeeComponents(tx, action.KindTransfer)
	require.NoError(t, err)
	require.Zero(t, fees.Base)
	require.Zero(t, fees.Multiplier)

	require.NoError(t, PutFeeComponents(tx, action.KindTransfer, action.FeeComponents{Base: 12, Multiplier: 1}))
	fees, err = GetFeeComponents(tx, action.KindTransfer)
	require.NoError(t, err)
	require.Equal(t, uint64(12), fees.Base)
	require.Equal(t, uint64(1), fees.Multiplier)
}

func TestBlockFees(t *testing.T) {
	tx := testState(t)
	stone := types.NewTraceAsset("stone")

	require.NoError(t, AddToBlockFees(tx, stone, 10))
	require.NoError(t, AddToBlockFees(tx, stone, 5))

	totals, err := GetBlockFees(tx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	for _, total := range totals {
		require.Equal(t, uint64(15), total)
	}

	require.NoError(t, ClearBlockFees(tx))
	totals, err = GetBlockFees(tx)
	require.NoError(t, err)
	require.Empty(t, totals)
}

func TestIBCState(t *testing.T) {
	tx := testState(t)
	relayer := testAddress(1)

	require.NoError(t, PutIBCSudoAddress(tx, testAddress(9)))
	sudo, err := GetIBCSudoAddress(tx)
	require.NoError(t, err)
	require.True(t, sudo.Equal(testAddress(9)))

	is, err := IsIBCRelayer(tx, relayer)
	require.NoError(t, err)
	require.False(t, is)

	require.NoError(t, PutIBCRelayer(tx, relayer))
	is, err = IsIBCRelayer(tx, relayer)
	require.NoError(t, err)
	require.True(t, is)

	require.NoError(t, DeleteIBCRelayer(tx, relayer))
	is, err = IsIBCRelayer(tx, relayer)
	require.NoError(t, err)
	require.False(t, is)
}

func TestChannelEscrow(t *testing.T) {
	tx := testState(t)
	stone := types.NewTraceAsset("stone")

	require.NoError(t, IncreaseChannelEscrow(tx, "channel-0", stone, 100))
	require.NoError(t, DecreaseChannelEscrow(tx, "channel-0", stone, 40))

	balance, err := GetChannelEscrow(tx, "channel-0", stone)
	require.NoError(t, err)
	require.Equal(t, uint64(60), balance)

	err = DecreaseChannelEscrow(tx, "channel-0", stone, 100)
	require.ErrorContains(t, err, "insufficient escrow balance")
}

func TestBlockContext(t *testing.T) {
	tx := testState(t)

	require.NoError(t, PutChainID(tx, "stateberry-test-1"))
	chainID, err := GetChainID(tx)
	require.NoError(t, err)
	require.Equal(t, "stateberry-test-1", chainID)

	require.NoError(t, PutBlockHeight(tx, 12))
	height, err := GetBlockHeight(tx)
	require.NoError(t, err)
	require.Equal(t, uint64(12), height)

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, PutBlockTimestamp(tx, now))
	ts, err := GetBlockTimestamp(tx)
	require.NoError(t, err)
	require.True(t, ts.Equal(now))
}
