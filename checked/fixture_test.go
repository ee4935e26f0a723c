package checked

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/state"
	"github.com/blockberries/stateberry/types"
)

const (
	testPrefix       = "stone"
	testCompatPrefix = "stonecompat"
)

var (
	testTime  = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	stone     = types.NewTraceAsset("stone")
	pebble    = types.NewTraceAsset("pebble")
	testTxID  = types.TransactionID(sha256.Sum256([]byte("tx")))
	rollupOne = types.NewRollupID([]byte("rollup-one"))
	rollupTwo = types.NewRollupID([]byte("rollup-two"))
)

func addr(b byte) types.Address {
	var raw [types.AddressLen]byte
	raw[0] = b
	return types.NewAddress(testPrefix, raw)
}

var (
	sudoAddr    = addr(0xAA)
	ibcSudoAddr = addr(0xBB)
	signerAddr  = addr(0x01)
)

// fixture is a genesis-seeded in-memory ledger with a funded signer.
type fixture struct {
	t     *testing.T
	store *ledger.Store
	tx    *ledger.Tx
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledger.NewMemStore()
	t.Cleanup(func() { store.Close() })

	tx := ledger.NewTx(store)
	require.NoError(t, state.PutBasePrefix(tx, testPrefix))
	require.NoError(t, state.PutIBCCompatPrefix(tx, testCompatPrefix))
	require.NoError(t, state.PutChainID(tx, "stateberry-test-1"))
	require.NoError(t, state.PutBlockHeight(tx, 1))
	require.NoError(t, state.PutBlockTimestamp(tx, testTime))
	require.NoError(t, state.PutNativeAsset(tx, stone))
	require.NoError(t, state.PutAllowedFeeAsset(tx, stone))
	require.NoError(t, state.PutSudoAddress(tx, sudoAddr))
	require.NoError(t, state.PutIBCSudoAddress(tx, ibcSudoAddr))
	require.NoError(t, state.PutBalance(tx, signerAddr, stone, 1_000_000))

	return &fixture{t: t, store: store, tx: tx}
}

func (f *fixture) ctx(signer types.Address) TransactionContext {
	return TransactionContext{Signer: signer, TransactionID: testTxID}
}

func (f *fixture) fund(a types.Address, asset types.Asset, amount uint64) {
	f.t.Helper()
	require.NoError(f.t, state.PutBalance(f.tx, a, asset, amount))
}

func (f *fixture) balance(a types.Address, asset types.Asset) uint64 {
	f.t.Helper()
	balance, err := state.GetBalance(f.tx, a, asset)
	require.NoError(f.t, err)
	return balance
}

// initBridge registers a bridge account accepting asset for the rollup,
// with the given sudo and withdrawer authority.
func (f *fixture) initBridge(bridge types.Address, rollupID types.RollupID, asset types.Asset, sudo, withdrawer types.Address) {
	f.t.Helper()
	require.NoError(f.t, state.PutBridgeAccount(f.tx, bridge, rollupID, asset, sudo, withdrawer))
}

// setFee installs a fee schedule entry for the kind.
func (f *fixture) setFee(kind action.Kind, base, multiplier uint64) {
	f.t.Helper()
	require.NoError(f.t, state.PutFeeComponents(f.tx, kind, action.FeeComponents{Base: base, Multiplier: multiplier}))
}

// eventsOfType filters the delta's recorded events.
func (f *fixture) eventsOfType(eventType string) []ledger.Event {
	var events []ledger.Event
	for _, e := range f.tx.Events() {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}
