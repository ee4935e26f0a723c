package metrics

import (
	"time"
)

// Metrics defines the interface for collecting execution engine metrics.
// All methods are designed to be thread-safe and non-blocking.
type Metrics interface {
	// Block metrics
	SetBlockHeight(height uint64)
	IncBlocksExecuted()
	ObserveBlockLatency(latency time.Duration)

	// Transaction metrics
	IncTxsExecuted()
	IncTxsRejected(reason string)
	ObserveTxActions(count int)
	ObserveTxLatency(latency time.Duration)

	// Action metrics
	IncActionsConstructed(kind string)
	IncActionsExecuted(kind string)
	IncActionsFailed(kind string)
	ObserveActionLatency(kind string, latency time.Duration)

	// Fee metrics
	AddFeesAccrued(asset string, amount uint64)

	// Bridge metrics
	IncDepositsCached()
	IncWithdrawalEventsRecorded()

	// IBC metrics
	IncClientsCreated()
	IncClientUpdates()
	IncClientsRecovered()
	IncPacketsSent(channel string)

	// Ledger metrics
	SetLedgerVersion(version int64)
	IncLedgerGets()
	IncLedgerSets()
	IncLedgerDeletes()
	ObserveLedgerLatency(op string, latency time.Duration)

	// HTTP handler (for serving metrics)
	Handler() any
}

// Transaction rejection reason labels.
const (
	ReasonNoActions       = "no_actions"
	ReasonNonceMismatch   = "nonce_mismatch"
	ReasonChainIDMismatch = "chain_id_mismatch"
	ReasonCheckFailed     = "check_failed"
	ReasonExecutionFailed = "execution_failed"
)
