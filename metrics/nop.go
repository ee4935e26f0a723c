package metrics

import (
	"time"
)

// NopMetrics is a no-op implementation of the Metrics interface.
// Use this when metrics collection is disabled.
type NopMetrics struct{}

// NewNopMetrics creates a new NopMetrics instance.
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// Block metrics (no-op)

func (m *NopMetrics) SetBlockHeight(height uint64)              {}
func (m *NopMetrics) IncBlocksExecuted()                        {}
func (m *NopMetrics) ObserveBlockLatency(latency time.Duration) {}

// Transaction metrics (no-op)

func (m *NopMetrics) IncTxsExecuted()                        {}
func (m *NopMetrics) IncTxsRejected(reason string)           {}
func (m *NopMetrics) ObserveTxActions(count int)             {}
func (m *NopMetrics) ObserveTxLatency(latency time.Duration) {}

// Action metrics (no-op)

func (m *NopMetrics) IncActionsConstructed(kind string)                       {}
func (m *NopMetrics) IncActionsExecuted(kind string)                          {}
func (m *NopMetrics) IncActionsFailed(kind string)                            {}
func (m *NopMetrics) ObserveActionLatency(kind string, latency time.Duration) {}

// Fee metrics (no-op)

func (m *NopMetrics) AddFeesAccrued(asset string, amount uint64) {}

// Bridge metrics (no-op)

func (m *NopMetrics) IncDepositsCached()           {}
func (m *NopMetrics) IncWithdrawalEventsRecorded() {}

// IBC metrics (no-op)

func (m *NopMetrics) IncClientsCreated()            {}
func (m *NopMetrics) IncClientUpdates()             {}
func (m *NopMetrics) IncClientsRecovered()          {}
func (m *NopMetrics) IncPacketsSent(channel string) {}

// Ledger metrics (no-op)

func (m *NopMetrics) SetLedgerVersion(version int64)                        {}
func (m *NopMetrics) IncLedgerGets()                                        {}
func (m *NopMetrics) IncLedgerSets()                                        {}
func (m *NopMetrics) IncLedgerDeletes()                                     {}
func (m *NopMetrics) ObserveLedgerLatency(op string, latency time.Duration) {}

// Handler returns nil since there's nothing to serve.
func (m *NopMetrics) Handler() any {
	return nil
}
