package ledger

import "time"

// Ledger operation labels reported through Metrics.ObserveLedgerLatency.
const (
	OpGet    = "get"
	OpCommit = "commit"
)

// Metrics is the subset of the engine's metrics surface the store reports
// into. The collecting implementation lives in the metrics package; the
// store depends only on this interface.
type Metrics interface {
	SetLedgerVersion(version int64)
	IncLedgerGets()
	IncLedgerSets()
	IncLedgerDeletes()
	ObserveLedgerLatency(op string, latency time.Duration)
}

// nopMetrics is the sink used when no collector is attached.
type nopMetrics struct{}

func (nopMetrics) SetLedgerVersion(int64)                     {}
func (nopMetrics) IncLedgerGets()                             {}
func (nopMetrics) IncLedgerSets()                             {}
func (nopMetrics) IncLedgerDeletes()                          {}
func (nopMetrics) ObserveLedgerLatency(string, time.Duration) {}
