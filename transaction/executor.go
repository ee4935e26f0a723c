package transaction

import (
	"errors"
	"strconv"
	"time"

	"github.com/blockberries/stateberry/action"
	"github.com/blockberries/stateberry/checked"
	"github.com/blockberries/stateberry/ledger"
	"github.com/blockberries/stateberry/logging"
	"github.com/blockberries/stateberry/metrics"
)

// Executor runs transactions against a ledger delta with logging and
// metrics. It is stateless between calls; one Executor serves a whole block.
type Executor struct {
	log     *logging.Logger
	metrics metrics.Metrics
}

// NewExecutor creates an Executor. A nil logger or metrics falls back to the
// nop implementation.
func NewExecutor(log *logging.Logger, m metrics.Metrics) *Executor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	return &Executor{
		log:     log.WithComponent("transaction"),
		metrics: m,
	}
}

// Execute constructs the checked form of tx and executes it against dst.
// On failure dst is left untouched and the rejection is logged and counted.
func (e *Executor) Execute(dst *ledger.Tx, tx Transaction) (*CheckedTransaction, error) {
	start := time.Now()
	log := e.log.WithTx(tx.ID[:])

	ct, err := NewCheckedTransaction(tx, dst)
	if err != nil {
		e.metrics.IncTxsRejected(rejectionReason(err, metrics.ReasonCheckFailed))
		log.Debug("transaction rejected at construction",
			logging.Error(err),
			logging.Nonce(tx.Nonce),
			logging.Count(len(tx.Actions)),
		)
		return nil, err
	}
	for _, ca := range ct.Actions() {
		e.metrics.IncActionsConstructed(string(ca.Kind()))
	}

	eventsBefore := len(dst.Events())
	err = ct.execute(dst, func(ca checked.CheckedAction, elapsed time.Duration) {
		e.metrics.ObserveActionLatency(string(ca.Kind()), elapsed)
	})
	if err != nil {
		for _, ca := range ct.Actions() {
			e.metrics.IncActionsFailed(string(ca.Kind()))
		}
		e.metrics.IncTxsRejected(rejectionReason(err, metrics.ReasonExecutionFailed))
		log.Debug("transaction rejected at execution",
			logging.Error(err),
			logging.Nonce(tx.Nonce),
		)
		return nil, err
	}

	for _, ca := range ct.Actions() {
		e.metrics.IncActionsExecuted(string(ca.Kind()))
	}
	e.recordSideEffects(dst.Events()[eventsBefore:], ct.Actions())
	e.metrics.IncTxsExecuted()
	e.metrics.ObserveTxActions(len(ct.Actions()))
	e.metrics.ObserveTxLatency(time.Since(start))

	log.Debug("transaction executed",
		logging.Nonce(tx.Nonce),
		logging.Count(len(ct.Actions())),
		logging.Duration(time.Since(start)),
	)
	return ct, nil
}

// recordSideEffects counts the side effects of an executed transaction from
// the events its delta recorded and from the kinds of its actions.
func (e *Executor) recordSideEffects(events []ledger.Event, actions []checked.CheckedAction) {
	for _, ev := range events {
		switch ev.Type {
		case "tx.fees":
			amount, err := strconv.ParseUint(eventAttr(ev, "feeAmount"), 10, 64)
			if err == nil {
				e.metrics.AddFeesAccrued(eventAttr(ev, "asset"), amount)
			}
		case "tx.deposit":
			e.metrics.IncDepositsCached()
		case "create_client":
			e.metrics.IncClientsCreated()
		case "update_client":
			e.metrics.IncClientUpdates()
		case "send_packet":
			e.metrics.IncPacketsSent(eventAttr(ev, "packet_src_channel"))
		}
	}
	for _, ca := range actions {
		switch ca.Kind() {
		case action.KindBridgeUnlock, action.KindBridgeTransfer:
			e.metrics.IncWithdrawalEventsRecorded()
		case action.KindIcs20Withdrawal:
			if w, ok := ca.(*checked.Ics20Withdrawal); ok && w.FromBridgeAccount() {
				e.metrics.IncWithdrawalEventsRecorded()
			}
		case action.KindRecoverIbcClient:
			e.metrics.IncClientsRecovered()
		}
	}
}

// eventAttr returns the named attribute's value, or "" when absent.
func eventAttr(ev ledger.Event, key string) string {
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.StringValue()
		}
	}
	return ""
}

// rejectionReason maps envelope errors to their metric label, falling back
// to the given default for action-level failures.
func rejectionReason(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrNoActions):
		return metrics.ReasonNoActions
	case errors.Is(err, ErrInvalidNonce):
		return metrics.ReasonNonceMismatch
	case errors.Is(err, ErrChainIDMismatch):
		return metrics.ReasonChainIDMismatch
	default:
		return fallback
	}
}
