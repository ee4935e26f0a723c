package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Block metrics
	blockHeight    prometheus.Gauge
	blocksExecuted prometheus.Counter
	blockLatency   prometheus.Histogram

	// Transaction metrics
	txsExecuted prometheus.Counter
	txsRejected *prometheus.CounterVec
	txActions   prometheus.Histogram
	txLatency   prometheus.Histogram

	// Action metrics
	actionsConstructed *prometheus.CounterVec
	actionsExecuted    *prometheus.CounterVec
	actionsFailed      *prometheus.CounterVec
	actionLatency      *prometheus.HistogramVec

	// Fee metrics
	feesAccrued *prometheus.CounterVec

	// Bridge metrics
	depositsCached   prometheus.Counter
	withdrawalEvents prometheus.Counter

	// IBC metrics
	clientsCreated   prometheus.Counter
	clientUpdates    prometheus.Counter
	clientsRecovered prometheus.Counter
	packetsSent      *prometheus.CounterVec

	// Ledger metrics
	ledgerVersion prometheus.Gauge
	ledgerGets    prometheus.Counter
	ledgerSets    prometheus.Counter
	ledgerDeletes prometheus.Counter
	ledgerLatency *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	m := &PrometheusMetrics{
		registry: registry,

		// Block metrics
		blockHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "block_height",
				Help:      "Current block height",
			},
		),
		blocksExecuted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_executed_total",
				Help:      "Total number of blocks executed",
			},
		),
		blockLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "block_latency_seconds",
				Help:      "Time taken to execute a block",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),

		// Transaction metrics
		txsExecuted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txs_executed_total",
				Help:      "Total number of transactions executed",
			},
		),
		txsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txs_rejected_total",
				Help:      "Total number of rejected transactions",
			},
			[]string{"reason"},
		),
		txActions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tx_actions",
				Help:      "Number of actions per transaction",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
		txLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tx_latency_seconds",
				Help:      "Time taken to execute a transaction",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		// Action metrics
		actionsConstructed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_constructed_total",
				Help:      "Total number of checked actions constructed",
			},
			[]string{"kind"},
		),
		actionsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_executed_total",
				Help:      "Total number of actions executed",
			},
			[]string{"kind"},
		),
		actionsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_failed_total",
				Help:      "Total number of actions that failed checks or execution",
			},
			[]string{"kind"},
		),
		actionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_latency_seconds",
				Help:      "Time taken to execute an action",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"kind"},
		),

		// Fee metrics
		feesAccrued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fees_accrued_total",
				Help:      "Total fees accrued per asset",
			},
			[]string{"asset"},
		),

		// Bridge metrics
		depositsCached: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deposits_cached_total",
				Help:      "Total number of bridge deposits cached",
			},
		),
		withdrawalEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "withdrawal_events_total",
				Help:      "Total number of rollup withdrawal events recorded",
			},
		),

		// IBC metrics
		clientsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ibc_clients_created_total",
				Help:      "Total number of IBC clients created",
			},
		),
		clientUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ibc_client_updates_total",
				Help:      "Total number of IBC client updates",
			},
		),
		clientsRecovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ibc_clients_recovered_total",
				Help:      "Total number of IBC clients recovered",
			},
		),
		packetsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ibc_packets_sent_total",
				Help:      "Total number of IBC packets sent",
			},
			[]string{"channel"},
		),

		// Ledger metrics
		ledgerVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ledger_version",
				Help:      "Current committed ledger version",
			},
		),
		ledgerGets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_gets_total",
				Help:      "Total number of ledger get operations",
			},
		),
		ledgerSets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_sets_total",
				Help:      "Total number of ledger set operations",
			},
		),
		ledgerDeletes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_deletes_total",
				Help:      "Total number of ledger delete operations",
			},
		),
		ledgerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_latency_seconds",
				Help:      "Latency of ledger operations",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"op"},
		),
	}

	// Register all metrics
	m.registerMetrics()

	return m
}

func (m *PrometheusMetrics) registerMetrics() {
	m.registry.MustRegister(
		// Block metrics
		m.blockHeight,
		m.blocksExecuted,
		m.blockLatency,

		// Transaction metrics
		m.txsExecuted,
		m.txsRejected,
		m.txActions,
		m.txLatency,

		// Action metrics
		m.actionsConstructed,
		m.actionsExecuted,
		m.actionsFailed,
		m.actionLatency,

		// Fee metrics
		m.feesAccrued,

		// Bridge metrics
		m.depositsCached,
		m.withdrawalEvents,

		// IBC metrics
		m.clientsCreated,
		m.clientUpdates,
		m.clientsRecovered,
		m.packetsSent,

		// Ledger metrics
		m.ledgerVersion,
		m.ledgerGets,
		m.ledgerSets,
		m.ledgerDeletes,
		m.ledgerLatency,
	)
}

// Block metrics implementation

func (m *PrometheusMetrics) SetBlockHeight(height uint64) {
	m.blockHeight.Set(float64(height))
}

func (m *PrometheusMetrics) IncBlocksExecuted() {
	m.blocksExecuted.Inc()
}

func (m *PrometheusMetrics) ObserveBlockLatency(latency time.Duration) {
	m.blockLatency.Observe(latency.Seconds())
}

// Transaction metrics implementation

func (m *PrometheusMetrics) IncTxsExecuted() {
	m.txsExecuted.Inc()
}

func (m *PrometheusMetrics) IncTxsRejected(reason string) {
	m.txsRejected.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) ObserveTxActions(count int) {
	m.txActions.Observe(float64(count))
}

func (m *PrometheusMetrics) ObserveTxLatency(latency time.Duration) {
	m.txLatency.Observe(latency.Seconds())
}

// Action metrics implementation

func (m *PrometheusMetrics) IncActionsConstructed(kind string) {
	m.actionsConstructed.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) IncActionsExecuted(kind string) {
	m.actionsExecuted.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) IncActionsFailed(kind string) {
	m.actionsFailed.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) ObserveActionLatency(kind string, latency time.Duration) {
	m.actionLatency.WithLabelValues(kind).Observe(latency.Seconds())
}

// Fee metrics implementation

func (m *PrometheusMetrics) AddFeesAccrued(asset string, amount uint64) {
	m.feesAccrued.WithLabelValues(asset).Add(float64(amount))
}

// Bridge metrics implementation

func (m *PrometheusMetrics) IncDepositsCached() {
	m.depositsCached.Inc()
}

func (m *PrometheusMetrics) IncWithdrawalEventsRecorded() {
	m.withdrawalEvents.Inc()
}

// IBC metrics implementation

func (m *PrometheusMetrics) IncClientsCreated() {
	m.clientsCreated.Inc()
}

func (m *PrometheusMetrics) IncClientUpdates() {
	m.clientUpdates.Inc()
}

func (m *PrometheusMetrics) IncClientsRecovered() {
	m.clientsRecovered.Inc()
}

func (m *PrometheusMetrics) IncPacketsSent(channel string) {
	m.packetsSent.WithLabelValues(channel).Inc()
}

// Ledger metrics implementation

func (m *PrometheusMetrics) SetLedgerVersion(version int64) {
	m.ledgerVersion.Set(float64(version))
}

func (m *PrometheusMetrics) IncLedgerGets() {
	m.ledgerGets.Inc()
}

func (m *PrometheusMetrics) IncLedgerSets() {
	m.ledgerSets.Inc()
}

func (m *PrometheusMetrics) IncLedgerDeletes() {
	m.ledgerDeletes.Inc()
}

func (m *PrometheusMetrics) ObserveLedgerLatency(op string, latency time.Duration) {
	m.ledgerLatency.WithLabelValues(op).Observe(latency.Seconds())
}

// Handler returns an HTTP handler for serving metrics.
func (m *PrometheusMetrics) Handler() any {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// HTTPHandler returns a typed HTTP handler for serving metrics.
func (m *PrometheusMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
