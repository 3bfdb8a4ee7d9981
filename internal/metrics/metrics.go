package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics covers the whole order lifecycle: intake, payment
// observation, dispatch and expiry.
type EngineMetrics struct {
	OrdersCreatedTotal     prometheus.CounterVec
	OrdersExpiredTotal     prometheus.Counter
	PaymentsObservedTotal  prometheus.CounterVec
	PaymentsConfirmedTotal prometheus.CounterVec
	ExtraPaymentsTotal     prometheus.CounterVec
	LatePaymentsTotal      prometheus.Counter

	DispatchesSentTotal   prometheus.CounterVec
	DispatchesFailedTotal prometheus.CounterVec
	DispatchDuration      prometheus.HistogramVec

	WatcherScanErrorsTotal prometheus.CounterVec
	WatcherCursorPosition  prometheus.GaugeVec

	PoolFreeAddresses  prometheus.GaugeVec
	PoolExhaustedTotal prometheus.CounterVec
}

func New() *EngineMetrics {
	return &EngineMetrics{
		OrdersCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Orders accepted, by product and fulfillment kind",
			},
			[]string{"product_id", "kind"},
		),

		OrdersExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_expired_total",
				Help: "Orders that reached their deadline unpaid",
			},
		),

		PaymentsObservedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_observed_total",
				Help: "Matching transfers seen on chain",
			},
			[]string{"chain"},
		),

		PaymentsConfirmedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_confirmed_total",
				Help: "Payments that crossed the confirmation threshold",
			},
			[]string{"chain"},
		),

		ExtraPaymentsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extra_payments_total",
				Help: "Second and later payments to one order address",
			},
			[]string{"chain"},
		),

		LatePaymentsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "late_payments_total",
				Help: "Payments that arrived after order expiry",
			},
		),

		DispatchesSentTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatches_sent_total",
				Help: "Payouts submitted, by dispatcher",
			},
			[]string{"dispatcher"},
		),

		DispatchesFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatches_failed_total",
				Help: "Payouts parked for manual handling, by dispatcher",
			},
			[]string{"dispatcher"},
		),

		DispatchDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_duration_seconds",
				Help:    "Submit plus finality wait per payout",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"dispatcher"},
		),

		WatcherScanErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watcher_scan_errors_total",
				Help: "Failed scan iterations, by chain",
			},
			[]string{"chain"},
		),

		WatcherCursorPosition: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "watcher_cursor_position",
				Help: "Last persisted scan position per chain and scan key",
			},
			[]string{"chain", "scan_key"},
		),

		PoolFreeAddresses: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pool_free_addresses",
				Help: "Free deposit addresses per chain and token",
			},
			[]string{"chain", "token"},
		),

		PoolExhaustedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pool_exhausted_total",
				Help: "Order creations rejected for lack of a free address",
			},
			[]string{"chain", "token"},
		),
	}
}

func (m *EngineMetrics) RecordOrderCreated(productId, kind string) {
	m.OrdersCreatedTotal.WithLabelValues(productId, kind).Inc()
}

func (m *EngineMetrics) RecordPaymentObserved(chain string) {
	m.PaymentsObservedTotal.WithLabelValues(chain).Inc()
}

func (m *EngineMetrics) RecordPaymentConfirmed(chain string) {
	m.PaymentsConfirmedTotal.WithLabelValues(chain).Inc()
}

func (m *EngineMetrics) RecordExtraPayment(chain string) {
	m.ExtraPaymentsTotal.WithLabelValues(chain).Inc()
}

func (m *EngineMetrics) RecordDispatchSent(dispatcher string, durationSeconds float64) {
	m.DispatchesSentTotal.WithLabelValues(dispatcher).Inc()
	m.DispatchDuration.WithLabelValues(dispatcher).Observe(durationSeconds)
}

func (m *EngineMetrics) RecordDispatchFailed(dispatcher string) {
	m.DispatchesFailedTotal.WithLabelValues(dispatcher).Inc()
}

func (m *EngineMetrics) RecordScanError(chain string) {
	m.WatcherScanErrorsTotal.WithLabelValues(chain).Inc()
}

func (m *EngineMetrics) RecordCursor(chain, scanKey string, position uint64) {
	m.WatcherCursorPosition.WithLabelValues(chain, scanKey).Set(float64(position))
}

func (m *EngineMetrics) RecordPoolFree(chain, token string, free int64) {
	m.PoolFreeAddresses.WithLabelValues(chain, token).Set(float64(free))
}

func (m *EngineMetrics) RecordPoolExhausted(chain, token string) {
	m.PoolExhaustedTotal.WithLabelValues(chain, token).Inc()
}
