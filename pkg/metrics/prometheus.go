package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes pipeline counters and latencies via Prometheus.
type Recorder struct {
	signalsTotal   *prometheus.CounterVec
	decisionsTotal *prometheus.CounterVec
	ordersTotal    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	confidence     *prometheus.GaugeVec
	lastPrice      *prometheus.GaugeVec
	stageLatency   *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeflow_signals_total",
				Help: "Signal decisions produced, by pair and action",
			},
			[]string{"pair", "action"},
		),
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeflow_decisions_total",
				Help: "Pipeline stage decisions, by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		ordersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeflow_orders_total",
				Help: "Orders sent to the gateway, by terminal status",
			},
			[]string{"status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradeflow_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradeflow_signal_confidence",
				Help: "Confidence of the most recent signal per pair",
			},
			[]string{"pair"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradeflow_last_price",
				Help: "Last observed close price per pair",
			},
			[]string{"pair"},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradeflow_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordSignal counts a produced signal decision.
func (r *Recorder) RecordSignal(pair, action string) {
	r.signalsTotal.WithLabelValues(pair, action).Inc()
}

// RecordDecision counts a stage outcome (approved, rejected, executed...).
func (r *Recorder) RecordDecision(stage, outcome string) {
	r.decisionsTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordOrder counts an order by its terminal status.
func (r *Recorder) RecordOrder(status string) {
	r.ordersTotal.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordConfidence records the latest signal confidence for a pair.
func (r *Recorder) RecordConfidence(pair string, v float64) {
	r.confidence.WithLabelValues(pair).Set(v)
}

// RecordLastPrice records the last close price for a pair.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordStageLatency records a pipeline stage duration in seconds.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}
