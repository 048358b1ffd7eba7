package predict

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/scorekit/core"
)

// Metrics 是预测服务的 Prometheus 指标。nil 的 *Metrics 可安全调用（不记录）。
type Metrics struct {
	predictions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewMetrics 创建指标并注册到 reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorekit",
			Name:      "predictions_total",
			Help:      "Model predictions by model and outcome.",
		}, []string{"model", "outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scorekit",
			Name:      "rejected_total",
			Help:      "Match states rejected by validation, by error kind.",
		}, []string{"kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scorekit",
			Name:      "model_latency_seconds",
			Help:      "Model call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"model"}),
	}
	for _, c := range []prometheus.Collector{m.predictions, m.rejected, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRejected(kind core.ErrorKind) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.rejected.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeSucceeded(model string, n int) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(model, "ok").Add(float64(n))
}

func (m *Metrics) observeFailed(model string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(model, "error").Inc()
}

func (m *Metrics) observeLatency(model string, d time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(model).Observe(d.Seconds())
}
