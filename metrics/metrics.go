// Package metrics exposes Prometheus instruments for the wheel.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type WheelMetrics struct {
	spins          *prometheus.CounterVec
	drawRejections prometheus.Counter
	claims         *prometheus.CounterVec
	feesCollected  *prometheus.CounterVec
	prizePool      prometheus.Gauge
	operations     *prometheus.CounterVec
}

var (
	wheelOnce     sync.Once
	wheelRegistry *WheelMetrics
)

// Wheel returns the process-wide instruments, registering them on first use.
func Wheel() *WheelMetrics {
	wheelOnce.Do(func() {
		wheelRegistry = &WheelMetrics{
			spins: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "wheel_spins_total",
				Help: "Spins resolved, by payout token kind.",
			}, []string{"kind"}),
			drawRejections: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "wheel_draw_rejections_total",
				Help: "Draws redrawn because the payout reached half the prize pool.",
			}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "wheel_claims_total",
				Help: "Claim attempts by path and result.",
			}, []string{"path", "result"}),
			feesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "wheel_fees_collected_total",
				Help: "Payment units routed per destination.",
			}, []string{"destination"}),
			prizePool: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "wheel_prize_pool_balance",
				Help: "Prize pool balance observed at the start of the last spin.",
			}),
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "wheel_operations_total",
				Help: "Engine operations by name and outcome.",
			}, []string{"op", "outcome"}),
		}
		prometheus.MustRegister(
			wheelRegistry.spins,
			wheelRegistry.drawRejections,
			wheelRegistry.claims,
			wheelRegistry.feesCollected,
			wheelRegistry.prizePool,
			wheelRegistry.operations,
		)
	})
	return wheelRegistry
}

func (m *WheelMetrics) ObserveSpin(kind string, rejections int, pool uint64) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.spins.WithLabelValues(kind).Inc()
	if rejections > 0 {
		m.drawRejections.Add(float64(rejections))
	}
	m.prizePool.Set(float64(pool))
}

func (m *WheelMetrics) ObserveFees(dev, burn, pool uint64) {
	if m == nil {
		return
	}
	m.feesCollected.WithLabelValues("dev").Add(float64(dev))
	m.feesCollected.WithLabelValues("burn").Add(float64(burn))
	m.feesCollected.WithLabelValues("pool").Add(float64(pool))
}

func (m *WheelMetrics) ObserveClaim(path, result string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(path, result).Inc()
}

func (m *WheelMetrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}
