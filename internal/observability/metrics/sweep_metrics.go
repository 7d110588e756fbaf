package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics tracks the billing sweep loop: how often it runs, how
// much overdue backlog it sees and how many customers sit past grace.
type SweepMetrics struct {
	sweepRuns              *prometheus.CounterVec
	sweepDuration          prometheus.Histogram
	overdueBacklog         prometheus.Gauge
	deactivationCandidates prometheus.Gauge
	notificationsDeduped   prometheus.Counter
}

var (
	sweepMetricsOnce sync.Once
	sweepMetrics     *SweepMetrics
)

func Sweep() *SweepMetrics {
	return SweepWithConfig(Config{})
}

func SweepWithConfig(cfg Config) *SweepMetrics {
	sweepMetricsOnce.Do(func() {
		sweepMetrics = newSweepMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return sweepMetrics
}

func ResetSweepMetricsForTest() {
	sweepMetricsOnce = sync.Once{}
	sweepMetrics = nil
}

func newSweepMetrics(registerer prometheus.Registerer, cfg Config) *SweepMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "netkamba"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	sweepRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "netkamba_billing_sweep_runs_total",
			Help:        "Total billing sweep executions.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)

	sweepDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "netkamba_billing_sweep_duration_seconds",
			Help:        "Wall time of one billing sweep.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			ConstLabels: constLabels,
		},
	)

	overdueBacklog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "netkamba_overdue_payments",
			Help:        "Unpaid obligations past their due date at last sweep.",
			ConstLabels: constLabels,
		},
	)

	deactivationCandidates := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "netkamba_deactivation_candidates",
			Help:        "Customers past the grace period with service still on.",
			ConstLabels: constLabels,
		},
	)

	notificationsDeduped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "netkamba_sweep_notifications_total",
			Help:        "Notification appends attempted by the sweep, duplicates included.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		sweepRuns,
		sweepDuration,
		overdueBacklog,
		deactivationCandidates,
		notificationsDeduped,
	)

	return &SweepMetrics{
		sweepRuns:              sweepRuns,
		sweepDuration:          sweepDuration,
		overdueBacklog:         overdueBacklog,
		deactivationCandidates: deactivationCandidates,
		notificationsDeduped:   notificationsDeduped,
	}
}

func (m *SweepMetrics) ObserveSweep(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(result).Inc()
	m.sweepDuration.Observe(duration.Seconds())
}

func (m *SweepMetrics) SetOverdueBacklog(value int) {
	if m == nil {
		return
	}
	m.overdueBacklog.Set(float64(value))
}

func (m *SweepMetrics) SetDeactivationCandidates(value int) {
	if m == nil {
		return
	}
	m.deactivationCandidates.Set(float64(value))
}

func (m *SweepMetrics) IncNotificationAppends(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.notificationsDeduped.Add(float64(count))
}
