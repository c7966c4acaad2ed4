package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/leaseledger/internal/usecase"
)

// Metrics holds all Prometheus metrics. It implements usecase.MetricsRecorder.
type Metrics struct {
	// Period-end metrics
	PeriodEndRuns           *prometheus.CounterVec
	PeriodEndDuration       prometheus.Histogram
	PeriodEndLeases         prometheus.Histogram
	LeaseCalculationsFailed prometheus.Counter

	// Posting metrics
	PostingBatches      *prometheus.CounterVec
	PostedCalculations  prometheus.Counter
	ERPRequests         *prometheus.CounterVec
	ERPRequestDuration  prometheus.Histogram
	ScheduledJobsFailed *prometheus.CounterVec
}

// New creates the metrics and registers them with reg, or with the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PeriodEndRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaseledger_period_end_runs_total",
				Help: "Total number of period-end runs by outcome",
			},
			[]string{"outcome"},
		),
		PeriodEndDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaseledger_period_end_duration_seconds",
			Help:    "Duration of period-end runs",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 300, 900},
		}),
		PeriodEndLeases: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaseledger_period_end_leases",
			Help:    "Number of leases selected per period-end run",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000},
		}),
		LeaseCalculationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "leaseledger_lease_calculation_failures_total",
			Help: "Total number of leases that could not be calculated for a period",
		}),
		PostingBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaseledger_posting_batches_total",
				Help: "Total number of ERP posting attempts by outcome",
			},
			[]string{"outcome"},
		),
		PostedCalculations: factory.NewCounter(prometheus.CounterOpts{
			Name: "leaseledger_posted_calculations_total",
			Help: "Total number of calculations marked as posted",
		}),
		ERPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaseledger_erp_requests_total",
				Help: "Total number of ERP batch submissions by outcome",
			},
			[]string{"outcome"},
		),
		ERPRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaseledger_erp_request_duration_seconds",
			Help:    "Duration of ERP batch submissions",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		ScheduledJobsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaseledger_scheduled_job_failures_total",
				Help: "Total number of failed scheduled jobs by job and tenant",
			},
			[]string{"job", "tenant"},
		),
	}
}

// ObservePeriodEnd records one period-end run.
func (m *Metrics) ObservePeriodEnd(outcome string, leases int, duration time.Duration) {
	m.PeriodEndRuns.WithLabelValues(outcome).Inc()
	m.PeriodEndDuration.Observe(duration.Seconds())
	m.PeriodEndLeases.Observe(float64(leases))
}

// IncLeaseCalculationFailure counts one lease that failed within a run.
func (m *Metrics) IncLeaseCalculationFailure() {
	m.LeaseCalculationsFailed.Inc()
}

// ObservePosting records one posting attempt.
func (m *Metrics) ObservePosting(outcome string, calculations int) {
	m.PostingBatches.WithLabelValues(outcome).Inc()
	if outcome == usecase.OutcomeSuccess {
		m.PostedCalculations.Add(float64(calculations))
	}
}

// ObserveERPCall records one ERP submission.
func (m *Metrics) ObserveERPCall(outcome string, duration time.Duration) {
	m.ERPRequests.WithLabelValues(outcome).Inc()
	m.ERPRequestDuration.Observe(duration.Seconds())
}

// IncScheduledJobFailure counts a scheduled job that returned an error.
func (m *Metrics) IncScheduledJobFailure(job, tenant string) {
	m.ScheduledJobsFailed.WithLabelValues(job, tenant).Inc()
}
