package usecase

import "time"

// Outcome labels shared by the recorders.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
)

// MetricsRecorder receives operational measurements from the usecases.
type MetricsRecorder interface {
	ObservePeriodEnd(outcome string, leases int, duration time.Duration)
	IncLeaseCalculationFailure()
	ObservePosting(outcome string, calculations int)
	ObserveERPCall(outcome string, duration time.Duration)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) ObservePeriodEnd(string, int, time.Duration) {}
func (NopMetrics) IncLeaseCalculationFailure()                 {}
func (NopMetrics) ObservePosting(string, int)                  {}
func (NopMetrics) ObserveERPCall(string, time.Duration)        {}
