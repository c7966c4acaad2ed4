package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationStatus is the lifecycle state of a period calculation.
type CalculationStatus string

const (
	CalculationStatusDraft      CalculationStatus = "draft"
	CalculationStatusCalculated CalculationStatus = "calculated"
	CalculationStatusPosted     CalculationStatus = "posted"
	CalculationStatusFailed     CalculationStatus = "failed"
)

// LeaseCalculation is one period of a lease schedule. Rows are append-only;
// only the posting fields change after creation.
type LeaseCalculation struct {
	ID                      string
	LeaseID                 string
	TenantID                string
	PeriodDate              time.Time
	BeginningROUAsset       decimal.Decimal
	BeginningLeaseLiability decimal.Decimal
	LeasePayment            decimal.Decimal
	InterestExpense         decimal.Decimal
	AmortizationExpense     decimal.Decimal
	EndingROUAsset          decimal.Decimal
	EndingLeaseLiability    decimal.Decimal
	CalculatedAt            time.Time
	Status                  CalculationStatus
	Notes                   string
	PostedToERP             bool
	ERPPostingDate          *time.Time
	ERPTransactionID        string
}

// Postable reports whether the calculation may be included in a posting batch.
func (c *LeaseCalculation) Postable() bool {
	return !c.PostedToERP && c.Status == CalculationStatusCalculated
}

// MarkPosted records a successful ERP posting.
func (c *LeaseCalculation) MarkPosted(batchID string, at time.Time) {
	c.PostedToERP = true
	c.ERPPostingDate = &at
	c.ERPTransactionID = batchID
	c.Status = CalculationStatusPosted
}
