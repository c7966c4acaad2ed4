package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
	"github.com/iho/leaseledger/internal/usecase"
)

// LeaseResponse represents a lease in API responses.
type LeaseResponse struct {
	ID                    string          `json:"id"`
	TenantID              string          `json:"tenant_id"`
	LeaseNumber           string          `json:"lease_number"`
	AssetDescription      string          `json:"asset_description"`
	CommencementDate      string          `json:"commencement_date"`
	EndDate               string          `json:"end_date"`
	LeasePayment          decimal.Decimal `json:"lease_payment"`
	PaymentFrequency      string          `json:"payment_frequency"`
	DiscountRate          decimal.Decimal `json:"discount_rate"`
	InitialROUAsset       decimal.Decimal `json:"initial_rou_asset"`
	InitialLeaseLiability decimal.Decimal `json:"initial_lease_liability"`
	Currency              string          `json:"currency"`
	ERPAssetID            string          `json:"erp_asset_id,omitempty"`
	Status                string          `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	LastCalculationDate   *string         `json:"last_calculation_date,omitempty"`
}

// LeaseFromDomain converts a domain lease to a response.
func LeaseFromDomain(l *domain.Lease) *LeaseResponse {
	resp := &LeaseResponse{
		ID:                    l.ID,
		TenantID:              l.TenantID,
		LeaseNumber:           l.LeaseNumber,
		AssetDescription:      l.AssetDescription,
		CommencementDate:      l.CommencementDate.Format(DateLayout),
		EndDate:               l.EndDate.Format(DateLayout),
		LeasePayment:          l.LeasePayment,
		PaymentFrequency:      l.PaymentFrequency.String(),
		DiscountRate:          l.DiscountRate,
		InitialROUAsset:       l.InitialROUAsset,
		InitialLeaseLiability: l.InitialLeaseLiability,
		Currency:              l.Currency,
		ERPAssetID:            l.ERPAssetID,
		Status:                string(l.Status),
		CreatedAt:             l.CreatedAt,
	}
	if l.LastCalculationDate != nil {
		d := l.LastCalculationDate.Format(DateLayout)
		resp.LastCalculationDate = &d
	}
	return resp
}

// LeasesFromDomain converts domain leases to responses.
func LeasesFromDomain(leases []*domain.Lease) []*LeaseResponse {
	result := make([]*LeaseResponse, len(leases))
	for i, l := range leases {
		result[i] = LeaseFromDomain(l)
	}
	return result
}

// ListLeasesResponse represents a page of leases.
type ListLeasesResponse struct {
	Leases []*LeaseResponse `json:"leases"`
	Total  int64            `json:"total"`
}

// CalculationResponse represents one period calculation.
type CalculationResponse struct {
	ID                      string          `json:"id,omitempty"`
	LeaseID                 string          `json:"lease_id"`
	PeriodDate              string          `json:"period_date"`
	BeginningROUAsset       decimal.Decimal `json:"beginning_rou_asset"`
	BeginningLeaseLiability decimal.Decimal `json:"beginning_lease_liability"`
	LeasePayment            decimal.Decimal `json:"lease_payment"`
	InterestExpense         decimal.Decimal `json:"interest_expense"`
	AmortizationExpense     decimal.Decimal `json:"amortization_expense"`
	EndingROUAsset          decimal.Decimal `json:"ending_rou_asset"`
	EndingLeaseLiability    decimal.Decimal `json:"ending_lease_liability"`
	Status                  string          `json:"status"`
	PostedToERP             bool            `json:"posted_to_erp"`
	ERPPostingDate          *time.Time      `json:"erp_posting_date,omitempty"`
	ERPTransactionID        string          `json:"erp_transaction_id,omitempty"`
	CalculatedAt            time.Time       `json:"calculated_at"`
}

// CalculationFromDomain converts a domain calculation to a response.
func CalculationFromDomain(c *domain.LeaseCalculation) *CalculationResponse {
	return &CalculationResponse{
		ID:                      c.ID,
		LeaseID:                 c.LeaseID,
		PeriodDate:              c.PeriodDate.Format(DateLayout),
		BeginningROUAsset:       c.BeginningROUAsset,
		BeginningLeaseLiability: c.BeginningLeaseLiability,
		LeasePayment:            c.LeasePayment,
		InterestExpense:         c.InterestExpense,
		AmortizationExpense:     c.AmortizationExpense,
		EndingROUAsset:          c.EndingROUAsset,
		EndingLeaseLiability:    c.EndingLeaseLiability,
		Status:                  string(c.Status),
		PostedToERP:             c.PostedToERP,
		ERPPostingDate:          c.ERPPostingDate,
		ERPTransactionID:        c.ERPTransactionID,
		CalculatedAt:            c.CalculatedAt,
	}
}

// CalculationsFromDomain converts domain calculations to responses.
func CalculationsFromDomain(calcs []*domain.LeaseCalculation) []*CalculationResponse {
	result := make([]*CalculationResponse, len(calcs))
	for i, c := range calcs {
		result[i] = CalculationFromDomain(c)
	}
	return result
}

// SummaryResponse represents aggregated totals over a set of calculations.
type SummaryResponse struct {
	Calculations             int             `json:"calculations"`
	Unposted                 int             `json:"unposted"`
	TotalLeasePayments       decimal.Decimal `json:"total_lease_payments"`
	TotalInterestExpense     decimal.Decimal `json:"total_interest_expense"`
	TotalAmortizationExpense decimal.Decimal `json:"total_amortization_expense"`
	TotalROUAssets           decimal.Decimal `json:"total_rou_assets"`
	TotalLeaseLiabilities    decimal.Decimal `json:"total_lease_liabilities"`
}

// SummaryFromSchedule converts a schedule summary to a response.
func SummaryFromSchedule(s schedule.Summary) SummaryResponse {
	return SummaryResponse{
		Calculations:             s.Calculations,
		Unposted:                 s.Unposted,
		TotalLeasePayments:       s.TotalLeasePayments,
		TotalInterestExpense:     s.TotalInterestExpense,
		TotalAmortizationExpense: s.TotalAmortizationExpense,
		TotalROUAssets:           s.TotalROUAssets,
		TotalLeaseLiabilities:    s.TotalLeaseLiabilities,
	}
}

// ScheduleResponse represents the projected schedule of a lease.
type ScheduleResponse struct {
	Lease        *LeaseResponse         `json:"lease"`
	TotalPeriods int                    `json:"total_periods"`
	Periods      []*CalculationResponse `json:"periods"`
	Summary      SummaryResponse        `json:"summary"`
}

// ScheduleFromUseCase converts a lease schedule to a response.
func ScheduleFromUseCase(s *usecase.LeaseSchedule) *ScheduleResponse {
	return &ScheduleResponse{
		Lease:        LeaseFromDomain(s.Lease),
		TotalPeriods: s.TotalPeriods,
		Periods:      CalculationsFromDomain(s.Periods),
		Summary:      SummaryFromSchedule(s.Summary),
	}
}

// LeaseFailureResponse explains why one lease was not advanced.
type LeaseFailureResponse struct {
	LeaseID     string `json:"lease_id"`
	LeaseNumber string `json:"lease_number"`
	Error       string `json:"error"`
}

// PeriodEndResponse represents the outcome of a period-end run.
type PeriodEndResponse struct {
	Success      bool                   `json:"success"`
	Message      string                 `json:"message"`
	PeriodDate   string                 `json:"period_date"`
	Total        int                    `json:"total"`
	Succeeded    int                    `json:"succeeded"`
	Skipped      int                    `json:"skipped"`
	Failures     []LeaseFailureResponse `json:"failures,omitempty"`
	Calculations []*CalculationResponse `json:"calculations"`
}

// PeriodEndFromUseCase converts a period-end result to a response.
func PeriodEndFromUseCase(r *usecase.PeriodEndResult) *PeriodEndResponse {
	resp := &PeriodEndResponse{
		Success:      r.Success(),
		Message:      r.Message(),
		PeriodDate:   r.PeriodDate.Format(DateLayout),
		Total:        r.Total,
		Succeeded:    r.Succeeded,
		Skipped:      r.Skipped,
		Calculations: CalculationsFromDomain(r.Calculations),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, LeaseFailureResponse{
			LeaseID:     f.LeaseID,
			LeaseNumber: f.LeaseNumber,
			Error:       f.Err.Error(),
		})
	}
	return resp
}

// PostingResponse represents the outcome of an ERP posting.
type PostingResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	BatchID        string   `json:"batch_id,omitempty"`
	BatchReference string   `json:"batch_reference,omitempty"`
	CalculationIDs []string `json:"calculation_ids,omitempty"`
	Posted         int      `json:"posted"`
}

// PostingFromUseCase converts a posting result to a response.
func PostingFromUseCase(r *usecase.PostingResult) *PostingResponse {
	return &PostingResponse{
		Success:        r.Success,
		Message:        r.Message,
		BatchID:        r.BatchID,
		BatchReference: r.BatchReference,
		CalculationIDs: r.CalculationIDs,
		Posted:         r.Posted(),
	}
}

// PreviewItemResponse is one calculation of a period preview.
type PreviewItemResponse struct {
	LeaseNumber      string               `json:"lease_number"`
	AssetDescription string               `json:"asset_description"`
	Calculation      *CalculationResponse `json:"calculation"`
}

// PreviewResponse shows a period's calculations and proposed journal entries.
type PreviewResponse struct {
	PeriodDate           string                  `json:"period_date"`
	Items                []PreviewItemResponse   `json:"items"`
	Summary              SummaryResponse         `json:"summary"`
	ProposedTransactions []domain.ERPTransaction `json:"proposed_transactions"`
}

// PreviewFromUseCase converts a calculation preview to a response.
func PreviewFromUseCase(p *usecase.CalculationPreview) *PreviewResponse {
	resp := &PreviewResponse{
		PeriodDate:           p.PeriodDate.Format(DateLayout),
		Items:                make([]PreviewItemResponse, len(p.Items)),
		Summary:              SummaryFromSchedule(p.Summary),
		ProposedTransactions: p.ProposedTransactions,
	}
	for i, item := range p.Items {
		resp.Items[i] = PreviewItemResponse{
			LeaseNumber:      item.LeaseNumber,
			AssetDescription: item.AssetDescription,
			Calculation:      CalculationFromDomain(item.Calculation),
		}
	}
	return resp
}

// ChainBreakResponse describes one inconsistent calculation.
type ChainBreakResponse struct {
	CalculationID string `json:"calculation_id"`
	PeriodDate    string `json:"period_date"`
	Reason        string `json:"reason"`
}

// ReconciliationResponse is the reconciliation outcome of one lease.
type ReconciliationResponse struct {
	LeaseID      string               `json:"lease_id"`
	LeaseNumber  string               `json:"lease_number"`
	Periods      int                  `json:"periods"`
	Posted       int                  `json:"posted"`
	IsReconciled bool                 `json:"is_reconciled"`
	Breaks       []ChainBreakResponse `json:"breaks,omitempty"`
	LastChecked  time.Time            `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		LeaseID:      r.LeaseID,
		LeaseNumber:  r.LeaseNumber,
		Periods:      r.Periods,
		Posted:       r.Posted,
		IsReconciled: r.IsReconciled,
		LastChecked:  r.LastChecked,
	}
	for _, b := range r.Breaks {
		resp.Breaks = append(resp.Breaks, ChainBreakResponse{
			CalculationID: b.CalculationID,
			PeriodDate:    b.PeriodDate.Format(DateLayout),
			Reason:        b.Reason,
		})
	}
	return resp
}

// ReconciliationReportResponse summarizes reconciliation across a tenant.
type ReconciliationReportResponse struct {
	TotalLeases      int                       `json:"total_leases"`
	ReconciledLeases int                       `json:"reconciled_leases"`
	Discrepancies    []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt        time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to a response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalLeases:      r.TotalLeases,
		ReconciledLeases: r.ReconciledLeases,
		Discrepancies:    make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:        r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
