package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
)

// PreviewItem pairs a stored calculation with its lease.
type PreviewItem struct {
	LeaseNumber      string
	AssetDescription string
	Calculation      *domain.LeaseCalculation
}

// CalculationPreview shows what a period looks like before it is posted.
type CalculationPreview struct {
	TenantID             string
	PeriodDate           time.Time
	Items                []PreviewItem
	Summary              schedule.Summary
	ProposedTransactions []domain.ERPTransaction
}

// Preview lists the period's calculations with their totals and the journal legs
// PostPeriod would submit for the unposted ones. Nothing is sent or changed.
func (uc *PostingUseCase) Preview(ctx context.Context, tenantID string, periodDate time.Time) (*CalculationPreview, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	periodDate = schedule.NormalizeDate(periodDate)

	calcs, err := uc.calcRepo.GetForPeriod(ctx, tenantID, periodDate)
	if err != nil {
		return nil, fmt.Errorf("load period calculations: %w", err)
	}

	preview := &CalculationPreview{
		TenantID:             tenantID,
		PeriodDate:           periodDate,
		Items:                make([]PreviewItem, 0, len(calcs)),
		Summary:              schedule.Summarize(calcs),
		ProposedTransactions: []domain.ERPTransaction{},
	}

	leases := make(map[string]*domain.Lease)
	for _, calc := range calcs {
		lease, ok := leases[calc.LeaseID]
		if !ok {
			lease, err = uc.leaseRepo.GetByID(ctx, tenantID, calc.LeaseID)
			if errors.Is(err, domain.ErrLeaseNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load lease %s: %w", calc.LeaseID, err)
			}
			leases[calc.LeaseID] = lease
		}

		preview.Items = append(preview.Items, PreviewItem{
			LeaseNumber:      lease.LeaseNumber,
			AssetDescription: lease.AssetDescription,
			Calculation:      calc,
		})
		if calc.Postable() {
			preview.ProposedTransactions = append(preview.ProposedTransactions, uc.BuildTransactions(calc, lease)...)
		}
	}

	sort.Slice(preview.Items, func(i, j int) bool {
		return preview.Items[i].LeaseNumber < preview.Items[j].LeaseNumber
	})

	return preview, nil
}
