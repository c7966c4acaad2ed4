package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
)

// Summary aggregates a set of period calculations.
type Summary struct {
	Calculations             int
	Unposted                 int
	TotalLeasePayments       decimal.Decimal
	TotalInterestExpense     decimal.Decimal
	TotalAmortizationExpense decimal.Decimal
	TotalROUAssets           decimal.Decimal
	TotalLeaseLiabilities    decimal.Decimal
}

// Summarize totals the expense components and ending balances of calcs.
func Summarize(calcs []*domain.LeaseCalculation) Summary {
	s := Summary{
		TotalLeasePayments:       decimal.Zero,
		TotalInterestExpense:     decimal.Zero,
		TotalAmortizationExpense: decimal.Zero,
		TotalROUAssets:           decimal.Zero,
		TotalLeaseLiabilities:    decimal.Zero,
	}

	for _, c := range calcs {
		s.Calculations++
		if !c.PostedToERP {
			s.Unposted++
		}
		s.TotalLeasePayments = s.TotalLeasePayments.Add(c.LeasePayment)
		s.TotalInterestExpense = s.TotalInterestExpense.Add(c.InterestExpense)
		s.TotalAmortizationExpense = s.TotalAmortizationExpense.Add(c.AmortizationExpense)
		s.TotalROUAssets = s.TotalROUAssets.Add(c.EndingROUAsset)
		s.TotalLeaseLiabilities = s.TotalLeaseLiabilities.Add(c.EndingLeaseLiability)
	}

	return s
}
