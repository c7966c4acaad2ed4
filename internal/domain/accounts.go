package domain

// Account names used on ERP legs.
const (
	AccountNameInterestExpense         = "Interest Expense - Leases"
	AccountNameLeaseLiability          = "Lease Liability"
	AccountNameAmortizationExpense     = "Amortization Expense - Right of Use Assets"
	AccountNameAccumulatedAmortization = "Accumulated Amortization - Right of Use Assets"
	AccountNameCash                    = "Cash"
)

// ChartOfAccounts maps the lease accounting concepts to ERP account codes.
type ChartOfAccounts struct {
	ROUAsset                string
	AccumulatedAmortization string
	LeaseLiability          string
	InterestExpense         string
	AmortizationExpense     string
	Cash                    string
}

// DefaultChartOfAccounts returns the stock account codes.
func DefaultChartOfAccounts() ChartOfAccounts {
	return ChartOfAccounts{
		ROUAsset:                "1600",
		AccumulatedAmortization: "1650",
		LeaseLiability:          "2400",
		InterestExpense:         "7200",
		AmortizationExpense:     "6200",
		Cash:                    "1000",
	}
}

// WithDefaults fills empty codes from DefaultChartOfAccounts.
func (c ChartOfAccounts) WithDefaults() ChartOfAccounts {
	d := DefaultChartOfAccounts()
	if c.ROUAsset == "" {
		c.ROUAsset = d.ROUAsset
	}
	if c.AccumulatedAmortization == "" {
		c.AccumulatedAmortization = d.AccumulatedAmortization
	}
	if c.LeaseLiability == "" {
		c.LeaseLiability = d.LeaseLiability
	}
	if c.InterestExpense == "" {
		c.InterestExpense = d.InterestExpense
	}
	if c.AmortizationExpense == "" {
		c.AmortizationExpense = d.AmortizationExpense
	}
	if c.Cash == "" {
		c.Cash = d.Cash
	}
	return c
}
