package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ERPTransaction is one debit or credit leg of a journal entry.
type ERPTransaction struct {
	TransactionID   string          `json:"transactionId,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	AccountCode     string          `json:"accountCode"`
	AccountName     string          `json:"accountName"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference"`
	Department      string          `json:"department,omitempty"`
	CostCenter      string          `json:"costCenter,omitempty"`
	Currency        string          `json:"currency"`
}

// PostingRequest is the batch submitted to the ERP in a single call.
type PostingRequest struct {
	Transactions   []ERPTransaction `json:"transactions"`
	BatchReference string           `json:"batchReference"`
	PostingDate    time.Time        `json:"postingDate"`
	Description    string           `json:"description"`
}

// PostingResponse is the ERP's answer to a PostingRequest.
type PostingResponse struct {
	Success bool     `json:"success"`
	BatchID string   `json:"batchId"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// Totals returns the summed debit and credit amounts of the legs.
func Totals(legs []ERPTransaction) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, leg := range legs {
		debit = debit.Add(leg.DebitAmount)
		credit = credit.Add(leg.CreditAmount)
	}
	return debit, credit
}

// ERPAsset is a fixed asset record held by the ERP; leases reference one via
// ERPAssetID.
type ERPAsset struct {
	AssetID         string          `json:"assetId"`
	AssetNumber     string          `json:"assetNumber"`
	Description     string          `json:"description"`
	AssetClass      string          `json:"assetClass"`
	Cost            decimal.Decimal `json:"cost"`
	AcquisitionDate time.Time       `json:"acquisitionDate"`
	Location        string          `json:"location"`
	Department      string          `json:"department"`
	CostCenter      string          `json:"costCenter"`
	Status          string          `json:"status"`
	LastUpdated     time.Time       `json:"lastUpdated"`
}
