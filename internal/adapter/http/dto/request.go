package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/usecase"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

var validate = validator.New()

// Validate checks the validate tags of a request and flattens the failures into
// one error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// CreateLeaseRequest represents a request to register a lease.
type CreateLeaseRequest struct {
	LeaseNumber           string           `json:"lease_number" validate:"required,max=50"`
	AssetDescription      string           `json:"asset_description" validate:"max=500"`
	CommencementDate      string           `json:"commencement_date" validate:"required,datetime=2006-01-02"`
	EndDate               string           `json:"end_date" validate:"required,datetime=2006-01-02"`
	LeasePayment          decimal.Decimal  `json:"lease_payment"`
	PaymentFrequency      string           `json:"payment_frequency" validate:"required"`
	DiscountRate          decimal.Decimal  `json:"discount_rate"`
	InitialROUAsset       *decimal.Decimal `json:"initial_rou_asset,omitempty"`
	InitialLeaseLiability *decimal.Decimal `json:"initial_lease_liability,omitempty"`
	Currency              string           `json:"currency" validate:"omitempty,len=3"`
	ERPAssetID            string           `json:"erp_asset_id" validate:"max=50"`
	Status                string           `json:"status" validate:"omitempty,oneof=draft active"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLeaseRequest) ToUseCaseInput(tenantID string) (usecase.CreateLeaseInput, error) {
	commencement, err := ParseDate(r.CommencementDate)
	if err != nil {
		return usecase.CreateLeaseInput{}, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return usecase.CreateLeaseInput{}, err
	}
	frequency, err := domain.ParsePaymentFrequency(r.PaymentFrequency)
	if err != nil {
		return usecase.CreateLeaseInput{}, err
	}

	return usecase.CreateLeaseInput{
		TenantID:              tenantID,
		LeaseNumber:           r.LeaseNumber,
		AssetDescription:      r.AssetDescription,
		CommencementDate:      commencement,
		EndDate:               end,
		LeasePayment:          r.LeasePayment,
		PaymentFrequency:      frequency,
		DiscountRate:          r.DiscountRate,
		InitialROUAsset:       r.InitialROUAsset,
		InitialLeaseLiability: r.InitialLeaseLiability,
		Currency:              r.Currency,
		ERPAssetID:            r.ERPAssetID,
		Status:                domain.LeaseStatus(r.Status),
	}, nil
}

// PeriodRequest names the period of a period-end run or a period posting.
type PeriodRequest struct {
	PeriodDate string `json:"period_date" validate:"required,datetime=2006-01-02"`
}

// Date returns the parsed period date.
func (r *PeriodRequest) Date() (time.Time, error) {
	return ParseDate(r.PeriodDate)
}

// PostBatchRequest lists the calculations to post in one ERP batch.
type PostBatchRequest struct {
	CalculationIDs []string `json:"calculation_ids" validate:"required,min=1,dive,required"`
}
