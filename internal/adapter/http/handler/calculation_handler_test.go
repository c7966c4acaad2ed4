package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
	"github.com/iho/leaseledger/internal/usecase"
)

type periodEndStub func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error)

func (f periodEndStub) RunPeriodEnd(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error) {
	return f(ctx, tenantID, periodDate)
}

type previewStub func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.CalculationPreview, error)

func (f previewStub) Preview(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.CalculationPreview, error) {
	return f(ctx, tenantID, periodDate)
}

func TestCalculationHandler_RunPeriodEnd_PartialFailureIs200(t *testing.T) {
	h := NewCalculationHandler(periodEndStub(func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error) {
		return &usecase.PeriodEndResult{
			PeriodDate: periodDate,
			Total:      3,
			Succeeded:  2,
			Failures:   []usecase.LeaseFailure{{LeaseID: "l3", LeaseNumber: "L-003", Err: errors.New("insert failed")}},
		}, nil
	}), nil)

	rec := httptest.NewRecorder()
	h.RunPeriodEnd(rec, newTenantRequest(http.MethodPost, "/calculations/period-end", []byte(`{"period_date":"2024-01-31"}`), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PeriodEndResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Message != "Processed 2 out of 3 leases" || len(resp.Failures) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestCalculationHandler_RunPeriodEnd_RunInProgress(t *testing.T) {
	h := NewCalculationHandler(periodEndStub(func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error) {
		return nil, domain.ErrRunInProgress
	}), nil)

	rec := httptest.NewRecorder()
	h.RunPeriodEnd(rec, newTenantRequest(http.MethodPost, "/calculations/period-end", []byte(`{"period_date":"2024-01-31"}`), nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCalculationHandler_RunPeriodEnd_BadDate(t *testing.T) {
	h := NewCalculationHandler(periodEndStub(func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error) {
		t.Fatalf("use case should not be called")
		return nil, nil
	}), nil)

	rec := httptest.NewRecorder()
	h.RunPeriodEnd(rec, newTenantRequest(http.MethodPost, "/calculations/period-end", []byte(`{"period_date":"January"}`), nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCalculationHandler_Preview(t *testing.T) {
	period := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	h := NewCalculationHandler(nil, previewStub(func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.CalculationPreview, error) {
		if !periodDate.Equal(period) {
			t.Fatalf("unexpected period %v", periodDate)
		}
		return &usecase.CalculationPreview{
			TenantID:   tenantID,
			PeriodDate: periodDate,
			Items: []usecase.PreviewItem{{
				LeaseNumber: "L-001",
				Calculation: &domain.LeaseCalculation{ID: "c1", PeriodDate: periodDate},
			}},
			Summary: schedule.Summary{Calculations: 1, Unposted: 1, TotalInterestExpense: decimal.NewFromInt(95)},
			ProposedTransactions: []domain.ERPTransaction{
				{AccountCode: "6200", DebitAmount: decimal.NewFromInt(95), CreditAmount: decimal.Zero},
			},
		}, nil
	}))

	rec := httptest.NewRecorder()
	h.Preview(rec, newTenantRequest(http.MethodGet, "/calculations/preview?period_date=2024-01-31", nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || len(resp.ProposedTransactions) != 1 || resp.Summary.Unposted != 1 {
		t.Fatalf("unexpected preview %+v", resp)
	}
}

func TestCalculationHandler_Preview_MissingDate(t *testing.T) {
	h := NewCalculationHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.Preview(rec, newTenantRequest(http.MethodGet, "/calculations/preview", nil, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
