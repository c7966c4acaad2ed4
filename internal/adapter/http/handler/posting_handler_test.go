package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/usecase"
)

type postingServiceStub struct {
	postBatchFn  func(ctx context.Context, tenantID string, ids []string) (*usecase.PostingResult, error)
	postPeriodFn func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error)
}

func (s *postingServiceStub) PostBatch(ctx context.Context, tenantID string, ids []string) (*usecase.PostingResult, error) {
	return s.postBatchFn(ctx, tenantID, ids)
}

func (s *postingServiceStub) PostPeriod(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error) {
	return s.postPeriodFn(ctx, tenantID, periodDate)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPostingHandler_PostBatch_Success(t *testing.T) {
	h := NewPostingHandler(&postingServiceStub{
		postBatchFn: func(ctx context.Context, tenantID string, ids []string) (*usecase.PostingResult, error) {
			if tenantID != "tenant-a" || len(ids) != 2 {
				t.Fatalf("unexpected call %s %v", tenantID, ids)
			}
			return &usecase.PostingResult{
				Success:        true,
				Message:        "Successfully posted 2 calculations to ERP",
				BatchID:        "B-1",
				CalculationIDs: ids,
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.PostBatch(rec, newTenantRequest(http.MethodPost, "/erp/post-batch", []byte(`{"calculation_ids":["c1","c2"]}`), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PostingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Posted != 2 || resp.BatchID != "B-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPostingHandler_PostBatch_GatewayFailureKeepsMessage(t *testing.T) {
	h := NewPostingHandler(&postingServiceStub{
		postBatchFn: func(ctx context.Context, tenantID string, ids []string) (*usecase.PostingResult, error) {
			return &usecase.PostingResult{Message: "Invalid account"},
				fmt.Errorf("%w: Invalid account", domain.ErrIntegration)
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.PostBatch(rec, newTenantRequest(http.MethodPost, "/erp/post-batch", []byte(`{"calculation_ids":["c1"]}`), nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp dto.PostingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Message != "Invalid account" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPostingHandler_PostBatch_RejectsEmptyList(t *testing.T) {
	h := NewPostingHandler(&postingServiceStub{
		postBatchFn: func(ctx context.Context, tenantID string, ids []string) (*usecase.PostingResult, error) {
			t.Fatalf("use case should not be called")
			return nil, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.PostBatch(rec, newTenantRequest(http.MethodPost, "/erp/post-batch", []byte(`{"calculation_ids":[]}`), nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostingHandler_PostPeriod_ParsesDate(t *testing.T) {
	var got time.Time
	h := NewPostingHandler(&postingServiceStub{
		postPeriodFn: func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error) {
			got = periodDate
			return &usecase.PostingResult{Success: true, Message: "No unposted calculations found for period 2024-01-31"}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.PostPeriod(rec, newTenantRequest(http.MethodPost, "/erp/post-period", []byte(`{"period_date":"2024-01-31"}`), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !got.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period date %v", got)
	}
}

func TestPostingHandler_PostPeriod_LockHeld(t *testing.T) {
	h := NewPostingHandler(&postingServiceStub{
		postPeriodFn: func(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error) {
			return nil, domain.ErrPostingInProgress
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.PostPeriod(rec, newTenantRequest(http.MethodPost, "/erp/post-period", []byte(`{"period_date":"2024-01-31"}`), nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPostingHandler_Health(t *testing.T) {
	healthy := NewPostingHandler(nil, pingerFunc(func(ctx context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	healthy.Health(rec, newTenantRequest(http.MethodGet, "/erp/health", nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	down := NewPostingHandler(nil, pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }))
	rec = httptest.NewRecorder()
	down.Health(rec, newTenantRequest(http.MethodGet, "/erp/health", nil, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
