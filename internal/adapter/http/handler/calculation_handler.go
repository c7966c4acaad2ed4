package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/usecase"
)

// PeriodEndService runs month-end calculations.
type PeriodEndService interface {
	RunPeriodEnd(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PeriodEndResult, error)
}

// PreviewService renders a period before it is posted.
type PreviewService interface {
	Preview(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.CalculationPreview, error)
}

// CalculationHandler handles period-end HTTP requests.
type CalculationHandler struct {
	periodEndUC PeriodEndService
	previewUC   PreviewService
}

// NewCalculationHandler creates a new CalculationHandler.
func NewCalculationHandler(periodEndUC PeriodEndService, previewUC PreviewService) *CalculationHandler {
	return &CalculationHandler{
		periodEndUC: periodEndUC,
		previewUC:   previewUC,
	}
}

// RunPeriodEnd calculates the period for every active lease. A run where some
// leases failed is still answered with 200 and success=false.
func (h *CalculationHandler) RunPeriodEnd(w http.ResponseWriter, r *http.Request) {
	var req dto.PeriodRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	periodDate, err := req.Date()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period date", err.Error())
		return
	}

	result, err := h.periodEndUC.RunPeriodEnd(r.Context(), tenantID(r), periodDate)
	if err != nil {
		writeError(w, mapDomainError(err), "period-end run failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodEndFromUseCase(result))
}

// Preview shows a period's calculations and proposed journal entries.
func (h *CalculationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("period_date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing period_date", "")
		return
	}

	periodDate, err := dto.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period date", err.Error())
		return
	}

	preview, err := h.previewUC.Preview(r.Context(), tenantID(r), periodDate)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to preview period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PreviewFromUseCase(preview))
}
