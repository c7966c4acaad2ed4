package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/usecase"
)

// ReconciliationService checks stored calculation chains.
type ReconciliationService interface {
	ReconcileLease(ctx context.Context, tenantID, leaseID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context, tenantID string) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler handles reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// ReconcileLease checks one lease.
func (h *ReconciliationHandler) ReconcileLease(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationUC.ReconcileLease(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile lease", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Report checks every lease of the tenant.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context(), tenantID(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate reconciliation report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
