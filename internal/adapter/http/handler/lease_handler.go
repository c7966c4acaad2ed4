package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/usecase"
)

// LeaseService defines the behavior needed by LeaseHandler.
type LeaseService interface {
	CreateLease(ctx context.Context, input usecase.CreateLeaseInput) (*domain.Lease, error)
	GetLease(ctx context.Context, tenantID, id string) (*domain.Lease, error)
	ListLeases(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Lease, error)
	ActivateLease(ctx context.Context, tenantID, id string) (*domain.Lease, error)
	TerminateLease(ctx context.Context, tenantID, id string) (*domain.Lease, error)
	GetSchedule(ctx context.Context, tenantID, id string) (*usecase.LeaseSchedule, error)
	ListCalculations(ctx context.Context, tenantID, leaseID string) ([]*domain.LeaseCalculation, error)
}

// LeaseHandler handles lease-related HTTP requests.
type LeaseHandler struct {
	leaseUC LeaseService
}

// NewLeaseHandler creates a new LeaseHandler.
func NewLeaseHandler(leaseUC LeaseService) *LeaseHandler {
	return &LeaseHandler{leaseUC: leaseUC}
}

// Create registers a new lease.
func (h *LeaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLeaseRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(tenantID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lease", err.Error())
		return
	}

	lease, err := h.leaseUC.CreateLease(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create lease", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LeaseFromDomain(lease))
}

// Get retrieves a lease by ID.
func (h *LeaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	lease, err := h.leaseUC.GetLease(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get lease", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaseFromDomain(lease))
}

// List lists the tenant's leases.
func (h *LeaseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	leases, err := h.leaseUC.ListLeases(r.Context(), tenantID(r), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list leases", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLeasesResponse{
		Leases: dto.LeasesFromDomain(leases),
		Total:  int64(len(leases)),
	})
}

// Activate moves a draft lease to active.
func (h *LeaseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	lease, err := h.leaseUC.ActivateLease(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to activate lease", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaseFromDomain(lease))
}

// Terminate moves an active lease to terminated.
func (h *LeaseHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	lease, err := h.leaseUC.TerminateLease(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to terminate lease", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaseFromDomain(lease))
}

// Schedule returns the full projected schedule of a lease.
func (h *LeaseHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	sched, err := h.leaseUC.GetSchedule(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromUseCase(sched))
}

// Calculations lists the stored period calculations of a lease.
func (h *LeaseHandler) Calculations(w http.ResponseWriter, r *http.Request) {
	calcs, err := h.leaseUC.ListCalculations(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list calculations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CalculationsFromDomain(calcs))
}
