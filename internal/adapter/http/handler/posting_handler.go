package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/usecase"
)

// PostingService submits calculations to the ERP.
type PostingService interface {
	PostBatch(ctx context.Context, tenantID string, calculationIDs []string) (*usecase.PostingResult, error)
	PostPeriod(ctx context.Context, tenantID string, periodDate time.Time) (*usecase.PostingResult, error)
}

// ERPPinger reports ERP reachability.
type ERPPinger interface {
	Ping(ctx context.Context) error
}

// PostingHandler handles ERP posting HTTP requests.
type PostingHandler struct {
	postingUC PostingService
	erp       ERPPinger
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingUC PostingService, erp ERPPinger) *PostingHandler {
	return &PostingHandler{
		postingUC: postingUC,
		erp:       erp,
	}
}

// PostBatch posts the listed calculations in one batch.
func (h *PostingHandler) PostBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.PostBatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.postingUC.PostBatch(r.Context(), tenantID(r), req.CalculationIDs)
	h.writeResult(w, result, err)
}

// PostPeriod posts every unposted calculation of a period.
func (h *PostingHandler) PostPeriod(w http.ResponseWriter, r *http.Request) {
	var req dto.PeriodRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	periodDate, err := req.Date()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period date", err.Error())
		return
	}

	result, err := h.postingUC.PostPeriod(r.Context(), tenantID(r), periodDate)
	h.writeResult(w, result, err)
}

// Health reports whether the ERP answers.
func (h *PostingHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.erp.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "erp unhealthy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "erp": "ok"})
}

// writeResult answers with the posting result, keeping its message on failure.
func (h *PostingHandler) writeResult(w http.ResponseWriter, result *usecase.PostingResult, err error) {
	if err != nil {
		if result == nil {
			writeError(w, mapDomainError(err), "posting failed", err.Error())
			return
		}
		writeJSON(w, mapDomainError(err), dto.PostingFromUseCase(result))
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingFromUseCase(result))
}
