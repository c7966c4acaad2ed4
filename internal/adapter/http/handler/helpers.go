package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/adapter/http/middleware"
	"github.com/iho/leaseledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLeaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCalculationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidLease):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingTenant):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoValidCalculations):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidLeaseStatus):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLeaseExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCalculationExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAlreadyPosted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPostingInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIntegration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeRequest decodes the JSON body into req and runs its validation tags.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

// tenantID returns the tenant resolved by the tenant middleware.
func tenantID(r *http.Request) string {
	return middleware.TenantFromContext(r.Context())
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
