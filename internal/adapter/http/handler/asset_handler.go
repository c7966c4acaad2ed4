package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/leaseledger/internal/domain"
)

// AssetCatalog reads fixed assets from the ERP.
type AssetCatalog interface {
	GetAssets(ctx context.Context) ([]domain.ERPAsset, error)
	GetAsset(ctx context.Context, assetID string) (*domain.ERPAsset, error)
}

// AssetHandler exposes the ERP's asset register so leases can be linked to it.
type AssetHandler struct {
	catalog AssetCatalog
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(catalog AssetCatalog) *AssetHandler {
	return &AssetHandler{catalog: catalog}
}

// List returns every ERP asset.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.catalog.GetAssets(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch assets from ERP", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, assets)
}

// Get returns one ERP asset.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.catalog.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "asset not found", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch asset from ERP", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, asset)
}
