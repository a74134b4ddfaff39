package http

import (
	"net/http"

	"barangay-asset-backend/internal/domain"
)

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	assets, total, err := h.assetSvc.ListAssets(r.Context(), r.URL.Query().Get("category"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: assets, Total: total, Page: page})
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	asset, err := h.assetSvc.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	asset := &domain.Asset{
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
		Status:     domain.AssetStatus(req.Status),
	}
	if err := h.assetSvc.AddAsset(r.Context(), asset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	asset, err := h.assetSvc.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	asset.Name = req.Name
	asset.Category = req.Category
	asset.PriceCents = req.PriceCents
	asset.Stock = req.Stock
	if req.Status != "" {
		asset.Status = domain.AssetStatus(req.Status)
	}
	if err := h.assetSvc.UpdateAsset(r.Context(), asset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}
