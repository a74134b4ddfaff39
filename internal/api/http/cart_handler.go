package http

import (
	"net/http"

	"barangay-asset-backend/internal/domain"
)

func (h *Handler) AddCartLine(w http.ResponseWriter, r *http.Request) {
	var req addCartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	line := domain.CartLine{
		AssetID:     req.AssetID,
		Quantity:    req.Quantity,
		RequestDate: req.RequestDate,
		UntilDate:   req.UntilDate,
	}
	if err := h.cartStore.AddLine(r.Context(), claims.UserID, line); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.cartStore.Lines(claims.UserID))
}

func (h *Handler) ListCartLines(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	lines := h.cartStore.Lines(claims.UserID)
	if lines == nil {
		lines = []domain.CartLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	var req removeCartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	key := domain.CartKey{AssetID: req.AssetID, RequestDate: req.RequestDate}
	if err := h.cartStore.RemoveLine(claims.UserID, key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartStore.Lines(claims.UserID))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	req, err := h.cartStore.Checkout(r.Context(), claims.UserID, h.requestSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRequestView(req, h.nowFunc(), h.dueSoonHorizon))
}
