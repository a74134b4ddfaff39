package http

import (
	"context"
	"net/http"

	"barangay-asset-backend/internal/domain"
)

func (h *Handler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	h.itemDecision(w, r, h.requestSvc.ApproveItem)
}

func (h *Handler) DenyItem(w http.ResponseWriter, r *http.Request) {
	h.itemDecision(w, r, h.requestSvc.DenyItem)
}

func (h *Handler) itemDecision(w http.ResponseWriter, r *http.Request, decide func(context.Context, int32) (*domain.AssetRequestItem, error)) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	item, err := decide(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*item, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) CancelItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	claims := claimsFrom(r.Context())
	if err := h.requestSvc.CancelItem(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) SubmitReturnProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req returnProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	claims := claimsFrom(r.Context())
	proof, err := h.requestSvc.SubmitReturnProof(r.Context(), claims.UserID, id, req.Note, req.PhotoURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proof)
}

func (h *Handler) ApproveReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	item, err := h.requestSvc.ApproveReturn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*item, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) RejectReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req rejectReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if err := h.requestSvc.RejectReturn(r.Context(), id, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) RateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	claims := claimsFrom(r.Context())
	item, err := h.requestSvc.Rate(r.Context(), claims.UserID, id, req.Stars)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*item, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) SetReturnDate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req setReturnDateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	item, err := h.requestSvc.SetReturnDate(r.Context(), id, req.ReturnDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*item, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) SetTracking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req setTrackingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	item, err := h.requestSvc.SetTrackingNumber(r.Context(), id, req.TrackingNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(*item, h.nowFunc(), h.dueSoonHorizon))
}
