package http

import (
	"context"
	"net/http"

	"barangay-asset-backend/internal/domain"
)

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	status := r.URL.Query().Get("status")
	page, pageSize := pagination(r)

	var (
		requests []domain.AssetRequest
		total    int32
		err      error
	)
	if r.URL.Query().Get("scope") == "all" {
		if !claims.IsStaff() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "staff role required"})
			return
		}
		requests, total, err = h.requestSvc.ListAllRequests(r.Context(), status, page, pageSize)
	} else {
		requests, total, err = h.requestSvc.ListRequests(r.Context(), claims.UserID, status, page, pageSize)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	now := h.nowFunc()
	views := make([]requestView, 0, len(requests))
	for i := range requests {
		views = append(views, newRequestView(&requests[i], now, h.dueSoonHorizon))
	}
	writeJSON(w, http.StatusOK, listResponse{Data: views, Total: total, Page: page})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	claims := claimsFrom(r.Context())
	req, err := h.requestSvc.GetRequest(r.Context(), claims.UserID, id, claims.IsStaff())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestView(req, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.requestDecision(w, r, h.requestSvc.ApproveRequest)
}

func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	h.requestDecision(w, r, h.requestSvc.DenyRequest)
}

func (h *Handler) requestDecision(w http.ResponseWriter, r *http.Request, decide func(context.Context, int32) (*domain.AssetRequest, error)) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	req, err := decide(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestView(req, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	claims := claimsFrom(r.Context())
	req, err := h.requestSvc.Pay(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRequestView(req, h.nowFunc(), h.dueSoonHorizon))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	claims := claimsFrom(r.Context())
	if err := h.requestSvc.Cancel(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
