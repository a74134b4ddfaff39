package http

import (
	"net/http"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	page, pageSize := pagination(r)
	notes, total, err := h.noteSvc.GetNotifications(r.Context(), claims.UserID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: notes, Total: total, Page: page})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	claims := claimsFrom(r.Context())
	if err := h.noteSvc.MarkAsRead(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
