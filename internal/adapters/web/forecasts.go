package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listExpectedInvoices(w http.ResponseWriter, r *http.Request) {
	includeAcked := r.URL.Query().Get("include_acknowledged") == "true"
	result, err := h.svc.ListExpectedInvoices(r.Context(), includeAcked)
	if err != nil {
		writeError(w, r, err.Error(), "LIST_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) acknowledgeExpected(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid expected invoice id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.AcknowledgeExpectedInvoice(r.Context(), id); err != nil {
		writeError(w, r, err.Error(), "ACK_FAILED", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (h *Handler) refreshForecasts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RefreshForecasts(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "REFRESH_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
