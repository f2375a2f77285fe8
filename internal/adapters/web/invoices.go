package web

import (
	"errors"
	"net/http"
	"strings"

	"invoice-tracker/internal/app"
	"invoice-tracker/internal/core"

	"github.com/go-chi/chi/v5"
)

// ingestDocument accepts one decoded document and returns the extraction
// result plus the stored invoice. Duplicate invoice numbers get HTTP 409.
func (h *Handler) ingestDocument(w http.ResponseWriter, r *http.Request) {
	var req app.IngestDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DocumentText) == "" {
		writeError(w, r, "document_text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.IngestDocument(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateInvoice) {
			writeError(w, r, err.Error(), "DUPLICATE_INVOICE", http.StatusConflict)
			return
		}
		writeError(w, r, err.Error(), "INGEST_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		writeError(w, r, err.Error(), "LIST_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	result, err := h.svc.GetInvoice(r.Context(), number)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// askAssistant forwards a ledger question to the AI agent.
func (h *Handler) askAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, r, "question is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AskAssistant(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, err.Error(), "ASSISTANT_FAILED", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
