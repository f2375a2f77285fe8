package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoice-tracker/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler wires the ApplicationService to the HTTP surface.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// Document texts can be large; everything else stays small.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(4 << 20)) // 4 MB
		r.Post("/api/documents", h.ingestDocument)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(64 << 10)) // 64 KB

		r.Get("/api/invoices", h.listInvoices)
		r.Get("/api/invoices/{number}", h.getInvoice)

		r.Get("/api/expected-invoices", h.listExpectedInvoices)
		r.Post("/api/expected-invoices/{id}/acknowledge", h.acknowledgeExpected)
		r.Post("/api/forecasts/refresh", h.refreshForecasts)

		r.Post("/api/assistant", h.askAssistant)
	})

	h.router = r
	return r
}

// health reports service liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// decodeJSON decodes the request body into v, writing an appropriate error
// response on failure. Returns HTTP 413 when the body exceeds the middleware
// size limit; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
