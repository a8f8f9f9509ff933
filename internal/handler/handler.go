package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dealstack-api/internal/models"
	"dealstack-api/internal/service"
	"dealstack-api/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	maxBodySize int64
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 10 << 20, // 10MB default
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service) *Handler {
	return NewHandlerWithOptions(svc, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, opts NewHandlerOptions) *Handler {
	return &Handler{
		service:     svc,
		maxBodySize: opts.MaxBodySize,
	}
}

// Routes mounts every API route on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/offers", func(r chi.Router) {
		r.Post("/parse", h.ParseOffer)
		r.Post("/score", h.ScoreOffer)
	})

	r.Route("/domains/{domain}", func(r chi.Router) {
		r.Post("/confidence", h.Confidence)
		r.Post("/reports", h.SubmitReport)
		r.Get("/record", h.GetDomainRecord)
		r.Delete("/record", h.DeleteDomainRecord)
	})

	r.Post("/stack/calculate", h.CalculateStack)
	r.Post("/merchants/resolve", h.ResolveMerchant)
}

// ParseOffer handles POST /offers/parse
func (h *Handler) ParseOffer(w http.ResponseWriter, r *http.Request) {
	var req models.ParseOfferRequest
	if !h.decode(w, r, &req) {
		return
	}

	parsed, err := h.service.ParseOffer(validation.SanitizeString(req.Value))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, parsed)
}

// ScoreOffer handles POST /offers/score
func (h *Handler) ScoreOffer(w http.ResponseWriter, r *http.Request) {
	var req models.ParseOfferRequest
	if !h.decode(w, r, &req) {
		return
	}

	scored, err := h.service.ScoreOffer(validation.SanitizeString(req.Value))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, scored)
}

// Confidence handles POST /domains/{domain}/confidence
func (h *Handler) Confidence(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	var req models.ConfidenceRequest
	if !h.decode(w, r, &req) {
		return
	}

	conf, err := h.service.Confidence(r.Context(), domain, req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, conf)
}

// SubmitReport handles POST /domains/{domain}/reports
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	var req models.SubmitReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.service.SubmitReport(r.Context(), domain, req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, record)
}

// GetDomainRecord handles GET /domains/{domain}/record
func (h *Handler) GetDomainRecord(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	record, err := h.service.GetDomainRecord(r.Context(), domain)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if record == nil {
		h.respondError(w, http.StatusNotFound, "no reports for this domain")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// DeleteDomainRecord handles DELETE /domains/{domain}/record
func (h *Handler) DeleteDomainRecord(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	if err := h.service.DeleteDomainRecord(r.Context(), domain); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CalculateStack handles POST /stack/calculate
func (h *Handler) CalculateStack(w http.ResponseWriter, r *http.Request) {
	var req models.StackComponents
	if !h.decode(w, r, &req) {
		return
	}

	calc, err := h.service.CalculateStack(r.Context(), req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, calc)
}

// ResolveMerchant handles POST /merchants/resolve
func (h *Handler) ResolveMerchant(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveMerchantRequest
	if !h.decode(w, r, &req) {
		return
	}
	if validation.SanitizeString(req.Name) == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.ResolveMerchant(req.Name, req.Candidates))
}

// decode reads a size-limited JSON body into dest, writing the error
// response itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return false
	}
	return true
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
