package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/internal/policy"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/httputil"
	"canopy/pkg/requestcontext"
)

// Service defines the interface for policy operations.
type Service interface {
	Get(ctx context.Context, category domain.Category) (policy.ValidationPolicy, error)
	Set(ctx context.Context, actor domain.Identity, p policy.ValidationPolicy) error
	AddUnit(ctx context.Context, actor domain.Identity, category domain.Category, unit domain.Unit) error
	AddMethodology(ctx context.Context, actor domain.Identity, category domain.Category, methodology domain.Methodology) error
}

// Handler wires policy endpoints to the policy service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a policy handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts policy endpoints on the router. Reads are open; mutations
// require an authenticated caller (the admin check runs in the service).
func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/policies/{category}", h.HandleGet)
	r.With(auth).Put("/policies/{category}", h.HandleSet)
	r.With(auth).Post("/policies/{category}/units", h.HandleAddUnit)
	r.With(auth).Post("/policies/{category}/methodologies", h.HandleAddMethodology)
}

// HandleGet handles GET /policies/{category} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Get(ctx, category)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPolicy(p))
}

// HandleSet handles PUT /policies/{category} requests.
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, category, ok := h.prepare(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetPolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Set(ctx, actor, req.ToPolicy(category)); err != nil {
		h.logger.ErrorContext(ctx, "policy update failed",
			"request_id", requestID,
			"category", category,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy updated",
		"request_id", requestID,
		"category", category,
		"actor", actor,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddUnit handles POST /policies/{category}/units requests.
func (h *Handler) HandleAddUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, category, ok := h.prepare(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddUnitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddUnit(ctx, actor, category, domain.Unit(req.Unit)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "unit added",
		"request_id", requestID,
		"category", category,
		"unit", req.Unit,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddMethodology handles POST /policies/{category}/methodologies
// requests.
func (h *Handler) HandleAddMethodology(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, category, ok := h.prepare(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddMethodologyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddMethodology(ctx, actor, category, domain.Methodology(req.Methodology)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "methodology added",
		"request_id", requestID,
		"category", category,
		"methodology", req.Methodology,
	)
	w.WriteHeader(http.StatusNoContent)
}

// prepare extracts the authenticated actor and the category URL parameter,
// writing the error response itself on failure.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (domain.Identity, domain.Category, bool) {
	actor := domain.Identity(requestcontext.Identity(r.Context()))
	if actor == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", "", false
	}

	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", "", false
	}
	return actor, category, true
}
