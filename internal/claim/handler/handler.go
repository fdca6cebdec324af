package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canopy/internal/claim"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/httputil"
	"canopy/pkg/requestcontext"
)

// Service defines the interface for claim operations.
type Service interface {
	Submit(ctx context.Context, submitter domain.Identity, draft claim.Draft) (domain.ClaimID, error)
	Verify(ctx context.Context, caller domain.Identity, id domain.ClaimID, score int) error
	Get(ctx context.Context, id domain.ClaimID) (claim.ImpactClaim, error)
	ListByProfile(ctx context.Context, profile domain.ProfileRef) ([]claim.ImpactClaim, error)
}

// Handler wires claim endpoints to the claim service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a claim handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts claim endpoints on the router. Reads are open; submission
// and verification require an authenticated caller.
func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/claims", h.HandleList)
	r.Get("/claims/{id}", h.HandleGet)
	r.With(auth).Post("/claims", h.HandleSubmit)
	r.With(auth).Post("/claims/{id}/verify", h.HandleVerify)
}

// HandleSubmit handles POST /claims requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	submitter := domain.Identity(requestcontext.Identity(ctx))
	if submitter == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	id, err := h.service.Submit(ctx, submitter, req.ToDraft())
	if err != nil {
		h.logger.WarnContext(ctx, "claim submission rejected",
			"request_id", requestID,
			"category", req.Category,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim submitted",
		"request_id", requestID,
		"claim_id", id,
		"category", req.Category,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, SubmitClaimResponse{ClaimID: id.String()})
}

// HandleGet handles GET /claims/{id} requests. Reads are open.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseClaimID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaim(c))
}

// HandleList handles GET /claims?profile= requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := domain.ParseProfileRef(r.URL.Query().Get("profile"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claims, err := h.service.ListByProfile(ctx, profile)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClaims(claims))
}

// HandleVerify handles POST /claims/{id}/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := domain.Identity(requestcontext.Identity(ctx))
	if caller == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	id, err := domain.ParseClaimID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Verify(ctx, caller, id, req.ConfidenceScore); err != nil {
		h.logger.WarnContext(ctx, "claim verification rejected",
			"request_id", requestID,
			"claim_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim verified",
		"request_id", requestID,
		"claim_id", id,
		"validator", caller,
		"score", req.ConfidenceScore,
	)
	w.WriteHeader(http.StatusNoContent)
}
