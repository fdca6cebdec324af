package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"canopy/internal/access"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/httputil"
	"canopy/pkg/requestcontext"
)

// Service defines the interface for role management.
type Service interface {
	Grant(ctx context.Context, actor domain.Identity, role access.Role, identity domain.Identity) error
}

// Handler wires role endpoints to the access service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts role endpoints on the router.
func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.With(auth).Post("/roles/grant", h.HandleGrant)
}

// GrantRoleRequest is the HTTP request body for POST /roles/grant.
type GrantRoleRequest struct {
	Role     string `json:"role"`
	Identity string `json:"identity"`

	parsedRole access.Role
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *GrantRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	role, err := access.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return err
	}
	r.parsedRole = role

	r.Identity = strings.TrimSpace(r.Identity)
	if r.Identity == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	return nil
}

// HandleGrant handles POST /roles/grant requests. Membership is additive
// only; there is no revoke endpoint.
func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := domain.Identity(requestcontext.Identity(ctx))
	if actor == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[GrantRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Grant(ctx, actor, req.parsedRole, domain.Identity(req.Identity)); err != nil {
		h.logger.WarnContext(ctx, "role grant rejected",
			"request_id", requestID,
			"role", req.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "role granted",
		"request_id", requestID,
		"role", req.Role,
		"identity", req.Identity,
		"actor", actor,
	)
	w.WriteHeader(http.StatusNoContent)
}
