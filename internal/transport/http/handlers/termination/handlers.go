package terminationhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/settings"
	"perfhub/internal/domain/termination"
	"perfhub/internal/transport/http/api"
	"perfhub/internal/transport/http/middleware"
)

type Handler struct {
	Service  *termination.Service
	Settings *settings.Store
}

func NewHandler(service *termination.Service, settingsStore *settings.Store) *Handler {
	return &Handler{Service: service, Settings: settingsStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleHR, auth.RoleManager)).Post("/terminations/evaluate", h.handleEvaluate)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/terminations", h.handleListRecords)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var req termination.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_error", "failed to load settings", requestID)
		return
	}

	result, err := h.Service.EvaluateTerminations(r.Context(), principal, req, cfg, requestID)
	if err != nil {
		var policyErr *termination.PolicyError
		if errors.As(err, &policyErr) {
			status := http.StatusConflict
			if policyErr.Forbidden() {
				status = http.StatusForbidden
			}
			api.FailWithDetails(w, status, policyErr.Code, policyErr.Message, policyErr.Details, requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "sweep_failed", "termination sweep failed", requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	records, err := h.Service.ListRecords(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "termination_list_failed", "failed to list termination records", requestID)
		return
	}
	api.Success(w, records, requestID)
}
