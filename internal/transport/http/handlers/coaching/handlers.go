package coachinghandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/coaching"
	"perfhub/internal/domain/pip"
	"perfhub/internal/domain/settings"
	"perfhub/internal/transport/http/api"
	"perfhub/internal/transport/http/middleware"
)

type Handler struct {
	Service  *coaching.Service
	Settings *settings.Store
}

func NewHandler(service *coaching.Service, settingsStore *settings.Store) *Handler {
	return &Handler{Service: service, Settings: settingsStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Post("/coaching/generate", h.handleGenerate)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/coaching", h.handleList)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	var req coaching.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_error", "failed to load settings", requestID)
		return
	}

	session, err := h.Service.Generate(r.Context(), req, cfg, principal.ID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, coaching.ErrEmployeeRequired), errors.Is(err, coaching.ErrScoreOutOfRange):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
		case errors.Is(err, coaching.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		case errors.Is(err, coaching.ErrEmployeeTerminated):
			api.Fail(w, http.StatusConflict, "employee_terminated", "coaching cannot be generated for a terminated employee", requestID)
		case errors.Is(err, pip.ErrPlanNotFound):
			api.Fail(w, http.StatusNotFound, "pip_not_found", "plan not found", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "coaching_failed", "failed to generate coaching session", requestID)
		}
		return
	}
	api.Created(w, session, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId query parameter is required", requestID)
		return
	}

	sessions, err := h.Service.List(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "coaching_list_failed", "failed to list coaching sessions", requestID)
		return
	}
	api.Success(w, sessions, requestID)
}
