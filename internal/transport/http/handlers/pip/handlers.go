package piphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/pip"
	"perfhub/internal/domain/settings"
	"perfhub/internal/transport/http/api"
	"perfhub/internal/transport/http/middleware"
)

type Handler struct {
	Service  *pip.Service
	Settings *settings.Store
}

func NewHandler(service *pip.Service, settingsStore *settings.Store) *Handler {
	return &Handler{Service: service, Settings: settingsStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleHR, auth.RoleManager)).Post("/pips/evaluate", h.handleEvaluate)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/pips", h.handleList)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/pips/{pipID}", h.handleGet)
	r.With(middleware.RequireRole(auth.RoleHR)).Post("/pips/{pipID}/transition", h.handleTransition)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/pips/preview/{employeeID}", h.handlePreview)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_error", "failed to load settings", requestID)
		return
	}

	result, err := h.Service.EvaluateCandidates(r.Context(), cfg, principal.ID, requestID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "sweep_failed", "evaluation sweep failed", requestID)
		return
	}
	api.Success(w, result, requestID)
}

// handlePreview runs the evaluator for one employee without creating a plan.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_error", "failed to load settings", requestID)
		return
	}

	eval, err := h.Service.EvaluateEmployee(r.Context(), employeeID, cfg)
	if err != nil {
		if errors.Is(err, pip.ErrEmployeeRequired) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee id is required", requestID)
			return
		}
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	api.Success(w, eval, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))

	plans, err := h.Service.ListPlans(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pip_list_failed", "failed to list plans", requestID)
		return
	}
	api.Success(w, plans, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	planID := chi.URLParam(r, "pipID")

	plan, err := h.Service.GetPlan(r.Context(), planID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "pip_not_found", "plan not found", requestID)
		return
	}
	api.Success(w, plan, requestID)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	planID := chi.URLParam(r, "pipID")

	var payload struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.To = strings.ToLower(strings.TrimSpace(payload.To))
	if payload.To == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "target state is required", requestID)
		return
	}

	plan, err := h.Service.TransitionPlan(r.Context(), planID, payload.To, principal.ID, requestID)
	if err != nil {
		var transitionErr *pip.TransitionError
		switch {
		case errors.Is(err, pip.ErrPlanNotFound):
			api.Fail(w, http.StatusNotFound, "pip_not_found", "plan not found", requestID)
		case errors.As(err, &transitionErr):
			api.FailWithDetails(w, http.StatusConflict, "illegal_transition", transitionErr.Error(),
				map[string]string{"from": transitionErr.From, "to": transitionErr.To}, requestID)
		case errors.Is(err, pip.ErrUnknownState):
			api.Fail(w, http.StatusBadRequest, "unknown_state", "unknown lifecycle state", requestID)
		default:
			api.Fail(w, http.StatusConflict, "transition_rejected", err.Error(), requestID)
		}
		return
	}
	api.Success(w, plan, requestID)
}
