package adminhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"perfhub/internal/domain/audit"
	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/settings"
	"perfhub/internal/platform/metrics"
	"perfhub/internal/transport/http/api"
	"perfhub/internal/transport/http/middleware"
	"perfhub/internal/transport/http/shared"
)

type Handler struct {
	Settings  *settings.Store
	Audit     *audit.Service
	Collector *metrics.Collector
}

func NewHandler(settingsStore *settings.Store, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Settings: settingsStore, Audit: auditSvc, Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/admin/settings", h.handleGetSettings)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/admin/settings", h.handleUpdateSettings)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/admin/audit", h.handleListAudit)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/admin/metrics", h.handleMetrics)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	cfg, err := h.Settings.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_error", "failed to load settings", requestID)
		return
	}
	api.Success(w, cfg, requestID)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	var payload settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if err := payload.Validate(); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_settings", err.Error(), requestID)
		return
	}

	if err := h.Settings.Update(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_update_failed", "failed to update settings", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), principal.ID, "settings.updated", "settings", "1", requestID, payload); err != nil {
		slog.Warn("settings audit failed", "err", err)
	}

	updated, err := h.Settings.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_error", "failed to reload settings", requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 500)

	filter := audit.Filter{
		Action:     strings.TrimSpace(r.URL.Query().Get("action")),
		EntityType: strings.TrimSpace(r.URL.Query().Get("entityType")),
		ActorID:    strings.TrimSpace(r.URL.Query().Get("actorId")),
	}

	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to count audit events", requestID)
		return
	}
	events, err := h.Audit.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}
	api.Success(w, map[string]any{
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
		"events": events,
	}, requestID)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.Collector == nil {
		api.Fail(w, http.StatusNotFound, "metrics_disabled", "metrics collection is disabled", requestID)
		return
	}
	api.Success(w, h.Collector.Snapshot(), requestID)
}
