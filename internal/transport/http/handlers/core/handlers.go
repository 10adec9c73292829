package corehandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/core"
	"perfhub/internal/transport/http/api"
	"perfhub/internal/transport/http/middleware"
	"perfhub/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
}

func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/employees", h.handleListEmployees)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/employees", h.handleCreateEmployee)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/employees/{employeeID}", h.handleGetEmployee)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Get("/metrics", h.handleListMetrics)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR, auth.RoleManager)).Post("/metrics", h.handleCreateMetric)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/metrics/upload", h.handleUploadMetrics)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	v := shared.NewValidator()
	v.Enum("status", status, []string{core.EmployeeStatusActive, core.EmployeeStatusPip, core.EmployeeStatusTerminated}, "must be active, pip or terminated")
	if v.Reject(w, requestID) {
		return
	}

	employees, err := h.Service.ListEmployees(r.Context(), status, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	emp, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Email      string `json:"email"`
		RoleTitle  string `json:"roleTitle"`
		Department string `json:"department"`
		ManagerID  string `json:"managerId"`
		HiredAt    string `json:"hiredAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("email", payload.Email, "email is required")
	var hiredAt *time.Time
	if payload.HiredAt != "" {
		if parsed, ok := v.Date("hiredAt", payload.HiredAt); ok {
			hiredAt = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateEmployee(r.Context(), core.Employee{
		FirstName:  strings.TrimSpace(payload.FirstName),
		LastName:   strings.TrimSpace(payload.LastName),
		Email:      strings.ToLower(strings.TrimSpace(payload.Email)),
		RoleTitle:  strings.TrimSpace(payload.RoleTitle),
		Department: strings.TrimSpace(payload.Department),
		ManagerID:  strings.TrimSpace(payload.ManagerID),
		Status:     core.EmployeeStatusActive,
		HiredAt:    hiredAt,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId query parameter is required", requestID)
		return
	}

	metrics, err := h.Service.ListMetricsByEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "metric_list_failed", "failed to list metrics", requestID)
		return
	}
	api.Success(w, metrics, requestID)
}

func (h *Handler) handleCreateMetric(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		EmployeeID     string  `json:"employeeId"`
		Period         int     `json:"period"`
		Score          float64 `json:"score"`
		Utilization    float64 `json:"utilization"`
		TasksCompleted int     `json:"tasksCompleted"`
		Date           string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Range("score", payload.Score, 0, 100)
	v.Range("utilization", payload.Utilization, 0, 100)
	if payload.Period <= 0 {
		v.Add("period", "must be a positive ordinal")
	}
	if payload.TasksCompleted < 0 {
		v.Add("tasksCompleted", "must not be negative")
	}
	date := time.Now().UTC()
	if payload.Date != "" {
		parsed, ok := v.Date("date", payload.Date)
		if ok {
			date = parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateMetric(r.Context(), core.PerformanceMetric{
		EmployeeID:     payload.EmployeeID,
		Period:         payload.Period,
		Score:          payload.Score,
		Utilization:    payload.Utilization,
		TasksCompleted: payload.TasksCompleted,
		Date:           date,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "metric_create_failed", "failed to record metric", requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUploadMetrics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	file, _, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "multipart field 'file' is required", requestID)
		return
	}
	defer file.Close()

	rows, issues, err := core.ParseMetricsCSV(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_csv", err.Error(), requestID)
		return
	}

	result, err := h.Service.IngestRows(r.Context(), rows, issues)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ingest_failed", "failed to ingest metrics", requestID)
		return
	}
	api.Success(w, result, requestID)
}
