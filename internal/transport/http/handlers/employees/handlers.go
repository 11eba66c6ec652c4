package employeehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peopleops/internal/domain/access"
	"peopleops/internal/domain/audit"
	"peopleops/internal/domain/employee"
	"peopleops/internal/domain/identity"
	"peopleops/internal/transport/http/api"
	"peopleops/internal/transport/http/middleware"
	"peopleops/internal/transport/http/shared"
)

type Handler struct {
	Employees  *employee.Service
	Identities *identity.Service
	Audit      *audit.Service
}

func NewHandler(employees *employee.Service, identities *identity.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Employees: employees, Identities: identities, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(identity.PermEmployeesRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermEmployeesRead)).Get("/team", h.handleTeam)
		r.With(middleware.RequirePermission(identity.PermEmployeesWrite)).Post("/", h.handleCreate)
		r.Route("/{profileID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Get("/history", h.handleHistory)
			r.Post("/status", h.handleSetStatus)
			r.Post("/terminate", h.handleTerminate)
			r.With(middleware.RequirePermission(identity.PermEmployeesWrite)).Delete("/", h.handleDelete)
		})
	})
}

// resource builds the access snapshot for a profile. The subject's manager is
// read fresh from the principal record so stale session data cannot widen a
// manager's reach.
func (h *Handler) resource(r *http.Request, p employee.Profile) *access.Resource {
	res := &access.Resource{Type: "employee", SubjectID: p.PrincipalID}
	if subject, err := h.Identities.FindByID(r.Context(), p.PrincipalID); err == nil {
		res.SubjectManagerID = subject.ManagerID
	}
	return res
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), actorID, action, "employee", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employee.ErrNotFound), errors.Is(err, identity.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee profile not found", reqID)
	case errors.Is(err, employee.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, employee.ErrDuplicateProfile):
		api.Fail(w, http.StatusConflict, "profile_exists", err.Error(), reqID)
	case errors.Is(err, employee.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := employee.ListFilter{
		Status:     r.URL.Query().Get("status"),
		Department: r.URL.Query().Get("department"),
	}
	switch user.Role {
	case identity.RoleAdmin, identity.RoleHR:
		filter.ManagerID = r.URL.Query().Get("managerId")
	case identity.RoleManager:
		filter.ManagerID = user.ID
	default:
		profiles := make([]employee.Profile, 0, 1)
		if p, err := h.Employees.GetByPrincipal(r.Context(), user.ID); err == nil {
			profiles = append(profiles, p)
		}
		api.SuccessList(w, profiles, len(profiles), nil, middleware.GetRequestID(r.Context()))
		return
	}

	profiles, total, err := h.Employees.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, profiles, len(profiles), &api.Pagination{Limit: page.Limit, Offset: page.Offset, Total: total}, middleware.GetRequestID(r.Context()))
}

// handleTeam lists the caller's direct reports from the live principal
// records, the same reporting line the access engine scopes by.
func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	reports, err := h.Identities.FindReports(r.Context(), user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, reports, len(reports), nil, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload employee.Profile
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Employees.Create(r.Context(), payload)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.record(r, user.ID, "employee.create", id, nil, payload)
	created, err := h.Employees.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profileID := chi.URLParam(r, "profileID")

	p, err := h.Employees.Get(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionEmployeeView, h.resource(r, p)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	// Salary is visible to the subject and elevated roles only.
	if user.Role == identity.RoleManager && p.PrincipalID != user.ID {
		p.Salary = nil
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profileID := chi.URLParam(r, "profileID")

	existing, err := h.Employees.Get(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionEmployeeUpdate, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload employee.Profile
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	// Self-service updates may not touch compensation or reporting line.
	if user.Role != identity.RoleHR && user.Role != identity.RoleAdmin {
		payload.Salary = existing.Salary
		payload.ManagerID = existing.ManagerID
		payload.Department = existing.Department
		payload.JobTitle = existing.JobTitle
		payload.IsProbation = existing.IsProbation
		payload.HireDate = existing.HireDate
	}

	if err := h.Employees.UpdateMetadata(r.Context(), profileID, payload); err != nil {
		fail(w, r, err)
		return
	}

	h.record(r, user.ID, "employee.update", profileID, existing, payload)
	updated, err := h.Employees.Get(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profileID := chi.URLParam(r, "profileID")

	p, err := h.Employees.Get(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionEmployeeView, h.resource(r, p)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	history, err := h.Employees.History(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, history, len(history), nil, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profileID := chi.URLParam(r, "profileID")

	existing, err := h.Employees.Get(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionEmployeeSetStatus, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Employees.SetStatus(r.Context(), user.ID, profileID, payload.Status, payload.Reason)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.record(r, user.ID, "employee.status_change", profileID,
		map[string]string{"status": existing.Status},
		map[string]string{"status": updated.Status, "reason": payload.Reason})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type terminateRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profileID := chi.URLParam(r, "profileID")

	existing, err := h.Employees.Get(r.Context(), profileID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionEmployeeTerminate, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload terminateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Employees.Terminate(r.Context(), user.ID, profileID, payload.Reason)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.record(r, user.ID, "employee.terminate", profileID,
		map[string]string{"status": existing.Status},
		map[string]string{"status": updated.Status, "reason": payload.Reason})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	profileID := chi.URLParam(r, "profileID")

	if _, err := h.Employees.Get(r.Context(), profileID); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.Employees.Delete(r.Context(), profileID); err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "employee.delete", profileID, nil, nil)
	api.Success(w, map[string]string{"id": profileID}, middleware.GetRequestID(r.Context()))
}
