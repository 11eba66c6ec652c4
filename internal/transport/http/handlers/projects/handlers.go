package projecthandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peopleops/internal/domain/access"
	"peopleops/internal/domain/audit"
	"peopleops/internal/domain/identity"
	"peopleops/internal/domain/project"
	"peopleops/internal/transport/http/api"
	"peopleops/internal/transport/http/middleware"
	"peopleops/internal/transport/http/shared"
)

type Handler struct {
	Projects   *project.Service
	Identities *identity.Service
	Audit      *audit.Service
}

func NewHandler(projects *project.Service, identities *identity.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Projects: projects, Identities: identities, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(identity.PermProjectsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermProjectsWrite)).Post("/", h.handleCreate)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Post("/members", h.handleAddMember)
			r.Delete("/members/{principalID}", h.handleRemoveMember)
			r.Post("/manager", h.handleReassignManager)
			r.Post("/tasks", h.handleAddTask)
			r.Put("/tasks/{taskID}/status", h.handleUpdateTaskStatus)
		})
	})
}

func (h *Handler) resource(r *http.Request, p project.Project) *access.Resource {
	res := &access.Resource{Type: "project", SubjectID: p.ManagerID}
	if subject, err := h.Identities.FindByID(r.Context(), p.ManagerID); err == nil {
		res.SubjectManagerID = subject.ManagerID
	}
	return res
}

func isActiveMember(p project.Project, principalID string) bool {
	for _, m := range p.Team {
		if m.PrincipalID == principalID && m.IsActive {
			return true
		}
	}
	return false
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), actorID, action, "project", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, project.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "project not found", reqID)
	case errors.Is(err, project.ErrMemberNotFound):
		api.Fail(w, http.StatusNotFound, "member_not_found", err.Error(), reqID)
	case errors.Is(err, project.ErrTaskNotFound):
		api.Fail(w, http.StatusNotFound, "task_not_found", err.Error(), reqID)
	case errors.Is(err, project.ErrDuplicateMember):
		api.Fail(w, http.StatusConflict, "duplicate_member", err.Error(), reqID)
	case errors.Is(err, project.ErrManagerOnTeam):
		api.Fail(w, http.StatusConflict, "manager_on_team", err.Error(), reqID)
	case errors.Is(err, project.ErrManagerNotActive), errors.Is(err, project.ErrMemberNotActive):
		api.Fail(w, http.StatusBadRequest, "principal_not_active", err.Error(), reqID)
	case errors.Is(err, project.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := project.ListFilter{Status: r.URL.Query().Get("status")}
	switch user.Role {
	case identity.RoleAdmin, identity.RoleHR:
		filter.ManagerID = r.URL.Query().Get("managerId")
		filter.MemberID = r.URL.Query().Get("memberId")
	case identity.RoleManager:
		filter.ManagerID = user.ID
	default:
		filter.MemberID = user.ID
	}

	projects, total, err := h.Projects.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, projects, len(projects), &api.Pagination{Limit: page.Limit, Offset: page.Offset, Total: total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload project.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.CreatedBy = user.ID
	if payload.ManagerID == "" {
		payload.ManagerID = user.ID
	}
	// Managers may only create projects they will run themselves.
	if user.Role == identity.RoleManager && payload.ManagerID != user.ID {
		api.Fail(w, http.StatusForbidden, "forbidden", "managers can only create their own projects", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Projects.Create(r.Context(), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.create", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")

	p, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	// Active team members see their project; everyone else goes through the
	// decision engine.
	if !isActiveMember(p, user.ID) && !access.CanPerform(user, access.ActionProjectView, h.resource(r, p)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")

	existing, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionProjectManageTeam, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload project.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.UpdatedBy = user.ID
	// Manager reassignment has a dedicated endpoint with its own rule.
	payload.ManagerID = existing.ManagerID

	updated, err := h.Projects.Update(r.Context(), projectID, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.update", projectID, existing, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")

	existing, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionProjectManageTeam, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload project.Member
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Projects.AddMember(r.Context(), projectID, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.member_add", projectID, nil, payload)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")
	principalID := chi.URLParam(r, "principalID")

	existing, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionProjectManageTeam, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Projects.RemoveMember(r.Context(), projectID, principalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.member_remove", projectID, map[string]string{"principalId": principalID}, nil)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type reassignRequest struct {
	ManagerID string `json:"managerId"`
}

func (h *Handler) handleReassignManager(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")

	existing, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionProjectReassignManager, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Projects.ReassignManager(r.Context(), projectID, payload.ManagerID, user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.manager_reassign", projectID,
		map[string]string{"managerId": existing.ManagerID},
		map[string]string{"managerId": payload.ManagerID})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddTask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")

	existing, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionProjectManageTeam, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload project.Task
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ProjectID = projectID

	updated, err := h.Projects.AddTask(r.Context(), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.task_add", projectID, nil, payload)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	projectID := chi.URLParam(r, "projectID")
	taskID := chi.URLParam(r, "taskID")

	existing, err := h.Projects.Get(r.Context(), projectID)
	if err != nil {
		fail(w, r, err)
		return
	}

	// Assignees move their own tasks; otherwise team management rules apply.
	assignee := false
	for _, t := range existing.Tasks {
		if t.ID == taskID && t.AssigneeID == user.ID {
			assignee = true
			break
		}
	}
	if !assignee && !access.CanPerform(user, access.ActionProjectManageTeam, h.resource(r, existing)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Projects.UpdateTaskStatus(r.Context(), projectID, taskID, payload.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "project.task_status", projectID,
		map[string]string{"taskId": taskID},
		map[string]string{"taskId": taskID, "status": payload.Status})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
