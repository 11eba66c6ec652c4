package appraisalhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peopleops/internal/domain/access"
	"peopleops/internal/domain/appraisal"
	"peopleops/internal/domain/audit"
	"peopleops/internal/domain/identity"
	"peopleops/internal/transport/http/api"
	"peopleops/internal/transport/http/middleware"
	"peopleops/internal/transport/http/shared"
)

type Handler struct {
	Appraisals *appraisal.Service
	Identities *identity.Service
	Audit      *audit.Service
}

func NewHandler(appraisals *appraisal.Service, identities *identity.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Appraisals: appraisals, Identities: identities, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(identity.PermAppraisalsRead)).Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{appraisalID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Post("/self-assessment", h.handleSelfAssessment)
			r.Post("/review", h.handleReview)
			r.Put("/goals", h.handleUpdateGoals)
			r.Post("/cancel", h.handleCancel)
		})
	})
}

func (h *Handler) resource(r *http.Request, a appraisal.Appraisal) *access.Resource {
	res := &access.Resource{Type: "appraisal", SubjectID: a.EmployeeID}
	if subject, err := h.Identities.FindByID(r.Context(), a.EmployeeID); err == nil {
		res.SubjectManagerID = subject.ManagerID
	}
	return res
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), actorID, action, "appraisal", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, appraisal.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "appraisal not found", reqID)
	case errors.Is(err, appraisal.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "appraisal_exists", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrPreconditionFailed):
		api.Fail(w, http.StatusConflict, "precondition_failed", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrNotReviewer):
		api.Fail(w, http.StatusForbidden, "not_reviewer", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := appraisal.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		ReviewerID: r.URL.Query().Get("reviewerId"),
		Status:     r.URL.Query().Get("status"),
	}

	switch user.Role {
	case identity.RoleAdmin, identity.RoleHR:
	case identity.RoleManager:
		if filter.EmployeeID == "" {
			filter.ReviewerID = user.ID
		} else if filter.EmployeeID != user.ID {
			isManager, err := h.Identities.IsManagerOf(r.Context(), user.ID, filter.EmployeeID)
			if err != nil || !isManager {
				api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
				return
			}
		}
	default:
		filter.EmployeeID = user.ID
		filter.ReviewerID = ""
	}

	appraisals, total, err := h.Appraisals.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, appraisals, len(appraisals), &api.Pagination{Limit: page.Limit, Offset: page.Offset, Total: total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload appraisal.Appraisal
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.ReviewerID == "" {
		payload.ReviewerID = user.ID
	}

	if !access.CanPerform(user, access.ActionAppraisalCreate, h.resource(r, payload)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Appraisals.Create(r.Context(), payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "appraisal.create", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	a, err := h.Appraisals.Get(r.Context(), appraisalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	// The designated reviewer may read the appraisal even when the reporting
	// line has moved since it was created.
	if user.ID != a.ReviewerID && !access.CanPerform(user, access.ActionAppraisalView, h.resource(r, a)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

type selfAssessmentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleSelfAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	a, err := h.Appraisals.Get(r.Context(), appraisalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionAppraisalSelfAssess, h.resource(r, a)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload selfAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Appraisals.SubmitSelfAssessment(r.Context(), appraisalID, payload.Text)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "appraisal.self_assessment", appraisalID, map[string]string{"status": a.Status}, map[string]string{"status": updated.Status})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type reviewRequest struct {
	Review   string  `json:"review"`
	Rating   float64 `json:"rating"`
	SendBack bool    `json:"sendBack"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	a, err := h.Appraisals.Get(r.Context(), appraisalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if user.ID != a.ReviewerID && !access.CanPerform(user, access.ActionAppraisalReview, h.resource(r, a)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Appraisals.SubmitReview(r.Context(), user, appraisalID, appraisal.ReviewSubmission{
		Review:   payload.Review,
		Rating:   payload.Rating,
		SendBack: payload.SendBack,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "appraisal.review", appraisalID, map[string]string{"status": a.Status}, map[string]string{"status": updated.Status})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type goalsRequest struct {
	Goals []appraisal.Goal `json:"goals"`
}

func (h *Handler) handleUpdateGoals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	a, err := h.Appraisals.Get(r.Context(), appraisalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if user.ID != a.ReviewerID && !access.CanPerform(user, access.ActionAppraisalReview, h.resource(r, a)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload goalsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Appraisals.UpdateGoals(r.Context(), appraisalID, payload.Goals)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "appraisal.goals_update", appraisalID, a.Goals, updated.Goals)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	a, err := h.Appraisals.Get(r.Context(), appraisalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionAppraisalCancel, h.resource(r, a)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Appraisals.Cancel(r.Context(), appraisalID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "appraisal.cancel", appraisalID, map[string]string{"status": a.Status}, map[string]string{"status": updated.Status})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
