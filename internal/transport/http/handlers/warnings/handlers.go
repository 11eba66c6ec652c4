package warninghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"peopleops/internal/domain/access"
	"peopleops/internal/domain/audit"
	"peopleops/internal/domain/identity"
	"peopleops/internal/domain/warning"
	"peopleops/internal/transport/http/api"
	"peopleops/internal/transport/http/middleware"
	"peopleops/internal/transport/http/shared"
)

type Handler struct {
	Warnings   *warning.Service
	Identities *identity.Service
	Audit      *audit.Service
}

func NewHandler(warnings *warning.Service, identities *identity.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Warnings: warnings, Identities: identities, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/warnings", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(identity.PermWarningsRead)).Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{warningID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Post("/resolve", h.handleResolve)
			r.Post("/escalate", h.handleEscalate)
			r.Post("/withdraw", h.handleWithdraw)
			r.Post("/letter", h.handleGenerateLetter)
		})
	})
}

func (h *Handler) resource(r *http.Request, w warning.Warning) *access.Resource {
	res := &access.Resource{Type: "warning", SubjectID: w.EmployeeID}
	if subject, err := h.Identities.FindByID(r.Context(), w.EmployeeID); err == nil {
		res.SubjectManagerID = subject.ManagerID
	}
	return res
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), actorID, action, "warning", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, warning.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "warning not found", reqID)
	case errors.Is(err, warning.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, warning.ErrReasonRequired):
		api.Fail(w, http.StatusBadRequest, "reason_required", err.Error(), reqID)
	case errors.Is(err, warning.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := warning.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Severity:   r.URL.Query().Get("severity"),
		Status:     r.URL.Query().Get("status"),
		ActiveOnly: r.URL.Query().Get("activeOnly") == "true",
	}

	switch user.Role {
	case identity.RoleAdmin, identity.RoleHR:
	case identity.RoleManager:
		if filter.EmployeeID == "" {
			filter.EmployeeID = user.ID
		} else if filter.EmployeeID != user.ID {
			isManager, err := h.Identities.IsManagerOf(r.Context(), user.ID, filter.EmployeeID)
			if err != nil || !isManager {
				api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
				return
			}
		}
	default:
		filter.EmployeeID = user.ID
	}

	warnings, total, err := h.Warnings.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, warnings, len(warnings), &api.Pagination{Limit: page.Limit, Offset: page.Offset, Total: total}, middleware.GetRequestID(r.Context()))
}

type createRequest struct {
	EmployeeID  string `json:"employeeId"`
	Severity    string `json:"severity"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	DateIssued  string `json:"dateIssued"`
	ValidUntil  string `json:"validUntil"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", body.EmployeeID, "is required")
	v.Required("subject", body.Subject, "is required")
	v.Enum("severity", body.Severity,
		[]string{warning.SeverityLow, warning.SeverityMedium, warning.SeverityHigh, warning.SeverityCritical},
		"must be low, medium, high or critical")
	var dateIssued, validUntil time.Time
	if body.DateIssued != "" {
		dateIssued, _ = v.Date("dateIssued", body.DateIssued)
	}
	validUntil, _ = v.Date("validUntil", body.ValidUntil)
	v.DateOrder("dateIssued", dateIssued, "validUntil", validUntil)
	if v.Reject(w, reqID) {
		return
	}

	payload := warning.Warning{
		EmployeeID:  body.EmployeeID,
		IssuedBy:    user.ID,
		Severity:    body.Severity,
		Subject:     body.Subject,
		Description: body.Description,
		DateIssued:  dateIssued,
		ValidUntil:  validUntil,
	}

	if !access.CanPerform(user, access.ActionWarningIssue, h.resource(r, payload)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", reqID)
		return
	}

	created, err := h.Warnings.Create(r.Context(), payload)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.record(r, user.ID, "warning.issue", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	warningID := chi.URLParam(r, "warningID")

	wr, err := h.Warnings.Get(r.Context(), warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionWarningView, h.resource(r, wr)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, wr, middleware.GetRequestID(r.Context()))
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	warningID := chi.URLParam(r, "warningID")

	wr, err := h.Warnings.Get(r.Context(), warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionWarningResolve, h.resource(r, wr)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload noteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Warnings.Resolve(r.Context(), warningID, payload.Note)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "warning.resolve", warningID, map[string]string{"status": wr.Status}, map[string]string{"status": updated.Status})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	warningID := chi.URLParam(r, "warningID")

	wr, err := h.Warnings.Get(r.Context(), warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionWarningEscalate, h.resource(r, wr)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Warnings.Escalate(r.Context(), warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "warning.escalate", warningID, nil, map[string]any{"escalated": updated.Escalated})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	warningID := chi.URLParam(r, "warningID")

	wr, err := h.Warnings.Get(r.Context(), warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionWarningWithdraw, h.resource(r, wr)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Warnings.Withdraw(r.Context(), warningID, payload.Reason)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "warning.withdraw", warningID,
		map[string]string{"status": wr.Status},
		map[string]string{"status": updated.Status, "reason": payload.Reason})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	warningID := chi.URLParam(r, "warningID")

	wr, err := h.Warnings.Get(r.Context(), warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionWarningIssue, h.resource(r, wr)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Warnings.GenerateLetter(r.Context(), user.ID, warningID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "warning.letter", warningID, nil, map[string]string{"letterDocumentId": updated.LetterDocumentID})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}
