package reporthandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"peopleops/internal/domain/identity"
	"peopleops/internal/domain/reports"
	"peopleops/internal/transport/http/api"
	"peopleops/internal/transport/http/middleware"
)

type Handler struct {
	Reports *reports.Service
}

func NewHandler(reportsSvc *reports.Service) *Handler {
	return &Handler{Reports: reportsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequirePermission(identity.PermReportsRead))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/employees", h.handleEmployees)
		r.Get("/warnings", h.handleWarnings)
		r.Get("/appraisals", h.handleAppraisals)
		r.Get("/projects", h.handleProjects)
		r.Get("/documents", h.handleDocuments)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Reports.Dashboard(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Reports.EmployeeSummary(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build employee summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWarnings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Reports.WarningSummary(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build warning summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAppraisals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Reports.AppraisalSummary(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build appraisal summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Reports.ProjectSummary(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build project summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Reports.DocumentSummary(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build document summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}
