package documenthandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"peopleops/internal/domain/access"
	"peopleops/internal/domain/audit"
	"peopleops/internal/domain/document"
	"peopleops/internal/domain/identity"
	"peopleops/internal/transport/http/api"
	"peopleops/internal/transport/http/middleware"
	"peopleops/internal/transport/http/shared"
)

type Handler struct {
	Documents    *document.Service
	Identities   *identity.Service
	Audit        *audit.Service
	MaxBytes     int64
	ContentTypes []string
}

func NewHandler(documents *document.Service, identities *identity.Service, auditSvc *audit.Service, maxBytes int64, contentTypes []string) *Handler {
	return &Handler{Documents: documents, Identities: identities, Audit: auditSvc, MaxBytes: maxBytes, ContentTypes: contentTypes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequirePermission(identity.PermDocumentsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermDocumentsWrite)).Post("/", h.handleUpload)
		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Get("/download", h.handleDownload)
			r.Put("/", h.handleUpdateMetadata)
			r.Put("/content", h.handleReplaceContent)
			r.Post("/shares", h.handleShare)
			r.Put("/shares/{principalID}", h.handleUpdateShare)
			r.Delete("/shares/{principalID}", h.handleUnshare)
			r.Post("/verify", h.handleVerify)
			r.Post("/reject", h.handleReject)
			r.Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) resource(r *http.Request, d document.Document) *access.Resource {
	managerID := ""
	if subject, err := h.Identities.FindByID(r.Context(), d.UploadedBy); err == nil {
		managerID = subject.ManagerID
	}
	return document.AccessResource(d, managerID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	err := h.Audit.Record(r.Context(), actorID, action, "document", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, document.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "document not found", reqID)
	case errors.Is(err, document.ErrShareNotFound):
		api.Fail(w, http.StatusNotFound, "share_not_found", err.Error(), reqID)
	case errors.Is(err, document.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, document.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", reqID)
	}
}

func (h *Handler) allowedContentType(contentType string) bool {
	if len(h.ContentTypes) == 0 {
		return true
	}
	base := strings.TrimSpace(strings.Split(contentType, ";")[0])
	for _, allowed := range h.ContentTypes {
		if strings.EqualFold(base, allowed) {
			return true
		}
	}
	return false
}

// readUpload pulls the multipart file plus its accompanying form fields,
// enforcing the configured size cap before buffering.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (document.Upload, bool) {
	reqID := middleware.GetRequestID(r.Context())
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		api.Fail(w, http.StatusRequestEntityTooLarge, "upload_too_large", "upload exceeds the size limit", reqID)
		return document.Upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("document")
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "missing_file", "multipart field 'file' or 'document' is required", reqID)
		return document.Upload{}, false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !h.allowedContentType(contentType) {
		api.Fail(w, http.StatusUnsupportedMediaType, "unsupported_type", "content type is not allowed", reqID)
		return document.Upload{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "upload_failed", "failed to read upload", reqID)
		return document.Upload{}, false
	}
	if h.MaxBytes > 0 && int64(len(data)) > h.MaxBytes {
		api.Fail(w, http.StatusRequestEntityTooLarge, "upload_too_large", "upload exceeds the size limit", reqID)
		return document.Upload{}, false
	}

	return document.Upload{
		FileName:          header.Filename,
		ContentType:       contentType,
		Data:              data,
		EmployeeProfileID: r.FormValue("employeeProfileId"),
		Category:          r.FormValue("category"),
		IsPublic:          r.FormValue("isPublic") == "true",
	}, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := document.ListFilter{
		Category:     r.URL.Query().Get("category"),
		Verification: r.URL.Query().Get("verification"),
	}
	switch user.Role {
	case identity.RoleAdmin, identity.RoleHR:
		filter.UploadedBy = r.URL.Query().Get("uploadedBy")
		filter.EmployeeProfileID = r.URL.Query().Get("employeeProfileId")
	default:
		if r.URL.Query().Get("shared") == "true" {
			filter.SharedWith = user.ID
		} else {
			filter.UploadedBy = user.ID
		}
	}

	docs, total, err := h.Documents.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.SuccessList(w, docs, len(docs), &api.Pagination{Limit: page.Limit, Offset: page.Offset, Total: total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	up.UploadedBy = user.ID

	created, err := h.Documents.Create(r.Context(), up)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.upload", created.ID, nil, map[string]any{
		"fileName": created.FileName,
		"size":     created.Size,
		"category": created.Category,
	})
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentView, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, d, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentView, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	data, meta, err := h.Documents.Content(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.FileName+`"`)
	if _, err := w.Write(data); err != nil {
		slog.Warn("document download write failed", "documentId", documentID, "err", err)
	}
}

type metadataRequest struct {
	FileName string `json:"fileName"`
	Category string `json:"category"`
	IsPublic bool   `json:"isPublic"`
}

func (h *Handler) handleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentEdit, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Category == "" {
		payload.Category = d.Category
	}

	updated, err := h.Documents.UpdateMetadata(r.Context(), documentID, document.Metadata{
		FileName: payload.FileName,
		Category: payload.Category,
		IsPublic: payload.IsPublic,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.update", documentID,
		map[string]any{"fileName": d.FileName, "version": d.Version},
		map[string]any{"fileName": updated.FileName, "version": updated.Version})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceContent(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentEdit, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	updated, err := h.Documents.ReplaceContent(r.Context(), documentID, up)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.replace_content", documentID,
		map[string]any{"version": d.Version},
		map[string]any{"version": updated.Version, "size": updated.Size})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type shareRequest struct {
	PrincipalID string `json:"principalId"`
	Permission  string `json:"permission"`
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentShare, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload shareRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	level, ok := access.ParseShareLevel(payload.Permission)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_permission", "permission must be view, comment or edit", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := h.Identities.FindByID(r.Context(), payload.PrincipalID); err != nil {
		api.Fail(w, http.StatusNotFound, "principal_not_found", "target principal not found", middleware.GetRequestID(r.Context()))
		return
	}

	granted, err := h.Documents.Share(r.Context(), documentID, payload.PrincipalID, level)
	if err != nil {
		fail(w, r, err)
		return
	}
	if granted {
		h.record(r, user.ID, "document.share", documentID, nil, payload)
	}

	updated, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type sharePermissionRequest struct {
	Permission string `json:"permission"`
}

func (h *Handler) handleUpdateShare(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")
	principalID := chi.URLParam(r, "principalID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentShare, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	var payload sharePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	level, ok := access.ParseShareLevel(payload.Permission)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_permission", "permission must be view, comment or edit", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Documents.UpdateSharePermission(r.Context(), documentID, principalID, level); err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.share_update", documentID,
		map[string]string{"principalId": principalID},
		map[string]string{"principalId": principalID, "permission": payload.Permission})

	updated, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnshare(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")
	principalID := chi.URLParam(r, "principalID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentShare, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Documents.Unshare(r.Context(), documentID, principalID); err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.unshare", documentID, map[string]string{"principalId": principalID}, nil)

	updated, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentVerify, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	updated, activated, err := h.Documents.Verify(r.Context(), user.ID, documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.verify", documentID,
		map[string]string{"verification": d.Verification},
		map[string]any{"verification": updated.Verification, "employeeActivated": activated})
	api.Success(w, map[string]any{"document": updated, "employeeActivated": activated}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentVerify, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Documents.Reject(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.reject", documentID,
		map[string]string{"verification": d.Verification},
		map[string]string{"verification": updated.Verification})
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	documentID := chi.URLParam(r, "documentID")

	d, err := h.Documents.Get(r.Context(), documentID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !access.CanPerform(user, access.ActionDocumentDelete, h.resource(r, d)) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Documents.Delete(r.Context(), documentID); err != nil {
		fail(w, r, err)
		return
	}
	h.record(r, user.ID, "document.delete", documentID, map[string]string{"fileName": d.FileName}, nil)
	api.Success(w, map[string]string{"id": documentID}, middleware.GetRequestID(r.Context()))
}
