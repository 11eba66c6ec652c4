package document

import (
	"context"
	"log/slog"
	"strings"

	"peopleops/internal/domain/access"
	"peopleops/internal/domain/employee"
	"peopleops/internal/platform/blob"
)

type Service struct {
	Store     *Store
	Blobs     *blob.Store
	Employees *employee.Service
}

func NewService(store *Store, blobs *blob.Store, employees *employee.Service) *Service {
	return &Service{Store: store, Blobs: blobs, Employees: employees}
}

type Upload struct {
	FileName          string
	ContentType       string
	Data              []byte
	UploadedBy        string
	EmployeeProfileID string
	Category          string
	IsPublic          bool
}

func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Document, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

// Create stores the payload in the blob store and registers the metadata
// record at version 1. Onboarding documents start as pending so verification
// can drive the employee activation.
func (s *Service) Create(ctx context.Context, up Upload) (Document, error) {
	if strings.TrimSpace(up.FileName) == "" || len(up.Data) == 0 {
		return Document{}, ErrValidation
	}
	if up.Category == "" {
		up.Category = CategoryGeneral
	}

	verification := VerificationNone
	if up.EmployeeProfileID != "" {
		verification = VerificationPending
	}

	fileID, err := s.Blobs.Put(up.Data, blob.Metadata{FileName: up.FileName, ContentType: up.ContentType})
	if err != nil {
		return Document{}, err
	}

	id, err := s.Store.Create(ctx, Document{
		FileID:            fileID,
		FileName:          up.FileName,
		ContentType:       up.ContentType,
		Size:              int64(len(up.Data)),
		UploadedBy:        up.UploadedBy,
		EmployeeProfileID: up.EmployeeProfileID,
		Category:          up.Category,
		Verification:      verification,
		IsPublic:          up.IsPublic,
	})
	if err != nil {
		if delErr := s.Blobs.Delete(fileID); delErr != nil {
			slog.Warn("orphan blob cleanup failed", "fileId", fileID, "err", delErr)
		}
		return Document{}, err
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) Content(ctx context.Context, id string) ([]byte, blob.Metadata, error) {
	doc, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, blob.Metadata{}, err
	}
	return s.Blobs.Get(doc.FileID)
}

func (s *Service) UpdateMetadata(ctx context.Context, id string, meta Metadata) (Document, error) {
	if strings.TrimSpace(meta.FileName) == "" {
		return Document{}, ErrValidation
	}
	updated, err := s.Store.UpdateMetadata(ctx, id, meta)
	if err != nil {
		return Document{}, err
	}
	if !updated {
		return Document{}, ErrNotFound
	}
	return s.Store.FindByID(ctx, id)
}

// ReplaceContent uploads a new payload for an existing record; the old blob
// is removed after the pointer swap succeeds.
func (s *Service) ReplaceContent(ctx context.Context, id string, up Upload) (Document, error) {
	if strings.TrimSpace(up.FileName) == "" || len(up.Data) == 0 {
		return Document{}, ErrValidation
	}
	current, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Document{}, err
	}

	fileID, err := s.Blobs.Put(up.Data, blob.Metadata{FileName: up.FileName, ContentType: up.ContentType})
	if err != nil {
		return Document{}, err
	}

	replaced, err := s.Store.ReplaceContent(ctx, id, fileID, up.FileName, up.ContentType, int64(len(up.Data)))
	if err != nil || !replaced {
		if delErr := s.Blobs.Delete(fileID); delErr != nil {
			slog.Warn("orphan blob cleanup failed", "fileId", fileID, "err", delErr)
		}
		if err != nil {
			return Document{}, err
		}
		return Document{}, ErrNotFound
	}

	if delErr := s.Blobs.Delete(current.FileID); delErr != nil {
		slog.Warn("stale blob cleanup failed", "fileId", current.FileID, "err", delErr)
	}
	return s.Store.FindByID(ctx, id)
}

// Share grants access to a target principal. A duplicate grant is a no-op:
// the existing level is kept and version does not move. Shared reports
// whether a new grant was recorded.
func (s *Service) Share(ctx context.Context, id, principalID string, level access.ShareLevel) (bool, error) {
	if level <= access.ShareNone {
		return false, ErrValidation
	}
	if _, err := s.Store.FindByID(ctx, id); err != nil {
		return false, err
	}
	return s.Store.AddShare(ctx, id, principalID, level.String())
}

func (s *Service) UpdateSharePermission(ctx context.Context, id, principalID string, level access.ShareLevel) error {
	if level <= access.ShareNone {
		return ErrValidation
	}
	if _, err := s.Store.FindByID(ctx, id); err != nil {
		return err
	}
	updated, err := s.Store.UpdateSharePermission(ctx, id, principalID, level.String())
	if err != nil {
		return err
	}
	if !updated {
		return ErrShareNotFound
	}
	return nil
}

func (s *Service) Unshare(ctx context.Context, id, principalID string) error {
	if _, err := s.Store.FindByID(ctx, id); err != nil {
		return err
	}
	removed, err := s.Store.RemoveShare(ctx, id, principalID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrShareNotFound
	}
	return nil
}

// Verify moves a pending document to verified and, when the document belongs
// to an onboarding profile, lets the employee machine auto-activate.
func (s *Service) Verify(ctx context.Context, actorID, id string) (Document, bool, error) {
	doc, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Document{}, false, err
	}

	moved, err := s.Store.SetVerification(ctx, id, VerificationPending, VerificationVerified)
	if err != nil {
		return Document{}, false, err
	}
	if !moved {
		return Document{}, false, ErrInvalidTransition
	}

	activated := false
	if doc.EmployeeProfileID != "" {
		activated, err = s.Employees.ActivateIfDocumentsVerified(ctx, actorID, doc.EmployeeProfileID)
		if err != nil {
			slog.Warn("auto activation check failed", "profileId", doc.EmployeeProfileID, "err", err)
			err = nil
		}
	}

	doc, err = s.Store.FindByID(ctx, id)
	return doc, activated, err
}

func (s *Service) Reject(ctx context.Context, id string) (Document, error) {
	moved, err := s.Store.SetVerification(ctx, id, VerificationPending, VerificationRejected)
	if err != nil {
		return Document{}, err
	}
	if !moved {
		return Document{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.SoftDelete(ctx, id)
}

// AccessResource maps a document row to the snapshot the decision engine
// expects.
func AccessResource(d Document, subjectManagerID string) *access.Resource {
	res := &access.Resource{
		Type:             "document",
		SubjectID:        d.UploadedBy,
		SubjectManagerID: subjectManagerID,
		Public:           d.IsPublic,
	}
	for _, sh := range d.Shares {
		level, ok := access.ParseShareLevel(sh.Permission)
		if !ok {
			continue
		}
		res.Shares = append(res.Shares, access.Share{PrincipalID: sh.PrincipalID, Level: level})
	}
	return res
}
