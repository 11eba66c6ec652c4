package warning

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"peopleops/internal/domain/document"
	"peopleops/internal/domain/identity"
)

type Service struct {
	Store      *Store
	Identities *identity.Service
	Documents  *document.Service
}

func NewService(store *Store, identities *identity.Service, documents *document.Service) *Service {
	return &Service{Store: store, Identities: identities, Documents: documents}
}

func (s *Service) Get(ctx context.Context, id string) (Warning, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Warning, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

// Create validates the payload; validUntil must be strictly after dateIssued.
func (s *Service) Create(ctx context.Context, w Warning) (Warning, error) {
	if strings.TrimSpace(w.EmployeeID) == "" || strings.TrimSpace(w.Subject) == "" {
		return Warning{}, ErrValidation
	}
	if !ValidSeverity(w.Severity) {
		return Warning{}, ErrValidation
	}
	if w.DateIssued.IsZero() {
		w.DateIssued = time.Now().UTC()
	}
	if !w.ValidUntil.After(w.DateIssued) {
		return Warning{}, ErrValidation
	}

	id, err := s.Store.Create(ctx, w)
	if err != nil {
		return Warning{}, err
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) Resolve(ctx context.Context, id, note string) (Warning, error) {
	moved, err := s.Store.Resolve(ctx, id, note)
	if err != nil {
		return Warning{}, err
	}
	if !moved {
		if _, findErr := s.Store.FindByID(ctx, id); findErr != nil {
			return Warning{}, findErr
		}
		return Warning{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

// Withdraw is the elevated-role terminal move; a human-readable reason is
// mandatory.
func (s *Service) Withdraw(ctx context.Context, id, reason string) (Warning, error) {
	if strings.TrimSpace(reason) == "" {
		return Warning{}, ErrReasonRequired
	}
	moved, err := s.Store.Withdraw(ctx, id, reason)
	if err != nil {
		return Warning{}, err
	}
	if !moved {
		if _, findErr := s.Store.FindByID(ctx, id); findErr != nil {
			return Warning{}, findErr
		}
		return Warning{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

// Escalate sets the orthogonal one-shot flag. A second escalation fails and
// leaves escalationDate untouched.
func (s *Service) Escalate(ctx context.Context, id string) (Warning, error) {
	moved, err := s.Store.Escalate(ctx, id)
	if err != nil {
		return Warning{}, err
	}
	if !moved {
		if _, findErr := s.Store.FindByID(ctx, id); findErr != nil {
			return Warning{}, findErr
		}
		return Warning{}, ErrInvalidTransition
	}
	return s.Store.FindByID(ctx, id)
}

// GenerateLetter renders a formal PDF for the warning, stores it through the
// blob store and registers it as a document owned by the issuer.
func (s *Service) GenerateLetter(ctx context.Context, actorID, id string) (Warning, error) {
	w, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Warning{}, err
	}

	subjectName := w.EmployeeID
	if p, err := s.Identities.FindByID(ctx, w.EmployeeID); err == nil {
		subjectName = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	pdfBytes, err := renderLetter(w, subjectName)
	if err != nil {
		return Warning{}, err
	}

	doc, err := s.Documents.Create(ctx, document.Upload{
		FileName:    fmt.Sprintf("warning-%s.pdf", w.ID),
		ContentType: "application/pdf",
		Data:        pdfBytes,
		UploadedBy:  actorID,
		Category:    document.CategoryWarning,
	})
	if err != nil {
		return Warning{}, err
	}

	if err := s.Store.SetLetterDocument(ctx, w.ID, doc.ID); err != nil {
		return Warning{}, err
	}
	return s.Store.FindByID(ctx, id)
}

func renderLetter(w Warning, subjectName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Disciplinary Warning")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", subjectName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Severity: %s", w.Severity))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Issued: %s", w.DateIssued.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Valid until: %s", w.ValidUntil.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, w.Subject)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, w.Description, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.SoftDelete(ctx, id)
}
