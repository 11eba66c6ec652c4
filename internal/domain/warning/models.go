package warning

import "time"

type Warning struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	IssuedBy         string     `json:"issuedBy"`
	Severity         string     `json:"severity"`
	Status           string     `json:"status"`
	Subject          string     `json:"subject"`
	Description      string     `json:"description"`
	DateIssued       time.Time  `json:"dateIssued"`
	ValidUntil       time.Time  `json:"validUntil"`
	Escalated        bool       `json:"escalated"`
	EscalationDate   *time.Time `json:"escalationDate,omitempty"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNote   string     `json:"resolutionNote,omitempty"`
	WithdrawalReason string     `json:"withdrawalReason,omitempty"`
	LetterDocumentID string     `json:"letterDocumentId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Expired is a read-time derivation; the stored status is never mutated by
// the passage of time.
func (w Warning) Expired(now time.Time) bool {
	return w.Status == StatusActive && !w.ValidUntil.After(now)
}

type ListFilter struct {
	EmployeeID string
	Severity   string
	Status     string
	// ActiveOnly additionally filters out warnings whose validUntil has
	// passed, on top of Status == active.
	ActiveOnly bool
}
