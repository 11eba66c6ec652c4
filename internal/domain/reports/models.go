package reports

import "peopleops/internal/domain/identity"

// Scope narrows every aggregate to what the caller may see: admins and HR
// read everything, managers read their direct reports, employees read
// themselves.
type Scope struct {
	All         bool
	ManagerID   string
	PrincipalID string
}

func ScopeFor(p identity.ResolvedPrincipal) Scope {
	switch p.Role {
	case identity.RoleAdmin, identity.RoleHR:
		return Scope{All: true}
	case identity.RoleManager:
		return Scope{ManagerID: p.ID}
	default:
		return Scope{PrincipalID: p.ID}
	}
}

type EmployeeSummary struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"byStatus"`
	ByDepartment map[string]int `json:"byDepartment"`
	OnProbation  int            `json:"onProbation"`
}

type WarningSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"bySeverity"`
	Active     int            `json:"active"`
	Expired    int            `json:"expired"`
	Escalated  int            `json:"escalated"`
}

type AppraisalSummary struct {
	Total          int      `json:"total"`
	Completed      int      `json:"completed"`
	CompletionRate float64  `json:"completionRate"`
	AverageRating  *float64 `json:"averageRating,omitempty"`
}

type ProjectSummary struct {
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"byStatus"`
	AverageAllocation *float64       `json:"averageAllocation,omitempty"`
}

type DocumentSummary struct {
	Total      int   `json:"total"`
	TotalBytes int64 `json:"totalBytes"`
	Pending    int   `json:"pending"`
}

type Dashboard struct {
	Employees  EmployeeSummary  `json:"employees"`
	Warnings   WarningSummary   `json:"warnings"`
	Appraisals AppraisalSummary `json:"appraisals"`
	Projects   ProjectSummary   `json:"projects"`
	Documents  DocumentSummary  `json:"documents"`
}
