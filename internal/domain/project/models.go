package project

import "time"

type Member struct {
	PrincipalID string     `json:"principalId"`
	Role        string     `json:"role"`
	Allocation  float64    `json:"allocation"`
	IsActive    bool       `json:"isActive"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

type Task struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	Title      string     `json:"title"`
	AssigneeID string     `json:"assigneeId,omitempty"`
	Status     string     `json:"status"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ManagerID   string     `json:"managerId"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Team        []Member   `json:"team,omitempty"`
	Tasks       []Task     `json:"tasks,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Progress and DaysRemaining are derived on read, never persisted.
	Progress      *float64 `json:"progress,omitempty"`
	DaysRemaining *int     `json:"daysRemaining,omitempty"`
}

type ListFilter struct {
	ManagerID string
	MemberID  string
	Status    string
}
