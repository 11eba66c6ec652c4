package employee

import "time"

type Profile struct {
	ID          string     `json:"id"`
	PrincipalID string     `json:"principalId"`
	JobTitle    string     `json:"jobTitle"`
	Department  string     `json:"department"`
	ManagerID   string     `json:"managerId,omitempty"`
	HireDate    *time.Time `json:"hireDate,omitempty"`
	Salary      *float64   `json:"salary,omitempty"`
	IsProbation bool       `json:"isProbation"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StatusChange is an immutable history entry; rows are only ever appended.
type StatusChange struct {
	ID         string    `json:"id"`
	ProfileID  string    `json:"profileId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Reason     string    `json:"reason"`
	ActorID    string    `json:"actorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListFilter struct {
	Status     string
	Department string
	ManagerID  string
}
