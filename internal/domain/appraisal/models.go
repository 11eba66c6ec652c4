package appraisal

import "time"

type KPI struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
}

type Goal struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Weightage   float64  `json:"weightage"`
	Rating      *float64 `json:"rating,omitempty"`
	KPIs        []KPI    `json:"kpis,omitempty"`
}

type Appraisal struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employeeId"`
	ReviewerID         string     `json:"reviewerId"`
	AppraisalDate      time.Time  `json:"appraisalDate"`
	Status             string     `json:"status"`
	SelfAssessment     string     `json:"selfAssessment,omitempty"`
	SelfAssessmentDate *time.Time `json:"selfAssessmentDate,omitempty"`
	Review             string     `json:"review,omitempty"`
	ReviewDate         *time.Time `json:"reviewDate,omitempty"`
	Goals              []Goal     `json:"goals"`
	// ManualRating, when set, overrides the derived overall rating.
	ManualRating *float64 `json:"manualRating,omitempty"`
	// OverallRating is derived on read and never persisted.
	OverallRating *float64 `json:"overallRating,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ListFilter struct {
	EmployeeID string
	ReviewerID string
	Status     string
}
