package document

import "time"

type Document struct {
	ID                string    `json:"id"`
	FileID            string    `json:"fileId"`
	FileName          string    `json:"fileName"`
	ContentType       string    `json:"contentType"`
	Size              int64     `json:"size"`
	UploadedBy        string    `json:"uploadedBy"`
	EmployeeProfileID string    `json:"employeeProfileId,omitempty"`
	Category          string    `json:"category"`
	Verification      string    `json:"verification"`
	IsPublic          bool      `json:"isPublic"`
	Version           int       `json:"version"`
	Shares            []Share   `json:"shares,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Share struct {
	PrincipalID string    `json:"principalId"`
	Permission  string    `json:"permission"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ListFilter struct {
	UploadedBy        string
	EmployeeProfileID string
	Category          string
	Verification      string
	SharedWith        string
}

type Metadata struct {
	FileName string
	Category string
	IsPublic bool
}
