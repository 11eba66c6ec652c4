package employee

import "errors"

var (
	ErrNotFound          = errors.New("employee profile not found")
	ErrInvalidTransition = errors.New("invalid employee status transition")
	ErrDuplicateProfile  = errors.New("employee profile already exists for principal")
	ErrValidation        = errors.New("invalid employee payload")
)
