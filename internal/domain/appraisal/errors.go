package appraisal

import "errors"

var (
	ErrNotFound           = errors.New("appraisal not found")
	ErrInvalidTransition  = errors.New("invalid appraisal transition")
	ErrPreconditionFailed = errors.New("appraisal is missing required fields for completion")
	ErrValidation         = errors.New("invalid appraisal payload")
	ErrDuplicate          = errors.New("a non-cancelled appraisal already exists for this employee and date")
	ErrNotReviewer        = errors.New("only the designated reviewer may submit a review")
)
