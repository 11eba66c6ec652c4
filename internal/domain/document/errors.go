package document

import "errors"

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidTransition = errors.New("invalid document verification transition")
	ErrValidation        = errors.New("invalid document payload")
	ErrShareNotFound     = errors.New("share grant not found")
)
