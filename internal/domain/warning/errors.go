package warning

import "errors"

var (
	ErrNotFound          = errors.New("warning not found")
	ErrInvalidTransition = errors.New("invalid warning transition")
	ErrValidation        = errors.New("invalid warning payload")
	ErrReasonRequired    = errors.New("withdrawal requires a reason")
)
