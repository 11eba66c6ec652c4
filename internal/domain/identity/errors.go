package identity

import "errors"

var (
	ErrNotFound        = errors.New("principal not found")
	ErrAccountInactive = errors.New("account is suspended or terminated")
)
