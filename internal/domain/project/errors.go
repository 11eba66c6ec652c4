package project

import "errors"

var (
	ErrNotFound         = errors.New("project not found")
	ErrMemberNotFound   = errors.New("team member not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrValidation       = errors.New("invalid project payload")
	ErrDuplicateMember  = errors.New("principal is already an active team member")
	ErrManagerOnTeam    = errors.New("the project manager cannot be removed from the team; reassign the manager first")
	ErrManagerNotActive = errors.New("the new manager must be an active principal")
	ErrMemberNotActive  = errors.New("team members must be active principals")
)
