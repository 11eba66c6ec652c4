package employee

// transitions lists the allowed status moves. Termination is reachable from
// every non-terminal state; on_leave and inactive may return to active.
var transitions = map[string][]string{
	StatusOnboarding: {StatusActive, StatusTerminated},
	StatusActive:     {StatusOnLeave, StatusInactive, StatusTerminated},
	StatusOnLeave:    {StatusActive, StatusTerminated},
	StatusInactive:   {StatusActive, StatusTerminated},
	StatusTerminated: {},
}

func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

func Terminal(status string) bool {
	return status == StatusTerminated
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to string) error {
	if !ValidStatus(from) || !ValidStatus(to) {
		return ErrValidation
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}
