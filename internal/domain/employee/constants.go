package employee

const (
	StatusOnboarding = "onboarding"
	StatusActive     = "active"
	StatusOnLeave    = "on_leave"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
)

// ReasonDocumentsVerified marks the system-driven onboarding→active
// transition recorded when the last pending document is verified.
const ReasonDocumentsVerified = "all onboarding documents verified"
