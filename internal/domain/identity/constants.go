package identity

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"

	StatusActive     = "active"
	StatusOnboarding = "onboarding"
	StatusSuspended  = "suspended"
	StatusTerminated = "terminated"
)

func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Inactive reports whether a principal status blocks every action.
func Inactive(status string) bool {
	return status == StatusSuspended || status == StatusTerminated
}
