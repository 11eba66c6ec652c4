package identity

import "time"

type Principal struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Role       string     `json:"role"`
	ManagerID  string     `json:"managerId,omitempty"`
	Department string     `json:"department,omitempty"`
	Status     string     `json:"status"`
	MFAEnabled bool       `json:"mfaEnabled"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ResolvedPrincipal is the authenticated view handed to the access engine.
type ResolvedPrincipal struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	ManagerID   string   `json:"managerId,omitempty"`
	Department  string   `json:"department,omitempty"`
	Status      string   `json:"status"`
}

// HasPermission consults the resolved permission set, falling back to the
// role catalog when the resolver did not attach one.
func (p ResolvedPrincipal) HasPermission(permission string) bool {
	if len(p.Permissions) == 0 {
		return RoleHasPermission(p.Role, permission)
	}
	for _, perm := range p.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}
