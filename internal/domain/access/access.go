package access

import "peopleops/internal/domain/identity"

// ShareLevel orders document share grants: view < comment < edit.
type ShareLevel int

const (
	ShareNone ShareLevel = iota
	ShareView
	ShareComment
	ShareEdit
)

func ParseShareLevel(raw string) (ShareLevel, bool) {
	switch raw {
	case "view":
		return ShareView, true
	case "comment":
		return ShareComment, true
	case "edit":
		return ShareEdit, true
	}
	return ShareNone, false
}

func (l ShareLevel) String() string {
	switch l {
	case ShareView:
		return "view"
	case ShareComment:
		return "comment"
	case ShareEdit:
		return "edit"
	}
	return ""
}

type Share struct {
	PrincipalID string
	Level       ShareLevel
}

// Resource is the snapshot a caller supplies about the acted-on record.
// SubjectID is the principal the resource belongs to (profile owner, warned
// employee, appraised employee, project manager, document uploader).
// SubjectManagerID must come from a fresh read, not from session state.
type Resource struct {
	Type             string
	SubjectID        string
	SubjectManagerID string
	Public           bool
	Shares           []Share
}

const (
	ReasonAccountInactive  = "account_inactive"
	ReasonUnknownAction    = "unknown_action"
	ReasonInsufficientRole = "insufficient_role"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates whether principal may perform action on the resource.
// Precedence, first match wins: admin override, elevated role, ownership,
// manager relationship, document share grant. It is a pure predicate; callers
// audit and enforce the outcome.
func Decide(p identity.ResolvedPrincipal, action Action, res *Resource) Decision {
	if identity.Inactive(p.Status) {
		return deny(ReasonAccountInactive)
	}

	if p.Role == identity.RoleAdmin {
		return allow()
	}

	r, ok := rules[action]
	if !ok {
		return deny(ReasonUnknownAction)
	}

	if r.elevated[p.Role] {
		return allow()
	}

	if res != nil {
		if r.self && res.SubjectID != "" && res.SubjectID == p.ID {
			return allow()
		}
		if r.manager && p.Role == identity.RoleManager && res.SubjectManagerID != "" && res.SubjectManagerID == p.ID {
			return allow()
		}
		if r.minShare > ShareNone {
			if res.Public && r.minShare == ShareView {
				return allow()
			}
			for _, share := range res.Shares {
				if share.PrincipalID == p.ID && share.Level >= r.minShare {
					return allow()
				}
			}
		}
	}

	return deny(ReasonInsufficientRole)
}

// CanPerform is the boolean shorthand used by handlers that do not surface
// the denial reason.
func CanPerform(p identity.ResolvedPrincipal, action Action, res *Resource) bool {
	return Decide(p, action, res).Allowed
}
