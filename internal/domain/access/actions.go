package access

import "peopleops/internal/domain/identity"

type Action string

const (
	ActionEmployeeView      Action = "employee.view"
	ActionEmployeeUpdate    Action = "employee.update"
	ActionEmployeeSetStatus Action = "employee.set_status"
	ActionEmployeeTerminate Action = "employee.terminate"

	ActionWarningView     Action = "warning.view"
	ActionWarningIssue    Action = "warning.issue"
	ActionWarningResolve  Action = "warning.resolve"
	ActionWarningEscalate Action = "warning.escalate"
	ActionWarningWithdraw Action = "warning.withdraw"

	ActionAppraisalView       Action = "appraisal.view"
	ActionAppraisalCreate     Action = "appraisal.create"
	ActionAppraisalSelfAssess Action = "appraisal.self_assess"
	ActionAppraisalReview     Action = "appraisal.review"
	ActionAppraisalCancel     Action = "appraisal.cancel"

	ActionProjectView            Action = "project.view"
	ActionProjectManageTeam      Action = "project.manage_team"
	ActionProjectReassignManager Action = "project.reassign_manager"

	ActionDocumentView    Action = "document.view"
	ActionDocumentComment Action = "document.comment"
	ActionDocumentEdit    Action = "document.edit"
	ActionDocumentShare   Action = "document.share"
	ActionDocumentVerify  Action = "document.verify"
	ActionDocumentDelete  Action = "document.delete"
)

// rule declares who may perform an action beyond the admin override:
// elevated roles act without any relationship, the resource subject acts on
// itself for self-scoped operations, a direct manager acts within the
// reporting relationship, and documents additionally honor share grants at or
// above minShare.
type rule struct {
	elevated map[string]bool
	self     bool
	manager  bool
	minShare ShareLevel
}

func elevated(roles ...string) map[string]bool {
	out := make(map[string]bool, len(roles))
	for _, role := range roles {
		out[role] = true
	}
	return out
}

var rules = map[Action]rule{
	ActionEmployeeView:      {elevated: elevated(identity.RoleHR), self: true, manager: true},
	ActionEmployeeUpdate:    {elevated: elevated(identity.RoleHR), self: true},
	ActionEmployeeSetStatus: {elevated: elevated(identity.RoleHR)},
	ActionEmployeeTerminate: {elevated: elevated(identity.RoleHR)},

	ActionWarningView:     {elevated: elevated(identity.RoleHR), self: true, manager: true},
	ActionWarningIssue:    {elevated: elevated(identity.RoleHR), manager: true},
	ActionWarningResolve:  {elevated: elevated(identity.RoleHR), manager: true},
	ActionWarningEscalate: {elevated: elevated(identity.RoleHR), manager: true},
	ActionWarningWithdraw: {elevated: elevated(identity.RoleHR)},

	ActionAppraisalView:       {elevated: elevated(identity.RoleHR), self: true, manager: true},
	ActionAppraisalCreate:     {elevated: elevated(identity.RoleHR), manager: true},
	ActionAppraisalSelfAssess: {self: true},
	ActionAppraisalReview:     {elevated: elevated(identity.RoleHR), manager: true},
	ActionAppraisalCancel:     {elevated: elevated(identity.RoleHR)},

	ActionProjectView:            {elevated: elevated(identity.RoleHR), self: true, manager: true},
	ActionProjectManageTeam:      {elevated: elevated(identity.RoleHR), self: true},
	ActionProjectReassignManager: {elevated: elevated(identity.RoleHR)},

	ActionDocumentView:    {elevated: elevated(identity.RoleHR), self: true, manager: true, minShare: ShareView},
	ActionDocumentComment: {self: true, minShare: ShareComment},
	ActionDocumentEdit:    {elevated: elevated(identity.RoleHR), self: true, minShare: ShareEdit},
	ActionDocumentShare:   {elevated: elevated(identity.RoleHR), self: true},
	ActionDocumentVerify:  {elevated: elevated(identity.RoleHR)},
	ActionDocumentDelete:  {elevated: elevated(identity.RoleHR)},
}
