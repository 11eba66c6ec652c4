package identity

const (
	PermEmployeesRead      = "employees.read"
	PermEmployeesWrite     = "employees.write"
	PermEmployeesTerminate = "employees.terminate"
	PermProjectsRead       = "projects.read"
	PermProjectsWrite      = "projects.write"
	PermAppraisalsRead     = "appraisals.read"
	PermAppraisalsWrite    = "appraisals.write"
	PermAppraisalsReview   = "appraisals.review"
	PermWarningsRead       = "warnings.read"
	PermWarningsWrite      = "warnings.write"
	PermWarningsWithdraw   = "warnings.withdraw"
	PermDocumentsRead      = "documents.read"
	PermDocumentsWrite     = "documents.write"
	PermReportsRead        = "reports.read"
	PermAuditRead          = "audit.read"
	PermSystemAdmin        = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermEmployeesTerminate,
	PermProjectsRead,
	PermProjectsWrite,
	PermAppraisalsRead,
	PermAppraisalsWrite,
	PermAppraisalsReview,
	PermWarningsRead,
	PermWarningsWrite,
	PermWarningsWithdraw,
	PermDocumentsRead,
	PermDocumentsWrite,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermProjectsRead,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermWarningsRead,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermReportsRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermProjectsRead,
		PermProjectsWrite,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermAppraisalsReview,
		PermWarningsRead,
		PermWarningsWrite,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesTerminate,
		PermProjectsRead,
		PermProjectsWrite,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermAppraisalsReview,
		PermWarningsRead,
		PermWarningsWrite,
		PermWarningsWithdraw,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermReportsRead,
		PermAuditRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesTerminate,
		PermProjectsRead,
		PermProjectsWrite,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermAppraisalsReview,
		PermWarningsRead,
		PermWarningsWrite,
		PermWarningsWithdraw,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermReportsRead,
		PermAuditRead,
		PermSystemAdmin,
	},
}

func RoleHasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
