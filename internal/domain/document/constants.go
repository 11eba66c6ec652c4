package document

const (
	VerificationNone     = "none"
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"

	CategoryGeneral    = "general"
	CategoryOnboarding = "onboarding"
	CategoryContract   = "contract"
	CategoryWarning    = "warning_letter"
)

func ValidVerification(v string) bool {
	switch v {
	case VerificationNone, VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}
