package appraisal

import "strings"

func CanSubmitSelfAssessment(status string) bool {
	return status == StatusDraft || status == StatusInProgress
}

func CanSubmitReview(status string) bool {
	return status == StatusInProgress || status == StatusNeedsReview
}

func ValidRating(rating float64) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ValidateCompletion checks the fields a completed appraisal must carry:
// a self-assessment, a review, and at least one goal.
func ValidateCompletion(a Appraisal) error {
	if strings.TrimSpace(a.SelfAssessment) == "" {
		return ErrPreconditionFailed
	}
	if strings.TrimSpace(a.Review) == "" {
		return ErrPreconditionFailed
	}
	if len(a.Goals) == 0 {
		return ErrPreconditionFailed
	}
	return nil
}
