package appraisal

const (
	StatusDraft       = "draft"
	StatusInProgress  = "in_progress"
	StatusNeedsReview = "needs_review"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"

	MinRating = 1.0
	MaxRating = 5.0
)
