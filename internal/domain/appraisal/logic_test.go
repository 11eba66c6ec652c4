package appraisal

import "testing"

func TestSelfAssessmentWindow(t *testing.T) {
	if !CanSubmitSelfAssessment(StatusDraft) || !CanSubmitSelfAssessment(StatusInProgress) {
		t.Fatal("self-assessment must be open from draft and in_progress")
	}
	for _, status := range []string{StatusNeedsReview, StatusCompleted, StatusCancelled} {
		if CanSubmitSelfAssessment(status) {
			t.Fatalf("self-assessment must be closed from %s", status)
		}
	}
}

func TestReviewWindow(t *testing.T) {
	if !CanSubmitReview(StatusInProgress) || !CanSubmitReview(StatusNeedsReview) {
		t.Fatal("review must be open from in_progress and needs_review")
	}
	for _, status := range []string{StatusDraft, StatusCompleted, StatusCancelled} {
		if CanSubmitReview(status) {
			t.Fatalf("review must be closed from %s", status)
		}
	}
}

func TestValidRatingBounds(t *testing.T) {
	for _, r := range []float64{1, 3.5, 5} {
		if !ValidRating(r) {
			t.Fatalf("rating %v should be valid", r)
		}
	}
	for _, r := range []float64{0, 0.99, 5.01, -1} {
		if ValidRating(r) {
			t.Fatalf("rating %v should be invalid", r)
		}
	}
}

func TestValidateCompletion(t *testing.T) {
	complete := Appraisal{
		SelfAssessment: "covered my goals",
		Review:         "solid year",
		Goals:          []Goal{{Title: "ship the thing", Weightage: 100}},
	}
	if err := ValidateCompletion(complete); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missingSelf := complete
	missingSelf.SelfAssessment = "  "
	if err := ValidateCompletion(missingSelf); err != ErrPreconditionFailed {
		t.Fatalf("expected ErrPreconditionFailed for missing self-assessment, got %v", err)
	}

	missingReview := complete
	missingReview.Review = ""
	if err := ValidateCompletion(missingReview); err != ErrPreconditionFailed {
		t.Fatalf("expected ErrPreconditionFailed for missing review, got %v", err)
	}

	noGoals := complete
	noGoals.Goals = nil
	if err := ValidateCompletion(noGoals); err != ErrPreconditionFailed {
		t.Fatalf("expected ErrPreconditionFailed for missing goals, got %v", err)
	}
}
