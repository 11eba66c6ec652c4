package appraisal

import (
	"math"
	"testing"
)

func ratingOf(v float64) *float64 {
	return &v
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestOverallRatingNilWithoutInputs(t *testing.T) {
	if got := OverallRating(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", *got)
	}
	goals := []Goal{{Title: "unrated", Weightage: 50}}
	if got := OverallRating(goals, nil); got != nil {
		t.Fatalf("expected nil for unrated goals, got %v", *got)
	}
}

func TestOverallRatingManualOverride(t *testing.T) {
	goals := []Goal{{Title: "g", Weightage: 100, Rating: ratingOf(2)}}
	got := OverallRating(goals, ratingOf(4.5))
	if got == nil || *got != 4.5 {
		t.Fatalf("expected manual 4.5, got %v", got)
	}

	// Manual ratings are clamped to the scale.
	got = OverallRating(nil, ratingOf(9))
	if got == nil || *got != 5 {
		t.Fatalf("expected clamp to 5, got %v", got)
	}
}

func TestOverallRatingWeightedAverage(t *testing.T) {
	goals := []Goal{
		{Title: "a", Weightage: 60, Rating: ratingOf(4)},
		{Title: "b", Weightage: 40, Rating: ratingOf(3)},
	}
	got := OverallRating(goals, nil)
	if got == nil || !almostEqual(*got, 3.6) {
		t.Fatalf("expected 3.6, got %v", got)
	}
}

func TestOverallRatingClampsGoalRatings(t *testing.T) {
	goals := []Goal{{Title: "a", Weightage: 100, Rating: ratingOf(7)}}
	got := OverallRating(goals, nil)
	if got == nil || *got != 5 {
		t.Fatalf("expected clamped 5, got %v", got)
	}
}

func TestOverallRatingKPIOnly(t *testing.T) {
	goals := []Goal{{
		Title:     "sales",
		Weightage: 0,
		KPIs: []KPI{
			{Name: "revenue", Target: 100, Actual: 80}, // 4.0
			{Name: "deals", Target: 10, Actual: 10},    // 5.0
		},
	}}
	got := OverallRating(goals, nil)
	if got == nil || !almostEqual(*got, 4.5) {
		t.Fatalf("expected 4.5, got %v", got)
	}
}

func TestOverallRatingKPICappedAtFive(t *testing.T) {
	goals := []Goal{{KPIs: []KPI{{Name: "over", Target: 10, Actual: 30}}}}
	got := OverallRating(goals, nil)
	if got == nil || *got != 5 {
		t.Fatalf("expected cap at 5, got %v", got)
	}
}

func TestOverallRatingKPIFillsUnusedWeight(t *testing.T) {
	// Rated goal covers 50% at 4.0; KPIs average 2.0 and fill the other 50%.
	goals := []Goal{
		{Title: "a", Weightage: 50, Rating: ratingOf(4)},
		{Title: "b", KPIs: []KPI{{Name: "k", Target: 10, Actual: 4}}},
	}
	got := OverallRating(goals, nil)
	if got == nil || !almostEqual(*got, 3.0) {
		t.Fatalf("expected 3.0, got %v", got)
	}
}

func TestOverallRatingFullWeightIgnoresKPIs(t *testing.T) {
	// With 100% of weight already rated, KPIs have no room to contribute.
	goals := []Goal{
		{Title: "a", Weightage: 100, Rating: ratingOf(3)},
		{Title: "b", KPIs: []KPI{{Name: "k", Target: 10, Actual: 10}}},
	}
	got := OverallRating(goals, nil)
	if got == nil || !almostEqual(*got, 3.0) {
		t.Fatalf("expected 3.0, got %v", got)
	}
}

func TestKPIWithoutTargetIgnored(t *testing.T) {
	goals := []Goal{{KPIs: []KPI{{Name: "broken", Target: 0, Actual: 10}}}}
	if got := OverallRating(goals, nil); got != nil {
		t.Fatalf("expected nil, got %v", *got)
	}
}
