package project

import (
	"testing"
	"time"
)

func TestValidAllocation(t *testing.T) {
	for _, a := range []float64{0.5, 50, 100} {
		if !ValidAllocation(a) {
			t.Fatalf("allocation %v should be valid", a)
		}
	}
	for _, a := range []float64{0, -10, 100.1} {
		if ValidAllocation(a) {
			t.Fatalf("allocation %v should be invalid", a)
		}
	}
}

func TestProgressDerivation(t *testing.T) {
	if got := Progress(nil); got != nil {
		t.Fatalf("expected nil progress without tasks, got %v", *got)
	}

	tasks := []Task{
		{Status: TaskStatusDone},
		{Status: TaskStatusDone},
		{Status: TaskStatusInProgress},
		{Status: TaskStatusTodo},
	}
	got := Progress(tasks)
	if got == nil || *got != 50 {
		t.Fatalf("expected 50%%, got %v", got)
	}
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if got := DaysRemaining(nil, now); got != nil {
		t.Fatalf("expected nil without end date, got %v", *got)
	}

	end := now.AddDate(0, 0, 10)
	got := DaysRemaining(&end, now)
	if got == nil || *got != 10 {
		t.Fatalf("expected 10 days, got %v", got)
	}

	past := now.AddDate(0, 0, -3)
	got = DaysRemaining(&past, now)
	if got == nil || *got != 0 {
		t.Fatalf("expected 0 for past end date, got %v", got)
	}
}
