package employee

import "testing"

func TestTransitionsFromOnboarding(t *testing.T) {
	if !CanTransition(StatusOnboarding, StatusActive) {
		t.Fatal("onboarding must reach active")
	}
	if CanTransition(StatusOnboarding, StatusOnLeave) {
		t.Fatal("onboarding must not reach on_leave directly")
	}
	if CanTransition(StatusOnboarding, StatusInactive) {
		t.Fatal("onboarding must not reach inactive directly")
	}
}

func TestTerminationReachableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []string{StatusOnboarding, StatusActive, StatusOnLeave, StatusInactive} {
		if !CanTransition(from, StatusTerminated) {
			t.Fatalf("%s must reach terminated", from)
		}
	}
}

func TestTerminatedIsTerminal(t *testing.T) {
	for _, to := range []string{StatusOnboarding, StatusActive, StatusOnLeave, StatusInactive, StatusTerminated} {
		if CanTransition(StatusTerminated, to) {
			t.Fatalf("terminated must not reach %s", to)
		}
	}
	if !Terminal(StatusTerminated) {
		t.Fatal("terminated must be terminal")
	}
	if Terminal(StatusActive) {
		t.Fatal("active is not terminal")
	}
}

func TestReturnFromLeave(t *testing.T) {
	if !CanTransition(StatusOnLeave, StatusActive) {
		t.Fatal("on_leave must return to active")
	}
	if !CanTransition(StatusInactive, StatusActive) {
		t.Fatal("inactive must be reinstatable to active")
	}
}

func TestValidateTransitionErrors(t *testing.T) {
	if err := ValidateTransition(StatusActive, "retired"); err != ErrValidation {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
	if err := ValidateTransition(StatusTerminated, StatusActive); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := ValidateTransition(StatusActive, StatusOnLeave); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
