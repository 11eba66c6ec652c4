package warning

import (
	"testing"
	"time"
)

func TestExpiredIsReadTimeOnly(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Warning{
		Status:     StatusActive,
		DateIssued: now.AddDate(0, -6, 0),
		ValidUntil: now.AddDate(0, -1, 0),
	}

	if !w.Expired(now) {
		t.Fatal("warning past validUntil must read as expired")
	}
	if w.Status != StatusActive {
		t.Fatal("stored status must not change with time")
	}
	if w.Expired(now.AddDate(0, -2, 0)) {
		t.Fatal("warning must not read expired before validUntil")
	}
}

func TestResolvedNeverExpires(t *testing.T) {
	now := time.Now()
	w := Warning{Status: StatusResolved, ValidUntil: now.AddDate(0, -1, 0)}
	if w.Expired(now) {
		t.Fatal("expiry only applies to active warnings")
	}
}

func TestValidSeverity(t *testing.T) {
	for _, s := range []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !ValidSeverity(s) {
			t.Fatalf("severity %s should be valid", s)
		}
	}
	if ValidSeverity("severe") {
		t.Fatal("unknown severity accepted")
	}
}
