package project

import (
	"math"
	"time"
)

func ValidAllocation(allocation float64) bool {
	return allocation > 0 && allocation <= 100
}

// Progress derives completion from task counts; nil when there are no tasks.
func Progress(tasks []Task) *float64 {
	if len(tasks) == 0 {
		return nil
	}
	done := 0
	for _, t := range tasks {
		if t.Status == TaskStatusDone {
			done++
		}
	}
	p := float64(done) / float64(len(tasks)) * 100
	return &p
}

// DaysRemaining derives whole days until the end date; nil without one,
// never negative.
func DaysRemaining(endDate *time.Time, now time.Time) *int {
	if endDate == nil {
		return nil
	}
	days := int(math.Ceil(endDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// Derive fills the computed fields on a read snapshot.
func Derive(p *Project, now time.Time) {
	p.Progress = Progress(p.Tasks)
	p.DaysRemaining = DaysRemaining(p.EndDate, now)
}
