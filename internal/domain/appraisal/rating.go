package appraisal

func clampRating(r float64) float64 {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// kpiRating scales goal attainment onto the rating scale: (actual/target)*5,
// capped at 5. KPIs without a positive target contribute nothing.
func kpiRating(k KPI) (float64, bool) {
	if k.Target <= 0 {
		return 0, false
	}
	r := (k.Actual / k.Target) * MaxRating
	if r > MaxRating {
		r = MaxRating
	}
	if r < 0 {
		r = 0
	}
	return r, true
}

// OverallRating derives the appraisal's overall rating. Manually set ratings
// win. Otherwise rated goals contribute their clamped rating weighted by
// weightage/100, and the KPI average fills any weight the rated goals left
// unused. Returns nil when there is nothing to rate.
func OverallRating(goals []Goal, manual *float64) *float64 {
	if manual != nil {
		r := clampRating(*manual)
		return &r
	}

	weightedSum := 0.0
	usedWeight := 0.0
	kpiSum := 0.0
	kpiCount := 0

	for _, g := range goals {
		if g.Rating != nil && g.Weightage > 0 {
			w := g.Weightage / 100
			weightedSum += clampRating(*g.Rating) * w
			usedWeight += w
		}
		for _, k := range g.KPIs {
			if r, ok := kpiRating(k); ok {
				kpiSum += r
				kpiCount++
			}
		}
	}

	denom := usedWeight
	score := weightedSum
	if kpiCount > 0 {
		unused := 1 - usedWeight
		if unused > 0 {
			kpiAvg := kpiSum / float64(kpiCount)
			score += kpiAvg * unused
			denom += unused
		}
	}

	if denom == 0 {
		return nil
	}
	result := score / denom
	return &result
}
