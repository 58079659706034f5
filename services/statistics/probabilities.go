package statistics

import (
	"math"

	"github.com/AdityaCodess/FinStock-AI/models"
)

// ComputeAdvanced derives conditional and streak probabilities from a
// daily-return sequence. Conditional and streak stats compare each
// return against the previous day's return, so the first return (which
// has no predecessor) is excluded from their denominators. The
// unconditional down-day probability is intentionally computed over the
// entire sequence instead; callers rely on that asymmetry.
func ComputeAdvanced(returns []float64) models.AdvancedProbabilities {
	if len(returns) == 0 {
		return models.AdvancedProbabilities{}
	}
	if len(returns) < 2 {
		return models.AdvancedProbabilities{ProbDownDay: probDown(returns)}
	}

	var (
		totalValid    int
		totalWasUp    int
		totalWasDown  int
		upGivenUp     int
		downGivenDown int
	)
	for i := 1; i < len(returns); i++ {
		r, prev := returns[i], returns[i-1]
		if math.IsNaN(r) || math.IsNaN(prev) {
			continue
		}
		totalValid++
		if prev > 0 {
			totalWasUp++
			if r > 0 {
				upGivenUp++
			}
		}
		if prev < 0 {
			totalWasDown++
			if r < 0 {
				downGivenDown++
			}
		}
	}

	if totalValid == 0 {
		return models.AdvancedProbabilities{ProbDownDay: probDown(returns)}
	}

	condUp := 0.0
	if totalWasUp > 0 {
		condUp = float64(upGivenUp) / float64(totalWasUp) * 100
	}
	condDown := 0.0
	if totalWasDown > 0 {
		condDown = float64(downGivenDown) / float64(totalWasDown) * 100
	}
	streakUp := float64(upGivenUp) / float64(totalValid) * 100
	streakDown := float64(downGivenDown) / float64(totalValid) * 100

	return models.AdvancedProbabilities{
		ProbDownDay:           probDown(returns),
		CondProbUpGivenUp:     &condUp,
		CondProbDownGivenDown: &condDown,
		Prob2DaysUpStreak:     &streakUp,
		Prob2DaysDownStreak:   &streakDown,
	}
}

// probDown is the unconditional down-day fraction over the whole
// sequence, as a percentage.
func probDown(returns []float64) *float64 {
	if len(returns) == 0 {
		return nil
	}
	down := 0
	for _, r := range returns {
		if r < 0 {
			down++
		}
	}
	p := float64(down) / float64(len(returns)) * 100
	return &p
}
