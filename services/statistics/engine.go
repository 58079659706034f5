package statistics

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
)

// ErrInvalidInput is returned when a series has no usable rows left
// after cleaning. Controllers map it to a client-visible error.
var ErrInvalidInput = errors.New("no valid price data after cleaning")

// date layouts accepted on the raw bars, tried in order
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Compute cleans the given bars and produces the full statistics result
// plus the percent daily-return sequence (finite values only, rounded
// to 4 decimal places). It is pure and safe for concurrent use.
func Compute(bars []models.PriceBar) (*models.Statistics, []float64, error) {
	points := Clean(bars)
	if len(points) == 0 {
		return nil, nil, ErrInvalidInput
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	n := float64(len(closes))
	mean := sum(closes) / n
	variance := sampleVariance(closes, mean)
	std := math.Sqrt(variance)
	min, max := minMax(closes)

	sorted := append([]float64(nil), closes...)
	sort.Float64s(sorted)
	p25 := percentile(sorted, 25)
	p50 := percentile(sorted, 50)
	p75 := percentile(sorted, 75)

	coeffVar := 0.0
	if mean != 0 {
		coeffVar = (std / mean) * 100
	}

	returns := dailyReturns(closes)
	probUp := 0.0
	meanRet := 0.0
	stdRet := 0.0
	if len(returns) > 0 {
		up := 0
		for _, r := range returns {
			if r > 0 {
				up++
			}
		}
		probUp = float64(up) / float64(len(returns)) * 100
		rMean := sum(returns) / float64(len(returns))
		meanRet = rMean * 100
		stdRet = math.Sqrt(sampleVariance(returns, rMean)) * 100
	}

	adv := ComputeAdvanced(returns)

	startDate := points[0].Date.Format("2006-01-02")
	endDate := points[len(points)-1].Date.Format("2006-01-02")

	result := &models.Statistics{
		StartDate:                &startDate,
		EndDate:                  &endDate,
		Mean:                     finite(mean),
		Median:                   finite(p50),
		Mode:                     finite(mode(closes)),
		StdDeviation:             finite(std),
		Variance:                 finite(variance),
		Skewness:                 finite(sampleSkewness(closes, mean)),
		Kurtosis:                 finite(sampleKurtosis(closes, mean)),
		Range:                    finite(max - min),
		IQR:                      finite(p75 - p25),
		Min:                      finite(min),
		Max:                      finite(max),
		Percentile25:             finite(p25),
		Percentile50:             finite(p50),
		Percentile75:             finite(p75),
		CoeffOfVariation:         finite(coeffVar),
		ProbabilityNextDayUp:     finite(probUp),
		ProbabilityNextDayDown:   adv.ProbDownDay,
		MeanDailyReturnPercent:   finite(meanRet),
		StdDevDailyReturnPercent: finite(stdRet),
		CondProbUpGivenUp:        adv.CondProbUpGivenUp,
		CondProbDownGivenDown:    adv.CondProbDownGivenDown,
		Prob2DaysUpStreak:        adv.Prob2DaysUpStreak,
		Prob2DaysDownStreak:      adv.Prob2DaysDownStreak,
	}

	histogram := make([]float64, 0, len(returns))
	for _, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		histogram = append(histogram, math.Round(r*100*1e4)/1e4)
	}

	return result, histogram, nil
}

// Clean coerces dates and closes, dropping rows that fail to parse,
// then sorts by date and drops duplicate dates keeping the first bar.
// Calling it on already-clean data is a no-op.
func Clean(bars []models.PriceBar) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(bars))
	for _, bar := range bars {
		date, ok := parseDate(bar.Date)
		if !ok {
			continue
		}
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
			continue
		}
		points = append(points, models.PricePoint{
			Date:   date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	deduped := points[:0]
	for i, p := range points {
		if i > 0 && p.Date.Equal(points[i-1].Date) {
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// normalize to the calendar date, discarding any time part
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// dailyReturns computes simple returns close[i]/close[i-1] - 1 for
// i >= 1. The first observation has no return and is excluded. A 0/0
// division yields NaN and is dropped; a nonzero/0 division yields Inf
// and is kept, matching the upstream cleaning semantics.
func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		r := closes[i]/closes[i-1] - 1
		if math.IsNaN(r) {
			continue
		}
		returns = append(returns, r)
	}
	return returns
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// sampleVariance uses the N-1 denominator. NaN for a single value.
func sampleVariance(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(n-1)
}

// percentile interpolates linearly between closest ranks on a sorted
// slice, the conventional definition.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	frac := rank - float64(lower)
	if lower+1 >= n {
		return sorted[n-1]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// mode returns the most frequent value; ties resolve to the smallest
// value so the result is deterministic.
func mode(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := math.NaN()
	bestCount := 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best = v
			bestCount = c
		}
	}
	return best
}

// centralMoment computes the k-th central moment with the 1/N divisor.
func centralMoment(values []float64, mean float64, k int) float64 {
	var total float64
	for _, v := range values {
		total += math.Pow(v-mean, float64(k))
	}
	return total / float64(len(values))
}

// sampleSkewness is the adjusted Fisher-Pearson (G1) estimator. NaN for
// fewer than 3 values, 0 for a zero-variance series.
func sampleSkewness(values []float64, mean float64) float64 {
	n := float64(len(values))
	if n < 3 {
		return math.NaN()
	}
	m2 := centralMoment(values, mean, 2)
	if m2 == 0 {
		return 0
	}
	m3 := centralMoment(values, mean, 3)
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleKurtosis is the adjusted excess kurtosis (G2) estimator from
// the same family. NaN for fewer than 4 values, 0 for a zero-variance
// series.
func sampleKurtosis(values []float64, mean float64) float64 {
	n := float64(len(values))
	if n < 4 {
		return math.NaN()
	}
	m2 := centralMoment(values, mean, 2)
	if m2 == 0 {
		return 0
	}
	m4 := centralMoment(values, mean, 4)
	g2 := m4/(m2*m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// finite converts NaN and ±Inf to nil so they never leave the engine.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
