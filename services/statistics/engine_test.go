package statistics

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
)

func bars(dates []string, closes []float64) []models.PriceBar {
	out := make([]models.PriceBar, len(dates))
	for i := range dates {
		out[i] = models.PriceBar{Date: dates[i], Close: closes[i]}
	}
	return out
}

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want %v", name, want)
	}
	if math.Abs(*got-want) > 1e-4 {
		t.Errorf("%s: got %v, want %v", name, *got, want)
	}
}

func TestCompute_ReferenceSeries(t *testing.T) {
	series := bars(
		[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
		[]float64{100, 102, 101, 101, 105},
	)

	stats, returns, err := Compute(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantReturns := []float64{2.0, -0.9804, 0.0, 3.9604}
	if !reflect.DeepEqual(returns, wantReturns) {
		t.Errorf("returns: got %v, want %v", returns, wantReturns)
	}

	approx(t, "mean", stats.Mean, 101.8)
	approx(t, "median", stats.Median, 101)
	approx(t, "mode", stats.Mode, 101)
	approx(t, "variance", stats.Variance, 3.7)
	approx(t, "std_deviation", stats.StdDeviation, math.Sqrt(3.7))
	approx(t, "min", stats.Min, 100)
	approx(t, "max", stats.Max, 105)
	approx(t, "range", stats.Range, 5)
	approx(t, "25_percentile", stats.Percentile25, 101)
	approx(t, "50_percentile", stats.Percentile50, 101)
	approx(t, "75_percentile", stats.Percentile75, 102)
	approx(t, "iqr", stats.IQR, 1)
	approx(t, "skewness", stats.Skewness, 1.5175)
	approx(t, "kurtosis", stats.Kurtosis, 2.6077)

	// 2 of the 4 returns are positive, 1 is negative.
	approx(t, "probability_next_day_up", stats.ProbabilityNextDayUp, 50)
	approx(t, "probability_next_day_down", stats.ProbabilityNextDayDown, 25)

	// Hand-counted: was_up once (followed by a down day), was_down once
	// (followed by a flat day), 3 valid comparisons, no streaks.
	approx(t, "cond_prob_up_given_up", stats.CondProbUpGivenUp, 0)
	approx(t, "cond_prob_down_given_down", stats.CondProbDownGivenDown, 0)
	approx(t, "prob_2_days_up_streak", stats.Prob2DaysUpStreak, 0)
	approx(t, "prob_2_days_down_streak", stats.Prob2DaysDownStreak, 0)

	if *stats.StartDate != "2024-01-01" || *stats.EndDate != "2024-01-05" {
		t.Errorf("dates: got %v..%v", *stats.StartDate, *stats.EndDate)
	}
}

func TestCompute_EmptyAndUnusable(t *testing.T) {
	if _, _, err := Compute(nil); err != ErrInvalidInput {
		t.Errorf("nil input: got %v, want ErrInvalidInput", err)
	}

	junk := []models.PriceBar{
		{Date: "not a date", Close: 100},
		{Date: "2024-01-02", Close: math.NaN()},
		{Date: "2024-01-03", Close: math.Inf(1)},
	}
	if _, _, err := Compute(junk); err != ErrInvalidInput {
		t.Errorf("junk input: got %v, want ErrInvalidInput", err)
	}
}

func TestCompute_DropsBadRowsKeepsGood(t *testing.T) {
	series := []models.PriceBar{
		{Date: "2024-01-01", Close: 100},
		{Date: "garbage", Close: 200},
		{Date: "2024-01-02", Close: math.NaN()},
		{Date: "2024-01-03", Close: 110},
	}
	stats, returns, err := Compute(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(returns) != 1 {
		t.Fatalf("returns: got %d, want 1", len(returns))
	}
	approx(t, "mean", stats.Mean, 105)
	if *stats.EndDate != "2024-01-03" {
		t.Errorf("end_date: got %v", *stats.EndDate)
	}
}

func TestCompute_SingleDay(t *testing.T) {
	stats, returns, err := Compute(bars([]string{"2024-01-01"}, []float64{100}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(returns) != 0 {
		t.Errorf("returns: got %v, want empty", returns)
	}
	approx(t, "probability_next_day_up", stats.ProbabilityNextDayUp, 0)
	if stats.ProbabilityNextDayDown != nil {
		t.Errorf("probability_next_day_down: got %v, want nil", *stats.ProbabilityNextDayDown)
	}
	if stats.CondProbUpGivenUp != nil {
		t.Errorf("cond_prob_up_given_up: got %v, want nil", *stats.CondProbUpGivenUp)
	}
	// A lone observation has no sample deviation.
	if stats.StdDeviation != nil {
		t.Errorf("std_deviation: got %v, want nil", *stats.StdDeviation)
	}
	if stats.Variance != nil {
		t.Errorf("variance: got %v, want nil", *stats.Variance)
	}
	if stats.Skewness != nil || stats.Kurtosis != nil {
		t.Error("skewness/kurtosis should be nil for a single observation")
	}
}

func TestCompute_ModeTieBreak(t *testing.T) {
	stats, _, err := Compute(bars(
		[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		[]float64{1, 1, 2, 2},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "mode", stats.Mode, 1)
}

func TestCompute_ConstantSeries(t *testing.T) {
	stats, _, err := Compute(bars(
		[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		[]float64{50, 50, 50, 50},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "variance", stats.Variance, 0)
	approx(t, "skewness", stats.Skewness, 0)
	approx(t, "kurtosis", stats.Kurtosis, 0)
	approx(t, "probability_next_day_up", stats.ProbabilityNextDayUp, 0)
	approx(t, "probability_next_day_down", stats.ProbabilityNextDayDown, 0)
}

func TestCompute_Determinism(t *testing.T) {
	series := bars(
		[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
		[]float64{100, 102, 101, 101, 105},
	)
	first, firstReturns, err := Compute(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, againReturns, err := Compute(series)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) || !reflect.DeepEqual(firstReturns, againReturns) {
			t.Fatal("identical input produced different results")
		}
	}
}

// Randomized series must never leak NaN or Infinity through any field.
func TestCompute_AllFieldsFiniteOrNil(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(200)
		dates := make([]string, n)
		closes := make([]float64, n)
		day := 0
		for i := 0; i < n; i++ {
			day += 1 + rng.Intn(3)
			dates[i] = time2date(day)
			closes[i] = rng.Float64() * 5000
		}

		stats, returns, err := Compute(bars(dates, closes))
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}

		v := reflect.ValueOf(*stats)
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.Kind() != reflect.Ptr || field.IsNil() {
				continue
			}
			if field.Elem().Kind() != reflect.Float64 {
				continue
			}
			f := field.Elem().Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				t.Fatalf("trial %d: field %s is %v", trial, v.Type().Field(i).Name, f)
			}
		}
		for _, r := range returns {
			if math.IsNaN(r) || math.IsInf(r, 0) {
				t.Fatalf("trial %d: non-finite return %v", trial, r)
			}
		}

		// Structural identities hold for every input.
		if *stats.Range != *stats.Max-*stats.Min {
			t.Fatalf("trial %d: range != max-min", trial)
		}
		if *stats.IQR != *stats.Percentile75-*stats.Percentile25 {
			t.Fatalf("trial %d: iqr != p75-p25", trial)
		}
	}
}

// Up and down probabilities do not have to sum to 100: flat days count
// in neither numerator.
func TestCompute_UpDownDoNotSumTo100(t *testing.T) {
	stats, _, err := Compute(bars(
		[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		[]float64{100, 102, 102, 101},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := *stats.ProbabilityNextDayUp + *stats.ProbabilityNextDayDown
	if math.Abs(total-100) < 1e-9 {
		t.Errorf("up+down = %v; flat days must keep the sum below 100", total)
	}
}

func TestCompute_DuplicateAndUnorderedDates(t *testing.T) {
	series := []models.PriceBar{
		{Date: "2024-01-03", Close: 110},
		{Date: "2024-01-01", Close: 100},
		{Date: "2024-01-01", Close: 999},
		{Date: "2024-01-02", Close: 105},
	}
	stats, returns, err := Compute(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(returns) != 2 {
		t.Fatalf("returns: got %d, want 2", len(returns))
	}
	if *stats.StartDate != "2024-01-01" || *stats.EndDate != "2024-01-03" {
		t.Errorf("dates: got %v..%v", *stats.StartDate, *stats.EndDate)
	}
	// The first bar for a duplicated date wins, in date order.
	approx(t, "min", stats.Min, 100)
}

func TestClean_TimestampedBarsKeepCalendarDate(t *testing.T) {
	series := []models.PriceBar{
		{Date: "2024-01-02", Close: 100},
		// 01:00 local on Jan 3 is still Jan 2 in UTC; the quoted
		// calendar date must win over the absolute instant.
		{Date: "2024-01-03T01:00:00+05:30", Close: 105},
		{Date: "2024-01-03", Close: 999},
	}

	points := Clean(series)
	if len(points) != 2 {
		t.Fatalf("points: got %d, want 2", len(points))
	}
	if got := points[1].Date.Format("2006-01-02"); got != "2024-01-03" {
		t.Errorf("timestamped bar date: got %s, want 2024-01-03", got)
	}
	// The timestamped bar and the plain bar share a calendar date, so
	// the first one in date order wins the dedupe.
	if points[1].Close != 105 {
		t.Errorf("deduped close: got %v, want 105", points[1].Close)
	}
}

func time2date(day int) string {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day).Format("2006-01-02")
}
