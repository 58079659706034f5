package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/AdityaCodess/FinStock-AI/services/artifacts"
	"github.com/AdityaCodess/FinStock-AI/services/statistics"
	"gorm.io/gorm"
)

// Training parameters
const (
	LongTermYears      = 5   // trailing window for the trend regression
	ShortTermDays      = 30  // trailing window for momentum
	TradingDaysPerYear = 252 // annualization factor for the daily slope
	historyYears       = 10  // how much history to request per symbol
)

// HistorySource provides daily bars for a symbol. Satisfied by
// datafetcher.DataFetcher.
type HistorySource interface {
	FetchHistory(ctx context.Context, symbol string, startDate, endDate *time.Time) ([]models.PriceBar, models.CompanyInfo, error)
}

// Trainer recomputes the scalar prediction artifacts from fresh
// history and persists them to the artifact store.
type Trainer struct {
	fetcher HistorySource
	store   *artifacts.Store
	db      *gorm.DB
}

// NewTrainer creates a trainer over the given history source, artifact
// store, and symbol directory.
func NewTrainer(fetcher HistorySource, store *artifacts.Store, db *gorm.DB) *Trainer {
	return &Trainer{fetcher: fetcher, store: store, db: db}
}

// Report summarizes one training run.
type Report struct {
	Trained int               `json:"trained"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// TrainSymbol fetches history for one symbol, derives both scalars, and
// saves them. Degenerate inputs (too little data, zero base price)
// train to 0.0 rather than failing.
func (t *Trainer) TrainSymbol(ctx context.Context, symbol string) (float64, float64, error) {
	start := time.Now().AddDate(-historyYears, 0, 0)
	bars, _, err := t.fetcher.FetchHistory(ctx, symbol, &start, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching training history for %s: %w", symbol, err)
	}

	points := statistics.Clean(bars)
	if len(points) == 0 {
		return 0, 0, fmt.Errorf("no usable training data for %s", symbol)
	}

	slope := annualizedSlope(points, LongTermYears)
	momentum := momentumPercent(points, ShortTermDays)

	if err := t.store.Save(symbol, artifacts.KindLongTerm, slope); err != nil {
		return 0, 0, err
	}
	if err := t.store.Save(symbol, artifacts.KindShortTerm, momentum); err != nil {
		return 0, 0, err
	}

	log.Printf("Trained %s: annualized slope %.2f, %d-day momentum %.2f%%",
		symbol, slope, ShortTermDays, momentum)
	return slope, momentum, nil
}

// TrainAll trains every active symbol in the directory, collecting
// per-symbol failures instead of aborting the run.
func (t *Trainer) TrainAll(ctx context.Context) (Report, error) {
	if t.db == nil {
		return Report{}, errors.New("symbol directory unavailable")
	}

	var stocks []models.Stock
	if err := t.db.Where("status = ?", "active").Find(&stocks).Error; err != nil {
		return Report{}, fmt.Errorf("loading symbol directory: %w", err)
	}

	report := Report{Failed: make(map[string]string)}
	for _, stock := range stocks {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, _, err := t.TrainSymbol(ctx, stock.Symbol); err != nil {
			log.Printf("Training failed for %s: %v", stock.Symbol, err)
			report.Failed[stock.Symbol] = err.Error()
			continue
		}
		report.Trained++
	}
	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	return report, nil
}

// annualizedSlope fits close against days-since-start by least squares
// over the trailing window and scales the daily slope to a yearly rate.
func annualizedSlope(points []models.PricePoint, years int) float64 {
	cutoff := points[len(points)-1].Date.AddDate(-years, 0, 0)
	var window []models.PricePoint
	for i, p := range points {
		if !p.Date.Before(cutoff) {
			window = points[i:]
			break
		}
	}
	if len(window) < 2 {
		return 0.0
	}

	origin := window[0].Date
	n := float64(len(window))
	var sumX, sumY float64
	xs := make([]float64, len(window))
	for i, p := range window {
		xs[i] = p.Date.Sub(origin).Hours() / 24
		sumX += xs[i]
		sumY += p.Close
	}
	meanX, meanY := sumX/n, sumY/n

	var covXY, varX float64
	for i, p := range window {
		dx := xs[i] - meanX
		covXY += dx * (p.Close - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return 0.0
	}

	return covXY / varX * TradingDaysPerYear
}

// momentumPercent is the percent change from the close days bars ago to
// the latest close.
func momentumPercent(points []models.PricePoint, days int) float64 {
	if len(points) < days {
		return 0.0
	}
	base := points[len(points)-days].Close
	latest := points[len(points)-1].Close
	if base == 0 {
		return 0.0
	}
	return (latest - base) / base * 100
}
