package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// YahooChartURL is the endpoint for daily historical candles
const YahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// DefaultHistoryYears is the trailing window used when no dates are given
const DefaultHistoryYears = 5

// ErrNoData is returned when the provider has no candles for the
// symbol/range. Controllers map it to 404.
var ErrNoData = errors.New("no historical data for symbol")

// DataFetcher fetches historical price data from Yahoo Finance and
// caches it into the local price table when the database is available.
type DataFetcher struct {
	db         *gorm.DB
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewDataFetcher creates a new data fetcher instance. The limiter keeps
// the unofficial API usage conservative: 30 requests per minute.
func NewDataFetcher(db *gorm.DB) *DataFetcher {
	return &DataFetcher{
		db: db,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

// chartResponse mirrors the Yahoo v8 chart payload. Close values come
// through as pointers because the API emits null for missing sessions.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string   `json:"symbol"`
				Currency             string   `json:"currency"`
				ExchangeName         string   `json:"exchangeName"`
				FullExchangeName     string   `json:"fullExchangeName"`
				ShortName            string   `json:"shortName"`
				LongName             string   `json:"longName"`
				RegularMarketPrice   *float64 `json:"regularMarketPrice"`
				RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
				ChartPreviousClose   *float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory fetches daily bars and company metadata for a symbol.
// Nil dates default to a trailing 5-year window ending today. Returns
// ErrNoData when the provider has nothing for the symbol/range.
func (df *DataFetcher) FetchHistory(ctx context.Context, symbol string, startDate, endDate *time.Time) ([]models.PriceBar, models.CompanyInfo, error) {
	end := time.Now()
	if endDate != nil {
		end = *endDate
	}
	start := end.AddDate(-DefaultHistoryYears, 0, 0)
	if startDate != nil {
		start = *startDate
	}

	if err := df.limiter.Wait(ctx); err != nil {
		return nil, models.CompanyInfo{}, err
	}

	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&includePrePost=false",
		YahooChartURL, symbol, start.Unix(), end.Unix())

	var payload chartResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

		resp, err := df.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNoData)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("provider status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("provider status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("decoding chart response: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, models.CompanyInfo{}, ErrNoData
		}
		return nil, models.CompanyInfo{}, fmt.Errorf("fetching history for %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, models.CompanyInfo{}, fmt.Errorf("%w: %s", ErrNoData, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Timestamp) == 0 {
		return nil, models.CompanyInfo{}, ErrNoData
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, models.CompanyInfo{}, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars = append(bars, models.PriceBar{
			Date:   time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:   deref(at(quote.Open, i)),
			High:   deref(at(quote.High, i)),
			Low:    deref(at(quote.Low, i)),
			Close:  deref(at(quote.Close, i)),
			Volume: derefInt(at(quote.Volume, i)),
		})
	}

	info := models.CompanyInfo{
		Symbol:        orDefault(result.Meta.Symbol, symbol),
		ShortName:     optString(result.Meta.ShortName),
		LongName:      optString(result.Meta.LongName),
		Exchange:      optString(result.Meta.FullExchangeName),
		Currency:      optString(result.Meta.Currency),
		CurrentPrice:  result.Meta.RegularMarketPrice,
		DayHigh:       result.Meta.RegularMarketDayHigh,
		DayLow:        result.Meta.RegularMarketDayLow,
		PreviousClose: result.Meta.ChartPreviousClose,
	}

	df.cacheBars(symbol, bars)

	return bars, info, nil
}

// cacheBars writes fetched bars into the local price table. Cache
// failures never fail the fetch.
func (df *DataFetcher) cacheBars(symbol string, bars []models.PriceBar) {
	if df.db == nil {
		return
	}

	var stock models.Stock
	if err := df.db.Where("symbol = ?", symbol).First(&stock).Error; err != nil {
		return // unknown symbols are analyzable but not cached
	}

	cached := 0
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil || math.IsNaN(bar.Close) {
			continue
		}

		var existing models.StockPrice
		err = df.db.Where("stock_id = ? AND date = ?", stock.ID, date).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Printf("Warning: price cache lookup failed for %s: %v", symbol, err)
			return
		}

		price := models.StockPrice{
			StockID: stock.ID,
			Date:    date,
			Open:    bar.Open,
			High:    bar.High,
			Low:     bar.Low,
			Close:   bar.Close,
			Volume:  bar.Volume,
		}
		if err := df.db.Create(&price).Error; err != nil {
			log.Printf("Warning: price cache write failed for %s: %v", symbol, err)
			return
		}
		cached++
	}

	if cached > 0 {
		log.Printf("Cached %d new price rows for %s", cached, symbol)
	}
}

func at[T any](values []*T, i int) *T {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// deref converts a missing close into NaN so the statistics engine's
// cleaning pass drops the row, same as a null in the provider feed.
func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func derefInt(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
