package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/AdityaCodess/FinStock-AI/services/datafetcher"
	"github.com/AdityaCodess/FinStock-AI/services/news"
	"github.com/AdityaCodess/FinStock-AI/services/prediction"
	"github.com/AdityaCodess/FinStock-AI/services/statistics"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AnalysisController serves the dashboard endpoints: symbol search and
// the full analysis payload for one symbol.
type AnalysisController struct {
	db        *gorm.DB
	fetcher   *datafetcher.DataFetcher
	predictor *prediction.Predictor
	news      *news.Service
}

// NewAnalysisController creates a new analysis controller
func NewAnalysisController(db *gorm.DB, fetcher *datafetcher.DataFetcher, predictor *prediction.Predictor, newsService *news.Service) *AnalysisController {
	return &AnalysisController{
		db:        db,
		fetcher:   fetcher,
		predictor: predictor,
		news:      newsService,
	}
}

// Search looks up symbols by substring on symbol or name
// GET /api/search?q=
func (ac *AnalysisController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query must be at least 2 characters"})
		return
	}

	var stocks []models.Stock
	pattern := "%" + query + "%"
	err := ac.db.Where("symbol ILIKE ? OR name ILIKE ?", pattern, pattern).
		Order("symbol ASC").
		Limit(10).
		Find(&stocks).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	results := make([]models.SearchResult, 0, len(stocks))
	for _, stock := range stocks {
		results = append(results, models.SearchResult{Symbol: stock.Symbol, Name: stock.Name})
	}

	c.JSON(http.StatusOK, results)
}

// Analyze produces the full analysis payload for one symbol
// GET /api/analyze?symbol=&start_date=&end_date=
func (ac *AnalysisController) Analyze(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol is required"})
		return
	}

	startDate, ok := parseDateParam(c, "start_date")
	if !ok {
		return
	}
	endDate, ok := parseDateParam(c, "end_date")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	bars, info, err := ac.fetcher.FetchHistory(ctx, symbol, startDate, endDate)
	if err != nil {
		if errors.Is(err, datafetcher.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No data found for symbol " + symbol})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch market data"})
		return
	}

	stats, histogram, err := statistics.Compute(bars)
	if err != nil {
		if errors.Is(err, statistics.ErrInvalidInput) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No usable price data for symbol " + symbol})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	points := statistics.Clean(bars)
	ac.fillQuote(&info, points)

	latestClose := points[len(points)-1].Close
	predictions := models.AIPredictions{
		LongTerm:  ac.predictor.LongTerm(symbol, latestClose),
		ShortTerm: ac.predictor.ShortTerm(symbol),
		Intraday:  ac.predictor.Intraday(symbol),
	}

	companyName := symbol
	if info.ShortName != nil && *info.ShortName != "" {
		companyName = *info.ShortName
	}
	sentiment := models.NewsSentiment{
		StockNews:    ac.news.StockNews(ctx, symbol, companyName),
		GlobalMarket: ac.news.GlobalMarket(ctx),
	}

	historical := make([]models.HistoricalDataPoint, 0, len(points))
	for _, p := range points {
		historical = append(historical, models.HistoricalDataPoint{
			Date:  p.Date.Format("2006-01-02"),
			Close: p.Close,
		})
	}

	c.JSON(http.StatusOK, models.AnalysisResponse{
		StockInfo:            info,
		Statistics:           *stats,
		AIPredictions:        predictions,
		NewsSentiment:        sentiment,
		HistoricalData:       historical,
		DailyReturnHistogram: histogram,
	})
}

// fillQuote backfills quote fields the provider left empty from the
// cleaned series and the symbol directory.
func (ac *AnalysisController) fillQuote(info *models.CompanyInfo, points []models.PricePoint) {
	if len(points) > 0 {
		last := points[len(points)-1]
		if info.CurrentPrice == nil {
			price := last.Close
			info.CurrentPrice = &price
		}
		if info.DayHigh == nil && last.High > 0 {
			high := last.High
			info.DayHigh = &high
		}
		if info.DayLow == nil && last.Low > 0 {
			low := last.Low
			info.DayLow = &low
		}
		if info.PreviousClose == nil && len(points) > 1 {
			prev := points[len(points)-2].Close
			info.PreviousClose = &prev
		}
	}

	if info.Sector == nil && ac.db != nil {
		var stock models.Stock
		if err := ac.db.Where("symbol = ?", info.Symbol).First(&stock).Error; err == nil && stock.Sector != "" {
			sector := stock.Sector
			info.Sector = &sector
		}
	}
}

// parseDateParam parses an optional YYYY-MM-DD query parameter. A
// malformed value writes a 400 response and returns ok=false.
func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format, expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}
