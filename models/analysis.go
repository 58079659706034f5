package models

import "time"

// PriceBar is one raw daily bar as delivered by the market-data provider.
// Date is kept as a string and Close may be NaN; the statistics engine
// owns cleaning, so bars go in unvalidated.
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PricePoint is a cleaned bar with a parsed trading date.
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// CompanyInfo holds provider metadata for a symbol.
// JSON keys match what the dashboard frontend already consumes.
type CompanyInfo struct {
	Symbol        string   `json:"symbol"`
	ShortName     *string  `json:"shortName"`
	LongName      *string  `json:"longName"`
	Sector        *string  `json:"sector"`
	Industry      *string  `json:"industry"`
	Exchange      *string  `json:"exchange"`
	Currency      *string  `json:"currency"`
	MarketCap     *float64 `json:"marketCap"`
	CurrentPrice  *float64 `json:"currentPrice"`
	DayHigh       *float64 `json:"dayHigh"`
	DayLow        *float64 `json:"dayLow"`
	PreviousClose *float64 `json:"previousClose"`
}

// Statistics is the flat result of the statistics engine. Every numeric
// field is either a finite number or null, never NaN or Infinity.
type Statistics struct {
	StartDate                *string  `json:"start_date"`
	EndDate                  *string  `json:"end_date"`
	Mean                     *float64 `json:"mean"`
	Median                   *float64 `json:"median"`
	Mode                     *float64 `json:"mode"`
	StdDeviation             *float64 `json:"std_deviation"`
	Variance                 *float64 `json:"variance"`
	Skewness                 *float64 `json:"skewness"`
	Kurtosis                 *float64 `json:"kurtosis"`
	Range                    *float64 `json:"range"`
	IQR                      *float64 `json:"iqr"`
	Min                      *float64 `json:"min"`
	Max                      *float64 `json:"max"`
	Percentile25             *float64 `json:"25_percentile"`
	Percentile50             *float64 `json:"50_percentile"`
	Percentile75             *float64 `json:"75_percentile"`
	CoeffOfVariation         *float64 `json:"coeff_of_variation"`
	ProbabilityNextDayUp     *float64 `json:"probability_next_day_up"`
	ProbabilityNextDayDown   *float64 `json:"probability_next_day_down"`
	MeanDailyReturnPercent   *float64 `json:"mean_daily_return_percent"`
	StdDevDailyReturnPercent *float64 `json:"std_dev_daily_return_percent"`
	CondProbUpGivenUp        *float64 `json:"cond_prob_up_given_up"`
	CondProbDownGivenDown    *float64 `json:"cond_prob_down_given_down"`
	Prob2DaysUpStreak        *float64 `json:"prob_2_days_up_streak"`
	Prob2DaysDownStreak      *float64 `json:"prob_2_days_down_streak"`
}

// AdvancedProbabilities holds the conditional and streak probabilities
// derived from the daily-return sequence. Percentages in [0,100], nil
// when there is not enough data.
type AdvancedProbabilities struct {
	ProbDownDay           *float64 `json:"prob_down_day"`
	CondProbUpGivenUp     *float64 `json:"cond_prob_up_given_up"`
	CondProbDownGivenDown *float64 `json:"cond_prob_down_given_down"`
	Prob2DaysUpStreak     *float64 `json:"prob_2_days_up_streak"`
	Prob2DaysDownStreak   *float64 `json:"prob_2_days_down_streak"`
}

// LongTermPrediction is the trend-rule output for the 1-year horizon.
type LongTermPrediction struct {
	Forecast1Y     *float64 `json:"forecast_1y"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
}

// ShortTermPrediction is the momentum-rule output for the 7-day horizon.
type ShortTermPrediction struct {
	Forecast7DPercent *float64 `json:"forecast_7d_percent"`
	Recommendation    string   `json:"recommendation"`
	Confidence        float64  `json:"confidence"`
}

// IntradayPrediction is the synthetic record pushed over the live feed.
type IntradayPrediction struct {
	LastUpdated         string  `json:"last_updated"`
	SimilarPatternFound string  `json:"similar_pattern_found"`
	Prediction          string  `json:"prediction"`
	Probability         float64 `json:"probability"`
}

// AIPredictions groups the three prediction horizons.
type AIPredictions struct {
	LongTerm  LongTermPrediction  `json:"long_term"`
	ShortTerm ShortTermPrediction `json:"short_term"`
	Intraday  IntradayPrediction  `json:"intraday"`
}

// NewsArticle is one scored headline.
type NewsArticle struct {
	Source         string   `json:"source"`
	Headline       string   `json:"headline"`
	SentimentScore *float64 `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
}

// StockNewsSentiment is symbol-relevant news with an aggregate label.
type StockNewsSentiment struct {
	Articles         []NewsArticle `json:"articles"`
	OverallSentiment string        `json:"overall_sentiment"`
}

// GlobalMarketSentiment is the market-wide news summary.
type GlobalMarketSentiment struct {
	OverallMarketSentiment string   `json:"overall_market_sentiment"`
	TrendingTopic          string   `json:"trending_topic"`
	KeyHeadlines           []string `json:"key_headlines"`
}

// NewsSentiment groups stock and market news.
type NewsSentiment struct {
	StockNews    StockNewsSentiment    `json:"stock_news"`
	GlobalMarket GlobalMarketSentiment `json:"global_market"`
}

// HistoricalDataPoint is one chart point.
type HistoricalDataPoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// AnalysisResponse is the full /api/analyze payload.
type AnalysisResponse struct {
	StockInfo            CompanyInfo           `json:"stock_info"`
	Statistics           Statistics            `json:"statistics"`
	AIPredictions        AIPredictions         `json:"ai_predictions"`
	NewsSentiment        NewsSentiment         `json:"news_sentiment"`
	HistoricalData       []HistoricalDataPoint `json:"historical_data"`
	DailyReturnHistogram []float64             `json:"daily_returns_histogram"`
}

// SearchResult is one symbol-directory match.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
