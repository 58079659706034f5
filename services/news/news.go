package news

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/jonreiter/govader"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"
)

// Sentiment labels and their fixed compound-score thresholds.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"

	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// DefaultMarketFeed is used when no feeds file is configured
const DefaultMarketFeed = "https://www.livemint.com/rss/markets"

// FeedConfig is the YAML-backed RSS source list.
type FeedConfig struct {
	MarketFeed string `yaml:"market_feed"`
}

// LoadFeedConfig reads the feeds file, falling back to the default
// market feed when the file is absent or unreadable.
func LoadFeedConfig(path string) FeedConfig {
	cfg := FeedConfig{MarketFeed: DefaultMarketFeed}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Feeds file %s not readable, using default market feed: %v", path, err)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("Feeds file %s malformed, using default market feed: %v", path, err)
		return FeedConfig{MarketFeed: DefaultMarketFeed}
	}
	if cfg.MarketFeed == "" {
		cfg.MarketFeed = DefaultMarketFeed
	}
	return cfg
}

// Service fetches RSS headlines and scores them with a VADER lexicon
// model. The analyzer is read-only after construction, so one Service
// built at startup can be shared by all request handlers.
type Service struct {
	parser   *gofeed.Parser
	analyzer *govader.SentimentIntensityAnalyzer
	feeds    FeedConfig
}

// NewService builds the sentiment service once at process start.
func NewService(feeds FeedConfig) *Service {
	return &Service{
		parser:   gofeed.NewParser(),
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		feeds:    feeds,
	}
}

// ScoreSentiment returns the VADER compound score in [-1,1] and the
// label derived from the fixed thresholds.
func (s *Service) ScoreSentiment(text string) (float64, string) {
	compound := s.analyzer.PolarityScores(text).Compound
	return compound, labelFor(compound)
}

func labelFor(compound float64) string {
	switch {
	case compound >= positiveThreshold:
		return LabelPositive
	case compound <= negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// FetchHeadlines fetches and parses the configured market feed,
// returning at most limit plain articles. Feed failures degrade to an
// empty list.
func (s *Service) FetchHeadlines(ctx context.Context, limit int) []models.NewsArticle {
	feed, err := s.parser.ParseURLWithContext(s.feeds.MarketFeed, ctx)
	if err != nil {
		log.Printf("Error fetching RSS feed %s: %v", s.feeds.MarketFeed, err)
		return nil
	}

	source := feed.Title
	if source == "" {
		source = "RSS Feed"
	}

	articles := make([]models.NewsArticle, 0, limit)
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}
		headline := item.Title
		if headline == "" {
			headline = "No Title"
		}
		articles = append(articles, models.NewsArticle{Source: source, Headline: headline})
	}
	return articles
}

// StockNews fetches market headlines, keeps those mentioning the
// company, scores them, and aggregates an overall label. When nothing
// matches, the top generic headlines stand in; when the feed is empty,
// a neutral placeholder article is returned.
func (s *Service) StockNews(ctx context.Context, symbol, companyName string) models.StockNewsSentiment {
	all := s.FetchHeadlines(ctx, 10)

	relevant := selectRelevant(all, companyName, 3)
	if len(relevant) == 0 && len(all) > 0 {
		relevant = all[:minInt(2, len(all))]
	}

	if len(relevant) == 0 {
		zero := 0.0
		return models.StockNewsSentiment{
			Articles: []models.NewsArticle{{
				Source:         "System",
				Headline:       fmt.Sprintf("No recent news found for %s", companyName),
				SentimentScore: &zero,
				SentimentLabel: LabelNeutral,
			}},
			OverallSentiment: LabelNeutral,
		}
	}

	total := 0.0
	for i := range relevant {
		score, label := s.ScoreSentiment(relevant[i].Headline)
		relevant[i].SentimentScore = &score
		relevant[i].SentimentLabel = label
		total += score
	}

	return models.StockNewsSentiment{
		Articles:         relevant,
		OverallSentiment: labelFor(total / float64(len(relevant))),
	}
}

// GlobalMarket summarizes the top market headlines.
func (s *Service) GlobalMarket(ctx context.Context) models.GlobalMarketSentiment {
	articles := s.FetchHeadlines(ctx, 5)
	if len(articles) == 0 {
		return models.GlobalMarketSentiment{
			OverallMarketSentiment: LabelNeutral,
			TrendingTopic:          "News Unavailable",
			KeyHeadlines:           []string{"Could not fetch market news feed."},
		}
	}

	total := 0.0
	headlines := make([]string, 0, len(articles))
	for _, a := range articles {
		score, _ := s.ScoreSentiment(a.Headline)
		total += score
		headlines = append(headlines, a.Headline)
	}

	return models.GlobalMarketSentiment{
		OverallMarketSentiment: labelFor(total / float64(len(articles))),
		TrendingTopic:          trendingTopic(headlines[0]),
		KeyHeadlines:           headlines,
	}
}

// selectRelevant keeps articles whose headline mentions the first word
// of the company name, up to limit.
func selectRelevant(articles []models.NewsArticle, companyName string, limit int) []models.NewsArticle {
	fields := strings.Fields(companyName)
	if len(fields) == 0 {
		return nil
	}
	keyword := strings.ToLower(fields[0])

	var relevant []models.NewsArticle
	for _, a := range articles {
		if len(relevant) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(a.Headline), keyword) {
			relevant = append(relevant, a)
		}
	}
	return relevant
}

// trendingTopic guesses a topic from the leading headline segment.
func trendingTopic(headline string) string {
	topic := strings.SplitN(headline, "-", 2)[0]
	topic = strings.SplitN(topic, "|", 2)[0]
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "Market Update"
	}
	return topic
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
