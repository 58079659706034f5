package news

import (
	"testing"

	"github.com/AdityaCodess/FinStock-AI/models"
)

func TestLabelFor_Thresholds(t *testing.T) {
	tests := []struct {
		compound float64
		want     string
	}{
		{0.5, LabelPositive},
		{0.05, LabelPositive},
		{0.049, LabelNeutral},
		{0, LabelNeutral},
		{-0.049, LabelNeutral},
		{-0.05, LabelNegative},
		{-0.8, LabelNegative},
	}
	for _, tt := range tests {
		if got := labelFor(tt.compound); got != tt.want {
			t.Errorf("labelFor(%v): got %q, want %q", tt.compound, got, tt.want)
		}
	}
}

func TestScoreSentiment(t *testing.T) {
	svc := NewService(FeedConfig{MarketFeed: DefaultMarketFeed})

	score, label := svc.ScoreSentiment("Markets rally on excellent earnings, investors celebrate record profits")
	if label != LabelPositive || score < positiveThreshold {
		t.Errorf("positive headline: got score %v label %q", score, label)
	}

	score, label = svc.ScoreSentiment("Markets crash amid terrible losses, panic and fear grip investors")
	if label != LabelNegative || score > negativeThreshold {
		t.Errorf("negative headline: got score %v label %q", score, label)
	}

	_, label = svc.ScoreSentiment("The exchange opens at nine thirty")
	if label != LabelNeutral {
		t.Errorf("neutral headline: got label %q", label)
	}
}

func TestSelectRelevant(t *testing.T) {
	articles := []models.NewsArticle{
		{Headline: "Reliance announces quarterly results"},
		{Headline: "Broad market update for the week"},
		{Headline: "RELIANCE retail arm expands"},
		{Headline: "Banks lead the rally"},
		{Headline: "Reliance Jio adds subscribers"},
	}

	got := selectRelevant(articles, "Reliance Industries Ltd.", 3)
	if len(got) != 3 {
		t.Fatalf("got %d articles, want 3", len(got))
	}
	for _, a := range got {
		if !containsFold(a.Headline, "reliance") {
			t.Errorf("irrelevant article selected: %q", a.Headline)
		}
	}

	if got := selectRelevant(articles, "Infosys Ltd.", 3); len(got) != 0 {
		t.Errorf("expected no matches for Infosys, got %d", len(got))
	}

	if got := selectRelevant(articles, "", 3); got != nil {
		t.Errorf("empty company name should match nothing, got %v", got)
	}
}

func containsFold(haystack, needle string) bool {
	return len(selectRelevant([]models.NewsArticle{{Headline: haystack}}, needle, 1)) == 1
}

func TestTrendingTopic(t *testing.T) {
	tests := []struct {
		headline string
		want     string
	}{
		{"Sensex surges 500 points - markets close higher", "Sensex surges 500 points"},
		{"Nifty update | weekly wrap", "Nifty update"},
		{"Plain headline without separators", "Plain headline without separators"},
		{"- leading dash", "Market Update"},
	}
	for _, tt := range tests {
		if got := trendingTopic(tt.headline); got != tt.want {
			t.Errorf("trendingTopic(%q): got %q, want %q", tt.headline, got, tt.want)
		}
	}
}

func TestLoadFeedConfig_MissingFile(t *testing.T) {
	cfg := LoadFeedConfig("does/not/exist.yaml")
	if cfg.MarketFeed != DefaultMarketFeed {
		t.Errorf("got %q, want default feed", cfg.MarketFeed)
	}
}
