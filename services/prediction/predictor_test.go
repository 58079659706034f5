package prediction

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/AdityaCodess/FinStock-AI/services/artifacts"
)

func testPredictor(t *testing.T) (*Predictor, *artifacts.Store) {
	t.Helper()
	store, err := artifacts.Open(filepath.Join(t.TempDir(), "artifacts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewPredictor(store), store
}

func TestLongTerm_Thresholds(t *testing.T) {
	tests := []struct {
		name       string
		slope      float64
		close      float64
		wantLabel  string
		wantConf   float64
		wantTarget float64
	}{
		{"strong buy above 5pct", 60, 1000, LabelStrongBuyTrend, 0.75, 1060},
		{"positive below 5pct", 20, 1000, LabelPositiveTrend, 0.65, 1020},
		{"strong sell below -5pct", -60, 1000, LabelStrongSellTrend, 0.75, 940},
		{"negative above -5pct", -20, 1000, LabelNegativeTrend, 0.65, 980},
		{"neutral at zero", 0, 1000, LabelNeutralTrend, 0.50, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store := testPredictor(t)
			if err := store.Save("X.NS", artifacts.KindLongTerm, tt.slope); err != nil {
				t.Fatalf("save: %v", err)
			}
			got := p.LongTerm("X.NS", tt.close)
			if got.Recommendation != tt.wantLabel {
				t.Errorf("recommendation: got %q, want %q", got.Recommendation, tt.wantLabel)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence: got %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Forecast1Y == nil || *got.Forecast1Y != tt.wantTarget {
				t.Errorf("forecast_1y: got %v, want %v", got.Forecast1Y, tt.wantTarget)
			}
		})
	}
}

func TestShortTerm_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		momentum     float64
		wantLabel    string
		wantConf     float64
		wantForecast float64
	}{
		{"buy momentum", 4.0, LabelBuyMomentum, 0.80, 1.0},
		{"weak buy", 1.0, LabelHoldWeakBuy, 0.60, 0.25},
		{"sell momentum", -4.0, LabelSellMomentum, 0.80, -1.0},
		{"weak sell", -1.0, LabelHoldWeakSell, 0.60, -0.25},
		{"neutral", 0.2, LabelHoldNeutral, 0.50, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store := testPredictor(t)
			if err := store.Save("X.NS", artifacts.KindShortTerm, tt.momentum); err != nil {
				t.Fatalf("save: %v", err)
			}
			got := p.ShortTerm("X.NS")
			if got.Recommendation != tt.wantLabel {
				t.Errorf("recommendation: got %q, want %q", got.Recommendation, tt.wantLabel)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence: got %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Forecast7DPercent == nil || *got.Forecast7DPercent != tt.wantForecast {
				t.Errorf("forecast_7d_percent: got %v, want %v", got.Forecast7DPercent, tt.wantForecast)
			}
		})
	}
}

// A missing artifact silently degrades to a zero scalar.
func TestMissingArtifactDefaultsToZero(t *testing.T) {
	p, _ := testPredictor(t)

	long := p.LongTerm("NOBODY.NS", 500)
	if long.Recommendation != LabelNeutralTrend {
		t.Errorf("long: got %q, want neutral", long.Recommendation)
	}
	if long.Forecast1Y == nil || *long.Forecast1Y != 500 {
		t.Errorf("long target: got %v, want 500", long.Forecast1Y)
	}

	short := p.ShortTerm("NOBODY.NS")
	if short.Recommendation != LabelHoldNeutral {
		t.Errorf("short: got %q, want hold neutral", short.Recommendation)
	}
}

func TestIntraday_Shape(t *testing.T) {
	p, _ := testPredictor(t)

	got := p.Intraday("RELIANCE.NS")
	if got.Probability < 0.60 || got.Probability > 0.85 {
		t.Errorf("probability out of range: %v", got.Probability)
	}
	if !strings.HasPrefix(got.SimilarPatternFound, "Historical Pattern (") {
		t.Errorf("pattern: got %q", got.SimilarPatternFound)
	}
	if !strings.HasPrefix(got.Prediction, "Likely ") {
		t.Errorf("prediction: got %q", got.Prediction)
	}
	if got.LastUpdated == "" {
		t.Error("last_updated empty")
	}
}
