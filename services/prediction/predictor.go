package prediction

import (
	"log"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/AdityaCodess/FinStock-AI/services/artifacts"
	"github.com/shopspring/decimal"
)

// Recommendation labels emitted by the threshold rules.
const (
	LabelStrongBuyTrend  = "Strong Buy Trend"
	LabelPositiveTrend   = "Positive Trend"
	LabelStrongSellTrend = "Strong Sell Trend"
	LabelNegativeTrend   = "Negative Trend"
	LabelNeutralTrend    = "Neutral Trend"

	LabelBuyMomentum  = "Buy (Momentum)"
	LabelHoldWeakBuy  = "Hold/Weak Buy"
	LabelSellMomentum = "Sell (Momentum)"
	LabelHoldWeakSell = "Hold/Weak Sell"
	LabelHoldNeutral  = "Hold (Neutral)"
)

// Predictor turns precomputed scalar artifacts into rule-based
// recommendations. It performs no fitting of its own.
type Predictor struct {
	store *artifacts.Store
}

// NewPredictor creates a predictor backed by the given artifact store.
func NewPredictor(store *artifacts.Store) *Predictor {
	return &Predictor{store: store}
}

// loadScalar returns the trained value for a symbol/kind, degrading to
// 0.0 when the artifact is missing or the store is unreachable.
func (p *Predictor) loadScalar(symbol, kind string) float64 {
	if p.store == nil {
		return 0.0
	}
	value, err := p.store.Load(symbol, kind)
	if err != nil {
		log.Printf("Artifact %s/%s unavailable, defaulting to 0.0: %v", symbol, kind, err)
		return 0.0
	}
	return value
}

// LongTerm applies the annualized-slope rules. The 1-year target is the
// latest close plus the slope; the label depends on the slope relative
// to 5% of the latest close.
func (p *Predictor) LongTerm(symbol string, latestClose float64) models.LongTermPrediction {
	slope := p.loadScalar(symbol, artifacts.KindLongTerm)
	target := round2(latestClose + slope)

	threshold := latestClose * 0.05
	var recommendation string
	var confidence float64
	switch {
	case slope > threshold:
		recommendation = LabelStrongBuyTrend
		confidence = 0.75
	case slope > 0:
		recommendation = LabelPositiveTrend
		confidence = 0.65
	case slope < -threshold:
		recommendation = LabelStrongSellTrend
		confidence = 0.75
	case slope < 0:
		recommendation = LabelNegativeTrend
		confidence = 0.65
	default:
		recommendation = LabelNeutralTrend
		confidence = 0.50
	}

	return models.LongTermPrediction{
		Forecast1Y:     &target,
		Recommendation: recommendation,
		Confidence:     confidence,
	}
}

// ShortTerm applies the momentum rules. The reported 7-day percent is
// momentum/4, a rough linear scaling rather than a real forecast.
func (p *Predictor) ShortTerm(symbol string) models.ShortTermPrediction {
	momentum := p.loadScalar(symbol, artifacts.KindShortTerm)
	forecast := round2(momentum / 4)

	var recommendation string
	var confidence float64
	switch {
	case momentum > 3.0:
		recommendation = LabelBuyMomentum
		confidence = 0.80
	case momentum > 0.5:
		recommendation = LabelHoldWeakBuy
		confidence = 0.60
	case momentum < -3.0:
		recommendation = LabelSellMomentum
		confidence = 0.80
	case momentum < -0.5:
		recommendation = LabelHoldWeakSell
		confidence = 0.60
	default:
		recommendation = LabelHoldNeutral
		confidence = 0.50
	}

	return models.ShortTermPrediction{
		Forecast7DPercent: &forecast,
		Recommendation:    recommendation,
		Confidence:        confidence,
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
