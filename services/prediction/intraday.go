package prediction

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
)

// Intraday emits a synthetic pattern-similarity record. The similarity
// engine behind it is not built yet, so the payload is placeholder data
// refreshed on every call.
func (p *Predictor) Intraday(symbol string) models.IntradayPrediction {
	months := []string{"June", "July", "Aug"}
	pattern := fmt.Sprintf("Historical Pattern (%s %d)",
		months[rand.Intn(len(months))], 2023+rand.Intn(2))

	direction := "drop"
	if rand.Float64() > 0.4 {
		direction = "rise"
	}
	horizons := []int{15, 30}
	text := fmt.Sprintf("Likely %.1f%% %s in next %d mins",
		0.1+rand.Float64()*0.5, direction, horizons[rand.Intn(len(horizons))])

	probability := 0.60 + rand.Float64()*0.25

	return models.IntradayPrediction{
		LastUpdated:         time.Now().Format("15:04:05"),
		SimilarPatternFound: pattern,
		Prediction:          text,
		Probability:         round2(probability),
	}
}
