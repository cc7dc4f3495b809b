package sensor

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/tanicerdas/seedbot-console/model"
)

// cropCatalog lists every crop the estimate distributes probability over,
// in its fixed ranking-tiebreak order. Maize is the crop the robot sows.
var cropCatalog = []string{
	"rice", "maize", "chickpea", "kidneybeans", "pigeonpeas", "mothbeans",
	"mungbean", "blackgram", "lentil", "pomegranate", "banana", "mango",
	"grapes", "watermelon", "muskmelon", "apple", "orange", "papaya",
	"coconut", "cotton", "jute", "coffee",
}

// cropWeights steers how the non-maize share is split. Crops absent from
// the table weigh 0.01.
var cropWeights = map[string]float64{
	"rice":        0.3,
	"chickpea":    0.08,
	"kidneybeans": 0.08,
	"pigeonpeas":  0.08,
	"mothbeans":   0.05,
	"mungbean":    0.05,
	"blackgram":   0.05,
	"lentil":      0.05,
	"banana":      0.06,
	"mango":       0.06,
	"coconut":     0.06,
	"coffee":      0.06,
	"pomegranate": 0.02,
	"grapes":      0.02,
	"watermelon":  0.02,
	"muskmelon":   0.02,
	"apple":       0.02,
	"orange":      0.02,
	"papaya":      0.02,
	"cotton":      0.02,
	"jute":        0.02,
}

const defaultWeight = 0.01

// FallbackEstimator produces a degraded-mode suitability estimate when the
// prediction endpoint cannot be reached. It scores maize from fixed
// sweet-spot bonuses and spreads the remainder over the catalog with a
// weighted, lightly jittered split.
type FallbackEstimator struct {
	rng *rand.Rand
}

// NewFallbackEstimator creates an estimator with the given randomness
// source. Tests pass a seeded source; nil gets a time-seeded one.
func NewFallbackEstimator(rng *rand.Rand) *FallbackEstimator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FallbackEstimator{rng: rng}
}

// Estimate computes the degraded-mode distribution. Probabilities always
// sum to exactly 100.
func (f *FallbackEstimator) Estimate(readings model.SensorReadings) model.PredictionResult {
	maizeProb := 50.0
	if readings.Suhu >= 25 && readings.Suhu <= 32 {
		maizeProb += 20
	}
	if readings.Kelembapan >= 60 && readings.Kelembapan <= 70 {
		maizeProb += 15
	}
	if readings.PH >= 6.0 && readings.PH <= 7.0 {
		maizeProb += 10
	}
	if readings.Nitrogen >= 50 && readings.Nitrogen <= 60 {
		maizeProb += 5
	}
	maizeProb = math.Min(100, math.Max(0, maizeProb))

	remaining := 100 - maizeProb

	totalWeight := 0.0
	for _, crop := range cropCatalog {
		if crop == "maize" {
			continue
		}
		totalWeight += weightFor(crop)
	}

	predictions := make([]model.CropPrediction, 0, len(cropCatalog))
	for _, crop := range cropCatalog {
		if crop == "maize" {
			predictions = append(predictions, model.CropPrediction{
				Crop:        crop,
				Probability: int(math.Round(maizeProb)),
			})
			continue
		}
		prob := math.Round(remaining * weightFor(crop) / totalWeight)
		jitter := 0.9 + f.rng.Float64()*0.2
		final := int(math.Round(prob * jitter))
		predictions = append(predictions, model.CropPrediction{
			Crop:        crop,
			Probability: clampProb(final),
		})
	}

	normalize(predictions)

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})

	top := predictions[0]
	result := model.PredictionResult{
		Predictions:            predictions,
		IsSuitable:             top.Crop == "maize",
		RecommendedCrop:        top.Crop,
		RecommendedProbability: top.Probability,
		Degraded:               true,
	}
	for _, p := range predictions {
		if p.Crop == "maize" {
			result.MaizeProbability = p.Probability
			break
		}
	}
	return result
}

// normalize forces the distribution to sum to exactly 100. Gaps of at most
// 10 points land on the maize entry; larger gaps rescale everything
// proportionally with a final maize adjustment for the rounding residue.
func normalize(predictions []model.CropPrediction) {
	maizeIdx := -1
	total := 0
	for i, p := range predictions {
		total += p.Probability
		if p.Crop == "maize" {
			maizeIdx = i
		}
	}
	if total == 100 {
		return
	}

	diff := 100 - total
	if maizeIdx != -1 && diff >= -10 && diff <= 10 {
		predictions[maizeIdx].Probability = clampProb(predictions[maizeIdx].Probability + diff)
		return
	}

	scale := 100.0 / float64(total)
	for i := range predictions {
		predictions[i].Probability = int(math.Round(float64(predictions[i].Probability) * scale))
	}
	total = 0
	for _, p := range predictions {
		total += p.Probability
	}
	if diff := 100 - total; diff != 0 && maizeIdx != -1 {
		predictions[maizeIdx].Probability = clampProb(predictions[maizeIdx].Probability + diff)
	}
}

func weightFor(crop string) float64 {
	if w, ok := cropWeights[crop]; ok {
		return w
	}
	return defaultWeight
}

func clampProb(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
