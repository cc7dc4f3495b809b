package sensor

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/model"
)

func sweetSpotReadings() model.SensorReadings {
	return model.SensorReadings{
		Suhu: 28, Kelembapan: 65, PH: 6.5,
		Nitrogen: 55, Phospor: 30, Kalium: 50,
	}
}

func hostileReadings() model.SensorReadings {
	return model.SensorReadings{
		Suhu: 10, Kelembapan: 20, PH: 4.0,
		Nitrogen: 5, Phospor: 5, Kalium: 5,
	}
}

func TestFallbackNormalization(t *testing.T) {
	inputs := []model.SensorReadings{
		sweetSpotReadings(),
		hostileReadings(),
		{Suhu: 28, Kelembapan: 65, PH: 6.5, Nitrogen: 50, Phospor: 20, Kalium: 60},
		{Suhu: 25, Kelembapan: 60, PH: 6.0, Nitrogen: 50, Phospor: 25, Kalium: 40},
	}

	for seed := int64(0); seed < 50; seed++ {
		est := NewFallbackEstimator(rand.New(rand.NewSource(seed)))
		for _, readings := range inputs {
			res := est.Estimate(readings)

			sum := 0
			for _, p := range res.Predictions {
				if p.Probability < 0 || p.Probability > 100 {
					t.Fatalf("seed %d: %s probability %d out of [0,100]", seed, p.Crop, p.Probability)
				}
				sum += p.Probability
			}
			if sum != 100 {
				t.Fatalf("seed %d: probabilities sum to %d, want exactly 100", seed, sum)
			}
			if len(res.Predictions) != len(cropCatalog) {
				t.Fatalf("seed %d: %d predictions, want %d", seed, len(res.Predictions), len(cropCatalog))
			}
			if !res.Degraded {
				t.Fatal("fallback result not flagged as degraded")
			}
		}
	}
}

func TestFallbackSweetSpot(t *testing.T) {
	est := NewFallbackEstimator(rand.New(rand.NewSource(1)))
	res := est.Estimate(sweetSpotReadings())

	// All four bonuses apply: 50+20+15+10+5 = 100.
	if res.MaizeProbability != 100 {
		t.Errorf("maize probability = %d, want 100", res.MaizeProbability)
	}
	if !res.IsSuitable || res.RecommendedCrop != "maize" {
		t.Errorf("suitable = %v, recommended = %q; want maize on top", res.IsSuitable, res.RecommendedCrop)
	}
}

func TestFallbackRanking(t *testing.T) {
	est := NewFallbackEstimator(rand.New(rand.NewSource(7)))
	res := est.Estimate(hostileReadings())

	for i := 1; i < len(res.Predictions); i++ {
		if res.Predictions[i].Probability > res.Predictions[i-1].Probability {
			t.Fatalf("predictions not sorted descending at %d", i)
		}
	}
	if res.RecommendedCrop != res.Predictions[0].Crop {
		t.Errorf("recommended crop %q is not the top entry %q", res.RecommendedCrop, res.Predictions[0].Crop)
	}
	if res.IsSuitable != (res.Predictions[0].Crop == "maize") {
		t.Error("suitability verdict disagrees with the top-ranked crop")
	}
}

func TestFallbackDeterministicForSeed(t *testing.T) {
	a := NewFallbackEstimator(rand.New(rand.NewSource(42))).Estimate(hostileReadings())
	b := NewFallbackEstimator(rand.New(rand.NewSource(42))).Estimate(hostileReadings())

	if len(a.Predictions) != len(b.Predictions) {
		t.Fatal("prediction lengths differ across identical seeds")
	}
	for i := range a.Predictions {
		if a.Predictions[i] != b.Predictions[i] {
			t.Fatalf("entry %d differs across identical seeds: %+v vs %+v", i, a.Predictions[i], b.Predictions[i])
		}
	}
}

type stubPredictor struct {
	result model.PredictionResult
	err    error
	calls  int
}

func (s *stubPredictor) PredictCrop(_ context.Context, _ string, _ backend.PredictionInput) (model.PredictionResult, error) {
	s.calls++
	return s.result, s.err
}

func TestEstimatorPrimaryPath(t *testing.T) {
	stub := &stubPredictor{
		result: model.PredictionResult{
			Predictions:            []model.CropPrediction{{Crop: "maize", Probability: 88}, {Crop: "rice", Probability: 12}},
			IsSuitable:             true,
			RecommendedCrop:        "maize",
			RecommendedProbability: 88,
			MaizeProbability:       88,
		},
	}
	est := NewEstimator(stub, NewFallbackEstimator(rand.New(rand.NewSource(1))), 100, nil, nil)

	res := est.Estimate(context.Background(), "token", sweetSpotReadings())
	if stub.calls != 1 {
		t.Fatalf("predictor called %d times, want 1", stub.calls)
	}
	if res.Degraded {
		t.Error("primary-path result flagged as degraded")
	}
	if res.MaizeProbability != 88 {
		t.Errorf("maize probability = %d, want the endpoint's 88", res.MaizeProbability)
	}
}

func TestEstimatorFallsBackOnError(t *testing.T) {
	stub := &stubPredictor{err: errors.New("connection refused")}
	est := NewEstimator(stub, NewFallbackEstimator(rand.New(rand.NewSource(1))), 100, nil, nil)

	res := est.Estimate(context.Background(), "token", sweetSpotReadings())
	if !res.Degraded {
		t.Fatal("fallback result not flagged as degraded")
	}
	sum := 0
	for _, p := range res.Predictions {
		sum += p.Probability
	}
	if sum != 100 {
		t.Errorf("fallback probabilities sum to %d, want 100", sum)
	}
}

func TestEstimatorCountsPredictionsBySource(t *testing.T) {
	metrics := observability.InitMetrics(prometheus.NewRegistry())
	stub := &stubPredictor{result: model.PredictionResult{IsSuitable: true}}
	est := NewEstimator(stub, NewFallbackEstimator(rand.New(rand.NewSource(1))), 100, nil, metrics)

	est.Estimate(context.Background(), "token", sweetSpotReadings())
	if got := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("ml")); got != 1 {
		t.Errorf("ml predictions counted = %v, want 1", got)
	}

	stub.err = errors.New("connection refused")
	est.Estimate(context.Background(), "token", sweetSpotReadings())
	if got := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("fallback")); got != 1 {
		t.Errorf("fallback predictions counted = %v, want 1", got)
	}
}
