package sensor

import (
	"context"

	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/model"
)

// Predictor is the slice of the backend client the estimator calls.
type Predictor interface {
	PredictCrop(ctx context.Context, token string, in backend.PredictionInput) (model.PredictionResult, error)
}

// Estimator wraps the prediction endpoint with the degraded-mode fallback.
// The endpoint is the sole primary path; the heuristic runs only when the
// call fails.
type Estimator struct {
	predictor Predictor
	fallback  *FallbackEstimator
	rainfall  float64
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewEstimator creates an estimator. Rainfall is not sensed in the field, so
// a configured stand-in value joins every feature vector.
func NewEstimator(predictor Predictor, fallback *FallbackEstimator, rainfall float64, logger *zap.Logger, metrics *observability.Metrics) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		predictor: predictor,
		fallback:  fallback,
		rainfall:  rainfall,
		logger:    logger,
		metrics:   metrics,
	}
}

// Estimate returns the crop distribution and maize verdict for the readings.
// An unreachable prediction endpoint degrades to the heuristic instead of
// failing the caller; the result is flagged as degraded.
func (e *Estimator) Estimate(ctx context.Context, token string, readings model.SensorReadings) model.PredictionResult {
	in := backend.PredictionInput{
		Nitrogen:   readings.Nitrogen,
		Phospor:    readings.Phospor,
		Kalium:     readings.Kalium,
		Suhu:       readings.Suhu,
		Kelembapan: readings.Kelembapan,
		PH:         readings.PH,
		Rainfall:   e.rainfall,
	}

	result, err := e.predictor.PredictCrop(ctx, token, in)
	if err != nil {
		e.logger.Warn("crop prediction endpoint failed, using fallback heuristic", zap.Error(err))
		if e.metrics != nil {
			e.metrics.RecordPrediction("fallback")
		}
		return e.fallback.Estimate(readings)
	}
	if e.metrics != nil {
		e.metrics.RecordPrediction("ml")
	}
	return result
}
