package model

// Metric identifies one of the six soil/climate readings. The identifiers
// follow the backend's Indonesian field names.
type Metric string

const (
	MetricSuhu       Metric = "suhu"
	MetricKelembapan Metric = "kelembapan"
	MetricPH         Metric = "ph"
	MetricNitrogen   Metric = "nitrogen"
	MetricPhospor    Metric = "phospor"
	MetricKalium     Metric = "kalium"
)

// Metrics lists all six metrics in display order.
var Metrics = []Metric{
	MetricSuhu, MetricKelembapan, MetricPH,
	MetricNitrogen, MetricPhospor, MetricKalium,
}

// Range is an inclusive [Min, Max] threshold for one metric.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Thresholds holds the configured range per metric. A missing metric falls
// back to the classifier's built-in defaults.
type Thresholds map[Metric]Range

// SensorReadings is one raw six-tuple from the backend.
type SensorReadings struct {
	Suhu       float64 `json:"suhu"`
	Kelembapan float64 `json:"kelembapan"`
	PH         float64 `json:"ph"`
	Nitrogen   float64 `json:"nitrogen"`
	Phospor    float64 `json:"phospor"`
	Kalium     float64 `json:"kalium"`
}

// Value returns the reading for the given metric.
func (r SensorReadings) Value(m Metric) float64 {
	switch m {
	case MetricSuhu:
		return r.Suhu
	case MetricKelembapan:
		return r.Kelembapan
	case MetricPH:
		return r.PH
	case MetricNitrogen:
		return r.Nitrogen
	case MetricPhospor:
		return r.Phospor
	case MetricKalium:
		return r.Kalium
	}
	return 0
}

// Sensor classification statuses.
const (
	SensorGood = "baik"
	SensorBad  = "jelek"
)

// ClassifiedReading is one metric's value with its derived status and
// human-readable label.
type ClassifiedReading struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Status string  `json:"status"`
	Label  string  `json:"label"`
}

// CropPrediction is one crop's share of the probability distribution.
type CropPrediction struct {
	Crop        string `json:"crop"`
	Probability int    `json:"probability"`
}

// PredictionResult is the full crop-suitability estimate: a ranked
// distribution summing to 100 and the maize-based verdict.
type PredictionResult struct {
	Predictions            []CropPrediction `json:"predictions"`
	IsSuitable             bool             `json:"isSuitable"`
	RecommendedCrop        string           `json:"recommendedCrop"`
	RecommendedProbability int              `json:"recommendedProbability"`
	MaizeProbability       int              `json:"maizeProbability"`
	Degraded               bool             `json:"degraded,omitempty"`
}
