// Package sensor turns raw soil readings into classified statuses and a
// crop-suitability estimate for the maize sowing decision.
package sensor

import (
	"github.com/tanicerdas/seedbot-console/model"
)

// defaultRanges are the built-in thresholds used when no configured range
// exists for a metric.
var defaultRanges = map[model.Metric]model.Range{
	model.MetricSuhu:       {Min: 20.0, Max: 35.0},
	model.MetricKelembapan: {Min: 40.0, Max: 80.0},
	model.MetricPH:         {Min: 6.0, Max: 7.5},
	model.MetricNitrogen:   {Min: 30.0, Max: 60.0},
	model.MetricPhospor:    {Min: 25.0, Max: 50.0},
	model.MetricKalium:     {Min: 40.0, Max: 70.0},
}

// DefaultRange returns the built-in range for a metric.
func DefaultRange(m model.Metric) model.Range {
	return defaultRanges[m]
}

type labelSet struct {
	good    string
	tooLow  string
	tooHigh string
}

var labels = map[model.Metric]labelSet{
	model.MetricSuhu: {
		good:    "Suhu optimal",
		tooLow:  "Suhu terlalu rendah",
		tooHigh: "Suhu terlalu tinggi",
	},
	model.MetricKelembapan: {
		good:    "Kelembapan optimal",
		tooLow:  "Kelembapan terlalu rendah",
		tooHigh: "Kelembapan terlalu tinggi",
	},
	model.MetricPH: {
		good:    "pH optimal untuk jagung",
		tooLow:  "pH terlalu rendah (terlalu asam)",
		tooHigh: "pH terlalu tinggi (terlalu basa)",
	},
	model.MetricNitrogen: {
		good:    "Kadar nitrogen baik untuk jagung",
		tooLow:  "Kadar nitrogen terlalu rendah",
		tooHigh: "Kadar nitrogen terlalu tinggi",
	},
	model.MetricPhospor: {
		good:    "Kadar phospor baik untuk jagung",
		tooLow:  "Kadar phospor terlalu rendah",
		tooHigh: "Kadar phospor terlalu tinggi",
	},
	model.MetricKalium: {
		good:    "Kadar kalium baik untuk jagung",
		tooLow:  "Kadar kalium terlalu rendah",
		tooHigh: "Kadar kalium terlalu tinggi",
	},
}

var units = map[model.Metric]string{
	model.MetricSuhu:       "°C",
	model.MetricKelembapan: "%",
	model.MetricPH:         "",
	model.MetricNitrogen:   "mg/kg",
	model.MetricPhospor:    "mg/kg",
	model.MetricKalium:     "mg/kg",
}

// Classify places a reading against its threshold range, inclusive on both
// ends. Metrics without a configured range use the built-in defaults. Given
// an inverted range the below-minimum branch wins, so the function stays
// total for any stored configuration.
func Classify(metric model.Metric, value float64, thresholds model.Thresholds) model.ClassifiedReading {
	r, ok := thresholds[metric]
	if !ok {
		r = defaultRanges[metric]
	}
	set := labels[metric]

	reading := model.ClassifiedReading{Value: value, Unit: units[metric]}
	switch {
	case value >= r.Min && value <= r.Max:
		reading.Status = model.SensorGood
		reading.Label = set.good
	case value < r.Min:
		reading.Status = model.SensorBad
		reading.Label = set.tooLow
	default:
		reading.Status = model.SensorBad
		reading.Label = set.tooHigh
	}
	return reading
}

// ClassifyAll classifies the full six-tuple.
func ClassifyAll(readings model.SensorReadings, thresholds model.Thresholds) map[model.Metric]model.ClassifiedReading {
	out := make(map[model.Metric]model.ClassifiedReading, len(model.Metrics))
	for _, m := range model.Metrics {
		out[m] = Classify(m, readings.Value(m), thresholds)
	}
	return out
}
