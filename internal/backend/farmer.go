package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tanicerdas/seedbot-console/model"
)

// GetSensorData returns the latest raw six-tuple from the field sensors.
func (c *Client) GetSensorData(ctx context.Context, token string) (model.SensorReadings, error) {
	var out struct {
		SensorData model.SensorReadings `json:"sensorData"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/sensor-data", token, nil, &out)
	return out.SensorData, err
}

// UpdateSensorData overwrites the stored readings. Used by the dummy-data
// tooling to seed test values.
func (c *Client) UpdateSensorData(ctx context.Context, token string, r model.SensorReadings) error {
	return c.do(ctx, http.MethodPut, "/farmer/sensor-data", token, r, nil)
}

// GetRobotStatus returns the backend's authoritative robot state.
func (c *Client) GetRobotStatus(ctx context.Context, token string) (model.RobotState, error) {
	var out struct {
		RobotStatus model.RobotState `json:"robotStatus"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/robot-status", token, nil, &out)
	return out.RobotStatus, err
}

// UpdateRobotStatus pushes a state change (mode switches, reverts). The
// backend echoes the stored status.
func (c *Client) UpdateRobotStatus(ctx context.Context, token string, s model.RobotState) (model.RobotState, error) {
	var out struct {
		RobotStatus model.RobotState `json:"robotStatus"`
	}
	err := c.do(ctx, http.MethodPut, "/farmer/robot-status", token, s, &out)
	return out.RobotStatus, err
}

// ControlResult is the backend's acknowledgement of a robot command.
type ControlResult struct {
	Message         string                `json:"message"`
	OperationStatus model.OperationStatus `json:"operationStatus"`
}

// RobotControl dispatches a single named action to the robot.
func (c *Client) RobotControl(ctx context.Context, token, action string) (ControlResult, error) {
	in := struct {
		Action string `json:"action"`
	}{Action: action}
	var out ControlResult
	err := c.do(ctx, http.MethodPost, "/farmer/robot-control", token, in, &out)
	return out, err
}

// GetRobotHistory returns all recorded sensor probes, newest last.
func (c *Client) GetRobotHistory(ctx context.Context, token string) ([]model.HistoryEntry, error) {
	var out struct {
		History []model.HistoryEntry `json:"history"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/robot-history", token, nil, &out)
	return out.History, err
}

// CreateRobotHistory appends one probe record.
func (c *Client) CreateRobotHistory(ctx context.Context, token string, e model.HistoryEntry) error {
	return c.do(ctx, http.MethodPost, "/farmer/robot-history", token, e, nil)
}

// UpdateHistoryStatus rewrites the suitability verdict on the most recent
// history entry after a prediction completes.
func (c *Client) UpdateHistoryStatus(ctx context.Context, token string, isSuitable bool) error {
	in := struct {
		IsSuitable bool `json:"isSuitable"`
	}{IsSuitable: isSuitable}
	return c.do(ctx, http.MethodPut, "/farmer/update-history-status", token, in, nil)
}

// PredictionInput is the feature vector sent to the crop model. Rainfall is
// not sensed in the field and defaults from configuration.
type PredictionInput struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phospor    float64 `json:"phospor"`
	Kalium     float64 `json:"kalium"`
	Suhu       float64 `json:"suhu"`
	Kelembapan float64 `json:"kelembapan"`
	PH         float64 `json:"ph"`
	Rainfall   float64 `json:"rainfall"`
}

// PredictCrop asks the backend's model for a crop probability distribution.
func (c *Client) PredictCrop(ctx context.Context, token string, in PredictionInput) (model.PredictionResult, error) {
	var out model.PredictionResult
	err := c.do(ctx, http.MethodPost, "/farmer/predict-crop", token, in, &out)
	return out, err
}

// MappingInput is the writable part of a mapping.
type MappingInput struct {
	Name        string             `json:"mappingName"`
	Coordinates []model.Coordinate `json:"coordinates"`
}

// GetMappings lists the farmer's saved GPS paths.
func (c *Client) GetMappings(ctx context.Context, token string) ([]model.Mapping, error) {
	var out struct {
		Mappings []model.Mapping `json:"mappings"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/mappings", token, nil, &out)
	return out.Mappings, err
}

// GetMapping fetches one mapping by id.
func (c *Client) GetMapping(ctx context.Context, token, id string) (model.Mapping, error) {
	var out struct {
		Mapping model.Mapping `json:"mapping"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/mappings/"+url.PathEscape(id), token, nil, &out)
	return out.Mapping, err
}

// CreateMapping stores a new GPS path.
func (c *Client) CreateMapping(ctx context.Context, token string, in MappingInput) (model.Mapping, error) {
	var out struct {
		Mapping model.Mapping `json:"mapping"`
	}
	err := c.do(ctx, http.MethodPost, "/farmer/mappings", token, in, &out)
	return out.Mapping, err
}

// UpdateMapping replaces an existing path.
func (c *Client) UpdateMapping(ctx context.Context, token, id string, in MappingInput) (model.Mapping, error) {
	var out struct {
		Mapping model.Mapping `json:"mapping"`
	}
	err := c.do(ctx, http.MethodPut, "/farmer/mappings/"+url.PathEscape(id), token, in, &out)
	return out.Mapping, err
}

// DeleteMapping removes a path.
func (c *Client) DeleteMapping(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/farmer/mappings/"+url.PathEscape(id), token, nil, nil)
}

// FarmerParameters are the per-farmer sowing settings.
type FarmerParameters struct {
	SeedingDepth float64 `json:"seedingDepth"`
	HoleSpacing  float64 `json:"holeSpacing"`
}

// GetFarmerParameters returns the farmer's current sowing settings.
func (c *Client) GetFarmerParameters(ctx context.Context, token string) (FarmerParameters, error) {
	var out struct {
		Parameters FarmerParameters `json:"parameters"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/parameters", token, nil, &out)
	return out.Parameters, err
}

// UpdateFarmerParameters stores the farmer's sowing settings.
func (c *Client) UpdateFarmerParameters(ctx context.Context, token string, p FarmerParameters) error {
	return c.do(ctx, http.MethodPut, "/farmer/parameters", token, p, nil)
}

// GetFarmerDefaultParameters returns the admin-managed defaults so the
// farmer view can offer a reset.
func (c *Client) GetFarmerDefaultParameters(ctx context.Context, token string) (FarmerParameters, error) {
	var out struct {
		Parameters FarmerParameters `json:"parameters"`
	}
	err := c.do(ctx, http.MethodGet, "/farmer/parameters/default", token, nil, &out)
	return out.Parameters, err
}

// thresholdsWire is the flat min/max representation the backend stores.
type thresholdsWire struct {
	SuhuMin       *float64 `json:"suhu_min"`
	SuhuMax       *float64 `json:"suhu_max"`
	KelembapanMin *float64 `json:"kelembapan_min"`
	KelembapanMax *float64 `json:"kelembapan_max"`
	PHMin         *float64 `json:"ph_min"`
	PHMax         *float64 `json:"ph_max"`
	NitrogenMin   *float64 `json:"nitrogen_min"`
	NitrogenMax   *float64 `json:"nitrogen_max"`
	PhosporMin    *float64 `json:"phospor_min"`
	PhosporMax    *float64 `json:"phospor_max"`
	KaliumMin     *float64 `json:"kalium_min"`
	KaliumMax     *float64 `json:"kalium_max"`
}

func (w thresholdsWire) toModel() model.Thresholds {
	t := model.Thresholds{}
	set := func(m model.Metric, min, max *float64) {
		if min != nil && max != nil {
			t[m] = model.Range{Min: *min, Max: *max}
		}
	}
	set(model.MetricSuhu, w.SuhuMin, w.SuhuMax)
	set(model.MetricKelembapan, w.KelembapanMin, w.KelembapanMax)
	set(model.MetricPH, w.PHMin, w.PHMax)
	set(model.MetricNitrogen, w.NitrogenMin, w.NitrogenMax)
	set(model.MetricPhospor, w.PhosporMin, w.PhosporMax)
	set(model.MetricKalium, w.KaliumMin, w.KaliumMax)
	return t
}

func thresholdsToWire(t model.Thresholds) thresholdsWire {
	var w thresholdsWire
	get := func(m model.Metric) (*float64, *float64) {
		r, ok := t[m]
		if !ok {
			return nil, nil
		}
		min, max := r.Min, r.Max
		return &min, &max
	}
	w.SuhuMin, w.SuhuMax = get(model.MetricSuhu)
	w.KelembapanMin, w.KelembapanMax = get(model.MetricKelembapan)
	w.PHMin, w.PHMax = get(model.MetricPH)
	w.NitrogenMin, w.NitrogenMax = get(model.MetricNitrogen)
	w.PhosporMin, w.PhosporMax = get(model.MetricPhospor)
	w.KaliumMin, w.KaliumMax = get(model.MetricKalium)
	return w
}

// GetSensorThresholds returns the configured classification ranges. Metrics
// the backend has no stored range for are absent from the result.
func (c *Client) GetSensorThresholds(ctx context.Context, token string) (model.Thresholds, error) {
	var out struct {
		Thresholds thresholdsWire `json:"thresholds"`
	}
	if err := c.do(ctx, http.MethodGet, "/farmer/sensor-thresholds", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Thresholds.toModel(), nil
}

// UpdateSensorThresholds stores the classification ranges.
func (c *Client) UpdateSensorThresholds(ctx context.Context, token string, t model.Thresholds) error {
	return c.do(ctx, http.MethodPut, "/farmer/sensor-thresholds", token, thresholdsToWire(t), nil)
}

// ChangeFarmerPassword updates the farmer's password.
func (c *Client) ChangeFarmerPassword(ctx context.Context, token string, in ChangePassword) error {
	return c.do(ctx, http.MethodPut, "/farmer/change-password", token, in, nil)
}
