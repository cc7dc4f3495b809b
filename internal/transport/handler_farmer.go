package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/robot"
	"github.com/tanicerdas/seedbot-console/internal/sensor"
	"github.com/tanicerdas/seedbot-console/internal/state"
	"github.com/tanicerdas/seedbot-console/model"
)

// handleDashboard returns the realtime dashboard snapshot: fresh sensor
// readings, their classification against the active thresholds, the crop
// suitability estimate, and the cached robot state.
func handleDashboard(ctrl *robot.Controller, store *state.Store, estimator *sensor.Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		token := rctx.Session.Token

		readings, err := ctrl.RefreshReadings(r.Context(), token)
		if err != nil {
			WriteError(w, err)
			return
		}

		prediction := estimator.Estimate(r.Context(), token, readings)

		WriteJSON(w, http.StatusOK, struct {
			Readings       model.SensorReadings                     `json:"readings"`
			Classification map[model.Metric]model.ClassifiedReading `json:"classification"`
			Prediction     model.PredictionResult                   `json:"prediction"`
			Robot          model.RobotState                         `json:"robot"`
			Probing        bool                                     `json:"probing"`
		}{
			Readings:       readings,
			Classification: sensor.ClassifyAll(readings, store.Thresholds()),
			Prediction:     prediction,
			Robot:          store.Robot(),
			Probing:        store.Probing(),
		})
	}
}

// handleSensorDataUpdate pushes synthetic readings to the backend, for the
// dummy-data menu.
func handleSensorDataUpdate(api *backend.Client, store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body model.SensorReadings
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		if err := api.UpdateSensorData(r.Context(), rctx.Session.Token, body); err != nil {
			WriteError(w, err)
			return
		}
		store.SetReadings(body)
		WriteJSON(w, http.StatusOK, struct {
			Readings model.SensorReadings `json:"readings"`
		}{Readings: body})
	}
}

func handleThresholdsGet(api *backend.Client, store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		thresholds, err := api.GetSensorThresholds(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		store.SetThresholds(thresholds)
		WriteJSON(w, http.StatusOK, struct {
			Thresholds model.Thresholds `json:"thresholds"`
		}{Thresholds: thresholds})
	}
}

// handleThresholdsUpdate validates and persists the classification ranges.
// An inverted range is rejected here so the classifier never sees one from
// this path.
func handleThresholdsUpdate(api *backend.Client, store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			Thresholds model.Thresholds `json:"thresholds" validate:"required"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		var details []model.FieldError
		for _, metric := range model.Metrics {
			rng, ok := body.Thresholds[metric]
			if !ok {
				continue
			}
			if rng.Min > rng.Max {
				details = append(details, model.FieldError{
					Field:   string(metric),
					Message: "minimum must not exceed maximum",
				})
			}
		}
		if len(details) > 0 {
			WriteValidationError(w, details)
			return
		}

		if err := api.UpdateSensorThresholds(r.Context(), rctx.Session.Token, body.Thresholds); err != nil {
			WriteError(w, err)
			return
		}
		store.SetThresholds(body.Thresholds)
		WriteJSON(w, http.StatusOK, struct {
			Thresholds model.Thresholds `json:"thresholds"`
		}{Thresholds: body.Thresholds})
	}
}

func handleHistoryList(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		history, err := api.GetRobotHistory(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			History []model.HistoryEntry `json:"history"`
		}{History: history})
	}
}

func handleHistoryStatusUpdate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			IsSuitable *bool `json:"isSuitable" validate:"required"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		if err := api.UpdateHistoryStatus(r.Context(), rctx.Session.Token, *body.IsSuitable); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Status histori diperbarui"})
	}
}

// mappingView decorates a mapping with the closed-path advisory.
type mappingView struct {
	model.Mapping
	Closed bool `json:"closed"`
}

func mappingViews(mappings []model.Mapping) []mappingView {
	views := make([]mappingView, len(mappings))
	for i, m := range mappings {
		views[i] = mappingView{Mapping: m, Closed: m.Closed()}
	}
	return views
}

func handleMappingList(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		mappings, err := api.GetMappings(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Mappings []mappingView `json:"mappings"`
		}{Mappings: mappingViews(mappings)})
	}
}

func handleMappingGet(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		mapping, err := api.GetMapping(r.Context(), rctx.Session.Token, chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Mapping mappingView `json:"mapping"`
		}{Mapping: mappingView{Mapping: mapping, Closed: mapping.Closed()}})
	}
}

func handleMappingCreate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body backend.MappingInput
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		mapping, err := api.CreateMapping(r.Context(), rctx.Session.Token, body)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, struct {
			Mapping mappingView `json:"mapping"`
		}{Mapping: mappingView{Mapping: mapping, Closed: mapping.Closed()}})
	}
}

func handleMappingUpdate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body backend.MappingInput
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		mapping, err := api.UpdateMapping(r.Context(), rctx.Session.Token, chi.URLParam(r, "id"), body)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Mapping mappingView `json:"mapping"`
		}{Mapping: mappingView{Mapping: mapping, Closed: mapping.Closed()}})
	}
}

func handleMappingDelete(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		if err := api.DeleteMapping(r.Context(), rctx.Session.Token, chi.URLParam(r, "id")); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Mapping dihapus"})
	}
}

func handleParametersGet(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		params, err := api.GetFarmerParameters(r.Context(), rctx.Session.Token)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Parameters backend.FarmerParameters `json:"parameters"`
		}{Parameters: params})
	}
}

func handleParametersUpdate(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())

		var body struct {
			SeedingDepth float64 `json:"seedingDepth" validate:"required,gt=0"`
			HoleSpacing  float64 `json:"holeSpacing" validate:"required,gt=0"`
		}
		if ee := decodeAndValidate(r, &body); ee != nil {
			WriteError(w, ee)
			return
		}

		params := backend.FarmerParameters{
			SeedingDepth: body.SeedingDepth,
			HoleSpacing:  body.HoleSpacing,
		}
		if err := api.UpdateFarmerParameters(r.Context(), rctx.Session.Token, params); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Parameters backend.FarmerParameters `json:"parameters"`
		}{Parameters: params})
	}
}

// handleParametersReset loads the admin-set defaults and writes them back
// as the farmer's active sowing parameters.
func handleParametersReset(api *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := model.MustRequestContext(r.Context())
		token := rctx.Session.Token

		defaults, err := api.GetFarmerDefaultParameters(r.Context(), token)
		if err != nil {
			WriteError(w, err)
			return
		}
		if err := api.UpdateFarmerParameters(r.Context(), token, defaults); err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, struct {
			Parameters backend.FarmerParameters `json:"parameters"`
		}{Parameters: defaults})
	}
}
