package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tanicerdas/seedbot-console/model"
)

// MockBackend simulates the seedbot REST backend: credential login, bearer
// token validation, and stateful robot/sensor/threshold/history storage.
// All received robot-control actions and status pushes are recorded for
// assertion.
type MockBackend struct {
	t      *testing.T
	server *httptest.Server

	mu         sync.Mutex
	accounts   map[string]mockAccount
	tokens     map[string]string
	robot      model.RobotState
	readings   model.SensorReadings
	thresholds json.RawMessage
	history    []map[string]any
	mappings   []map[string]any
	params     map[string]float64

	// ControlActions records every action received on robot-control.
	ControlActions []string
	// StatusPushes records every status value received on robot-status PUT.
	StatusPushes []string
	// PredictStatus is the HTTP status for predict-crop. Non-2xx forces
	// the console onto its fallback heuristic.
	PredictStatus   int
	PredictResponse model.PredictionResult
}

type mockAccount struct {
	password string
	user     model.User
}

// NewMockBackend starts the mock server with one admin and one farmer
// account, a connected robot in Standby, and scenario-friendly readings.
func NewMockBackend(t *testing.T) *MockBackend {
	t.Helper()

	mb := &MockBackend{
		t: t,
		accounts: map[string]mockAccount{
			"admin": {
				password: "admin123",
				user:     model.User{ID: "u-1", Username: "admin", FullName: "Administrator", Role: model.RoleAdmin},
			},
			"tani": {
				password: "rahasia1",
				user:     model.User{ID: "u-2", Username: "tani", FullName: "Pak Tani", Role: model.RoleFarmer},
			},
		},
		tokens: make(map[string]string),
		robot: model.RobotState{
			ConnectionStatus: model.ConnectionConnected,
			OperationStatus:  model.StatusStandby,
			SeedsPlanted:     12,
			BatteryPercent:   80,
		},
		readings: model.SensorReadings{
			Suhu: 28, Kelembapan: 65, PH: 6.5,
			Nitrogen: 45, Phospor: 30, Kalium: 55,
		},
		params:        map[string]float64{"seedingDepth": 4, "holeSpacing": 20},
		PredictStatus: http.StatusInternalServerError,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", mb.handleLogin)
	mux.HandleFunc("GET /auth/me", mb.handleMe)
	mux.HandleFunc("GET /farmer/sensor-data", mb.auth(mb.handleSensorDataGet))
	mux.HandleFunc("PUT /farmer/sensor-data", mb.auth(mb.handleSensorDataPut))
	mux.HandleFunc("GET /farmer/robot-status", mb.auth(mb.handleRobotStatusGet))
	mux.HandleFunc("PUT /farmer/robot-status", mb.auth(mb.handleRobotStatusPut))
	mux.HandleFunc("POST /farmer/robot-control", mb.auth(mb.handleRobotControl))
	mux.HandleFunc("GET /farmer/robot-history", mb.auth(mb.handleHistoryGet))
	mux.HandleFunc("POST /farmer/robot-history", mb.auth(mb.handleHistoryPost))
	mux.HandleFunc("POST /farmer/predict-crop", mb.auth(mb.handlePredict))
	mux.HandleFunc("GET /farmer/sensor-thresholds", mb.auth(mb.handleThresholdsGet))
	mux.HandleFunc("PUT /farmer/sensor-thresholds", mb.auth(mb.handleThresholdsPut))
	mux.HandleFunc("GET /farmer/parameters", mb.auth(mb.handleParamsGet))
	mux.HandleFunc("PUT /farmer/parameters", mb.auth(mb.handleParamsPut))
	mux.HandleFunc("GET /farmer/parameters/default", mb.auth(mb.handleParamsDefault))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /news", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"news": []any{}})
	})
	mux.HandleFunc("GET /admin/parameters", mb.auth(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]float64{"defaultDepth": 5, "defaultSpacing": 25})
	}))
	mux.HandleFunc("GET /admin/users", mb.auth(mb.handleUsers))

	mb.server = httptest.NewServer(mux)
	t.Cleanup(mb.server.Close)
	return mb
}

// URL returns the mock backend's base URL.
func (mb *MockBackend) URL() string {
	return mb.server.URL
}

// Robot returns the backend-side robot state.
func (mb *MockBackend) Robot() model.RobotState {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.robot
}

// SetRobot overwrites the backend-side robot state.
func (mb *MockBackend) SetRobot(r model.RobotState) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.robot = r
}

// SetReadings overwrites the stored sensor readings.
func (mb *MockBackend) SetReadings(r model.SensorReadings) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.readings = r
}

// History returns the recorded snapshot entries.
func (mb *MockBackend) History() []map[string]any {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	out := make([]map[string]any, len(mb.history))
	copy(out, mb.history)
	return out
}

// --- handlers ---

func (mb *MockBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	mb.mu.Lock()
	defer mb.mu.Unlock()
	acct, ok := mb.accounts[body.Username]
	if !ok || acct.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Username atau password salah"})
		return
	}
	token := fmt.Sprintf("bk-%s-%d", body.Username, len(mb.tokens)+1)
	mb.tokens[token] = body.Username
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": acct.user})
}

func (mb *MockBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	username, ok := mb.tokens[requestToken(r)]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token tidak valid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": mb.accounts[username].user})
}

// RevokeTokens invalidates every issued backend token, simulating
// server-side expiry.
func (mb *MockBackend) RevokeTokens() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.tokens = make(map[string]string)
}

// auth wraps a handler with bearer token validation.
func (mb *MockBackend) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mb.mu.Lock()
		_, ok := mb.tokens[requestToken(r)]
		mb.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token tidak valid"})
			return
		}
		next(w, r)
	}
}

func (mb *MockBackend) handleSensorDataGet(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"sensorData": mb.readings})
}

func (mb *MockBackend) handleSensorDataPut(w http.ResponseWriter, r *http.Request) {
	var readings model.SensorReadings
	json.NewDecoder(r.Body).Decode(&readings)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.readings = readings
	writeJSON(w, http.StatusOK, nil)
}

func (mb *MockBackend) handleRobotStatusGet(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"robotStatus": mb.robot})
}

func (mb *MockBackend) handleRobotStatusPut(w http.ResponseWriter, r *http.Request) {
	var pushed model.RobotState
	json.NewDecoder(r.Body).Decode(&pushed)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.robot = pushed
	mb.StatusPushes = append(mb.StatusPushes, pushed.OperationStatus.String())
	writeJSON(w, http.StatusOK, map[string]any{"robotStatus": mb.robot})
}

func (mb *MockBackend) handleRobotControl(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.ControlActions = append(mb.ControlActions, body.Action)
	mb.robot.OperationStatus = model.ParseOperationStatus(body.Action)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         fmt.Sprintf("Perintah %s berhasil dikirim ke robot!", body.Action),
		"operationStatus": body.Action,
	})
}

func (mb *MockBackend) handleHistoryGet(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"history": mb.history})
}

func (mb *MockBackend) handleHistoryPost(w http.ResponseWriter, r *http.Request) {
	var entry map[string]any
	json.NewDecoder(r.Body).Decode(&entry)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.history = append(mb.history, entry)
	writeJSON(w, http.StatusCreated, nil)
}

func (mb *MockBackend) handlePredict(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	status := mb.PredictStatus
	resp := mb.PredictResponse
	mb.mu.Unlock()
	if status >= 400 {
		writeJSON(w, status, map[string]string{"error": "model service unavailable"})
		return
	}
	writeJSON(w, status, resp)
}

func (mb *MockBackend) handleThresholdsGet(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.thresholds == nil {
		writeJSON(w, http.StatusOK, map[string]any{"thresholds": map[string]any{}})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"thresholds":%s}`, mb.thresholds)
}

func (mb *MockBackend) handleThresholdsPut(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	json.NewDecoder(r.Body).Decode(&raw)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.thresholds = raw
	writeJSON(w, http.StatusOK, nil)
}

func (mb *MockBackend) handleParamsGet(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"parameters": mb.params})
}

func (mb *MockBackend) handleParamsPut(w http.ResponseWriter, r *http.Request) {
	var params map[string]float64
	json.NewDecoder(r.Body).Decode(&params)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.params = params
	writeJSON(w, http.StatusOK, nil)
}

func (mb *MockBackend) handleParamsDefault(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"parameters": map[string]float64{"seedingDepth": 5, "holeSpacing": 25},
	})
}

func (mb *MockBackend) handleUsers(w http.ResponseWriter, _ *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	users := make([]model.User, 0, len(mb.accounts))
	for _, acct := range mb.accounts {
		if acct.user.Role == model.RoleFarmer {
			users = append(users, acct.user)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// --- helpers ---

func requestToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}
