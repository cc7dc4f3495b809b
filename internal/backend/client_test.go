package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tanicerdas/seedbot-console/internal/config"
	"github.com/tanicerdas/seedbot-console/model"
)

func testConfig(baseURL string) config.BackendConfig {
	return config.BackendConfig{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
		},
		Retry: config.RetryConfig{
			MaxAttempts:       3,
			BackoffInitial:    time.Millisecond,
			BackoffMultiplier: 2,
			BackoffMax:        5 * time.Millisecond,
			IdempotentOnly:    true,
		},
	}
}

func newTestClient(baseURL string) *Client {
	return New(testConfig(baseURL), nil, nil)
}

func TestClient_LoginDecodesTokenAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "tani" || body["password"] != "rahasia1" {
			t.Errorf("credentials not forwarded: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "bk-token",
			"user": map[string]string{
				"id": "u-2", "username": "tani", "fullName": "Pak Tani", "role": "farmer",
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	res, err := c.Login(context.Background(), "tani", "rahasia1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Token != "bk-token" {
		t.Errorf("token = %q, want bk-token", res.Token)
	}
	if res.User.Username != "tani" || res.User.Role != model.RoleFarmer {
		t.Errorf("user = %+v", res.User)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"user": map[string]string{"id": "u-1", "role": "admin"}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.Me(context.Background(), "tok-123"); err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestClient_RetriesIdempotentOn500(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sensorData": map[string]float64{"suhu": 28},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	readings, err := c.GetSensorData(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetSensorData() error = %v", err)
	}
	if readings.Suhu != 28 {
		t.Errorf("suhu = %v, want 28", readings.Suhu)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("backend calls = %d, want 3", n)
	}
}

func TestClient_DoesNotRetryNonIdempotentMethods(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.RobotControl(context.Background(), "tok", "Maju")
	if err == nil {
		t.Fatal("RobotControl() should fail")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("backend calls = %d, want 1 (POST must not be retried)", n)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "tanggal tidak valid"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.GetRobotHistory(context.Background(), "tok")
	var env *model.ErrorEnvelope
	if !errors.As(err, &env) {
		t.Fatalf("error = %v, want *model.ErrorEnvelope", err)
	}
	if env.Code != model.ErrBadRequest {
		t.Errorf("code = %q, want %q", env.Code, model.ErrBadRequest)
	}
	if env.Message != "tanggal tidak valid" {
		t.Errorf("message = %q, backend message should pass through", env.Message)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}
}

func TestClient_TranslatesStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, model.ErrAuth},
		{"forbidden", http.StatusForbidden, model.ErrAuth},
		{"not found", http.StatusNotFound, model.ErrNotFound},
		{"server error", http.StatusInternalServerError, model.ErrBackendUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newTestClient(srv.URL)
			_, err := c.Me(context.Background(), "tok")
			var env *model.ErrorEnvelope
			if !errors.As(err, &env) {
				t.Fatalf("error = %v, want *model.ErrorEnvelope", err)
			}
			if env.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Code, tt.wantCode)
			}
		})
	}
}

func TestClient_BreakerOpensAndShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.CircuitBreaker.FailureThreshold = 2
	cfg.Retry.MaxAttempts = 1
	c := New(cfg, nil, nil)

	c.GetSensorData(context.Background(), "tok")
	c.GetSensorData(context.Background(), "tok") // trips the breaker
	before := atomic.LoadInt32(&calls)

	_, err := c.GetSensorData(context.Background(), "tok")
	var env *model.ErrorEnvelope
	if !errors.As(err, &env) || env.Code != model.ErrBackendUnavailable {
		t.Fatalf("error = %v, want BACKEND_UNAVAILABLE", err)
	}
	if after := atomic.LoadInt32(&calls); after != before {
		t.Errorf("open breaker still hit the backend (%d -> %d calls)", before, after)
	}
}

func TestClient_ContextTimeoutBecomesBackendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetSensorData(ctx, "tok")
	var env *model.ErrorEnvelope
	if !errors.As(err, &env) {
		t.Fatalf("error = %v, want *model.ErrorEnvelope", err)
	}
	if env.Code != model.ErrBackendTimeout {
		t.Errorf("code = %q, want %q", env.Code, model.ErrBackendTimeout)
	}
}

func TestClient_ConnectionRefusedBecomesUnavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Retry.MaxAttempts = 1
	c := New(cfg, nil, nil)

	_, err := c.GetSensorData(context.Background(), "tok")
	var env *model.ErrorEnvelope
	if !errors.As(err, &env) {
		t.Fatalf("error = %v, want *model.ErrorEnvelope", err)
	}
	if env.Code != model.ErrBackendUnavailable {
		t.Errorf("code = %q, want %q", env.Code, model.ErrBackendUnavailable)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s, want /health", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}

	healthy = false
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail on 503")
	}
}
