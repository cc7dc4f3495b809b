// Package integration provides a reusable test harness for end-to-end
// testing of the seedbot console. It wires the full HTTP router against a
// stateful mock backend, with manual schedulers in place of wall-clock
// timers so revert and inactivity behavior is deterministic.
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/config"
	"github.com/tanicerdas/seedbot-console/internal/robot"
	"github.com/tanicerdas/seedbot-console/internal/sensor"
	"github.com/tanicerdas/seedbot-console/internal/session"
	"github.com/tanicerdas/seedbot-console/internal/state"
	"github.com/tanicerdas/seedbot-console/internal/timing"
	"github.com/tanicerdas/seedbot-console/internal/transport"
)

// Harness is a fully wired console instance backed by a MockBackend.
type Harness struct {
	t       *testing.T
	server  *httptest.Server
	Backend *MockBackend
	State   *state.Store

	// RevertTimer is the controller's revert slot; Fire() simulates the
	// delay elapsing.
	RevertTimer *timing.ManualScheduler
	// Watchdogs holds every inactivity watchdog armed so far, in order.
	Watchdogs []*timing.ManualScheduler

	Sessions *session.Manager
	Poller   *robot.Poller
}

// NewHarness starts the console against a fresh mock backend.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	mb := NewMockBackend(t)

	cfg := config.Defaults()
	cfg.Backend.BaseURL = mb.URL()
	cfg.Backend.Retry.MaxAttempts = 1
	cfg.Observability.Metrics.Enabled = false
	cfg.Observability.Tracing.Enabled = false

	logger := zap.NewNop()
	api := backend.New(cfg.Backend, logger, nil)

	h := &Harness{t: t, Backend: mb}

	signer := session.NewTokenSigner([]byte("integration-test-key-0123456789ab"), cfg.Session.TokenTTL)
	h.Sessions = session.NewManager(session.Options{
		Store:             session.NewMemoryStore(),
		Auth:              api,
		Signer:            signer,
		TokenTTL:          cfg.Session.TokenTTL,
		InactivityTimeout: cfg.Session.InactivityTimeout,
		NewScheduler: func() timing.Scheduler {
			sched := timing.NewManualScheduler()
			h.Watchdogs = append(h.Watchdogs, sched)
			return sched
		},
		Logger: logger,
	})

	h.State = state.NewStore()
	h.RevertTimer = timing.NewManualScheduler()

	fallback := sensor.NewFallbackEstimator(rand.New(rand.NewSource(1)))
	estimator := sensor.NewEstimator(api, fallback, cfg.Robot.RainfallDefault, logger, nil)

	ctrl := robot.NewController(robot.Config{
		Store:             h.State,
		API:               api,
		Estimator:         estimator,
		Revert:            h.RevertTimer,
		DirectionalRevert: cfg.Robot.DirectionalRevert,
		TerminalRevert:    cfg.Robot.TerminalRevert,
		Logger:            logger,
	})
	h.Poller = robot.NewPoller(ctrl, cfg.Robot.ControlPollInterval, cfg.Robot.RealtimePollInterval, logger)
	t.Cleanup(h.Poller.Shutdown)

	router := transport.NewRouter(transport.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Sessions:   h.Sessions,
		Backend:    api,
		Controller: ctrl,
		Poller:     h.Poller,
		Estimator:  estimator,
		State:      h.State,
	})
	h.server = httptest.NewServer(router)
	t.Cleanup(h.server.Close)

	return h
}

// Response is a decoded console response.
type Response struct {
	Status int
	Body   map[string]any
}

// Do issues a request to the console. A non-empty token is sent as the
// bearer Authorization header.
func (h *Harness) Do(method, path, token string, body any) Response {
	h.t.Helper()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, h.server.URL+path, reqBody)
	if err != nil {
		h.t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := Response{Status: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out.Body); err != nil {
			h.t.Fatalf("decode response %s: %v", data, err)
		}
	}
	return out
}

// Login authenticates and returns the console token.
func (h *Harness) Login(username, password string) string {
	h.t.Helper()

	resp := h.Do("POST", "/ui/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.Status != http.StatusOK {
		h.t.Fatalf("login %s: status %d, body %v", username, resp.Status, resp.Body)
	}
	token, _ := resp.Body["token"].(string)
	if token == "" {
		h.t.Fatal("login returned no console token")
	}
	return token
}

// LatestWatchdog returns the most recently created inactivity watchdog.
func (h *Harness) LatestWatchdog() *timing.ManualScheduler {
	if len(h.Watchdogs) == 0 {
		h.t.Fatal("no inactivity watchdog was created")
	}
	return h.Watchdogs[len(h.Watchdogs)-1]
}

// WaitPollerIdle gives detached poll goroutines a moment to finish their
// current cycle after deactivation.
func (h *Harness) WaitPollerIdle() {
	time.Sleep(50 * time.Millisecond)
}
