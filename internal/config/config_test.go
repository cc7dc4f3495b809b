package config

import (
	"testing"
	"time"
)

func TestLoad_valid(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Backend.BaseURL != "https://api.seedbot.id" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.CircuitBreaker.FailureThreshold != 4 {
		t.Errorf("CircuitBreaker.FailureThreshold = %d, want 4", cfg.Backend.CircuitBreaker.FailureThreshold)
	}
	if cfg.Backend.Retry.MaxAttempts != 2 {
		t.Errorf("Retry.MaxAttempts = %d, want 2", cfg.Backend.Retry.MaxAttempts)
	}
	if cfg.Session.TokenTTL != 6*time.Hour {
		t.Errorf("Session.TokenTTL = %v, want 6h", cfg.Session.TokenTTL)
	}
	if cfg.Session.InactivityTimeout != 15*time.Minute {
		t.Errorf("Session.InactivityTimeout = %v, want 15m", cfg.Session.InactivityTimeout)
	}
	if cfg.Session.Store.Driver != "redis" {
		t.Errorf("Store.Driver = %q, want redis", cfg.Session.Store.Driver)
	}
	if cfg.Session.Store.DB != 2 {
		t.Errorf("Store.DB = %d, want 2", cfg.Session.Store.DB)
	}
	if cfg.Robot.DirectionalRevert != 2*time.Second {
		t.Errorf("Robot.DirectionalRevert = %v, want 2s", cfg.Robot.DirectionalRevert)
	}
	if cfg.Robot.RainfallDefault != 120 {
		t.Errorf("Robot.RainfallDefault = %v, want 120", cfg.Robot.RainfallDefault)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.Tracing.Enabled {
		t.Error("Tracing.Enabled = false, want true")
	}
	if cfg.Observability.Tracing.SamplingRate != 0.5 {
		t.Errorf("Tracing.SamplingRate = %v, want 0.5", cfg.Observability.Tracing.SamplingRate)
	}
}

func TestLoad_fileValuesKeepUnsetDefaults(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// The file never mentions these, so the defaults must survive the merge.
	if cfg.Session.SigningKeyEnv != "SEEDBOT_SESSION_KEY" {
		t.Errorf("Session.SigningKeyEnv = %q, want default", cfg.Session.SigningKeyEnv)
	}
	if cfg.Session.Store.AddrEnv != "SEEDBOT_REDIS_ADDR" {
		t.Errorf("Store.AddrEnv = %q, want default", cfg.Session.Store.AddrEnv)
	}
	if cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want default", cfg.Observability.Metrics.Path)
	}
}

func TestLoad_missing_file(t *testing.T) {
	_, err := Load("testdata/nonexistent.yaml")
	if err == nil {
		t.Fatal("Load() with missing file should return error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Session.TokenTTL != 12*time.Hour {
		t.Errorf("default Session.TokenTTL = %v, want 12h", cfg.Session.TokenTTL)
	}
	if cfg.Session.InactivityTimeout != 30*time.Minute {
		t.Errorf("default InactivityTimeout = %v, want 30m", cfg.Session.InactivityTimeout)
	}
	if cfg.Robot.ControlPollInterval != 2*time.Second {
		t.Errorf("default ControlPollInterval = %v, want 2s", cfg.Robot.ControlPollInterval)
	}
	if cfg.Robot.RealtimePollInterval != 5*time.Second {
		t.Errorf("default RealtimePollInterval = %v, want 5s", cfg.Robot.RealtimePollInterval)
	}
	if cfg.Robot.DirectionalRevert != 3*time.Second {
		t.Errorf("default DirectionalRevert = %v, want 3s", cfg.Robot.DirectionalRevert)
	}
	if cfg.Robot.TerminalRevert != 5*time.Second {
		t.Errorf("default TerminalRevert = %v, want 5s", cfg.Robot.TerminalRevert)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("default LogLevel = %q, want info", cfg.Observability.LogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEEDBOT_SERVER_PORT", "3000")
	t.Setenv("SEEDBOT_BACKEND_BASE_URL", "https://staging.seedbot.id")
	t.Setenv("SEEDBOT_LOG_LEVEL", "error")
	t.Setenv("SEEDBOT_SESSION_STORE_DRIVER", "memory")

	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000 (env override)", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "https://staging.seedbot.id" {
		t.Errorf("Backend.BaseURL = %q, want env override", cfg.Backend.BaseURL)
	}
	if cfg.Observability.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error (env override)", cfg.Observability.LogLevel)
	}
	if cfg.Session.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory (env override)", cfg.Session.Store.Driver)
	}
}

func TestValidate_invalid_port(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.BaseURL = "https://api.seedbot.id"
	cfg.Server.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with port 0 should return error")
	}
}

func TestValidate_missing_backend_url(t *testing.T) {
	cfg := Defaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() without backend.base_url should return error")
	}
}

func TestValidate_nonpositive_revert(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.BaseURL = "https://api.seedbot.id"
	cfg.Robot.DirectionalRevert = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with zero revert delay should return error")
	}
}
