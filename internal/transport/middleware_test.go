package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/config"
	"github.com/tanicerdas/seedbot-console/model"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withSession(r *http.Request, role model.Role) *http.Request {
	rctx := &model.RequestContext{
		Session: &model.Session{
			ID:    "sess-1",
			Token: "bk-token",
			User:  model.User{ID: "u-1", Username: "someone", Role: role},
		},
	}
	return r.WithContext(model.WithRequestContext(r.Context(), rctx))
}

func TestRecovery_catchesPanic(t *testing.T) {
	h := Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var resp struct {
		Error model.ErrorEnvelope `json:"error"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error.Code != model.ErrInternalError {
		t.Errorf("code = %q, want INTERNAL_ERROR", resp.Error.Code)
	}
}

func TestCORS_allowedOrigin(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://console.seedbot.id"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization"},
		MaxAge:         600,
	})(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://console.seedbot.id")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://console.seedbot.id" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestCORS_unknownOriginGetsNoHeaders(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://console.seedbot.id"},
	})(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty", got)
	}
}

func TestCORS_preflight(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://console.seedbot.id"},
		AllowedMethods: []string{"GET", "POST"},
	})(okHandler())

	r := httptest.NewRequest("OPTIONS", "/", nil)
	r.Header.Set("Origin", "https://console.seedbot.id")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 204 {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}

func TestRequestID_generatesWhenAbsent(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFrom(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if seen == "" {
		t.Error("correlation ID not set in context")
	}
	if got := w.Header().Get("X-Correlation-Id"); got != seen {
		t.Errorf("response header = %q, context = %q", got, seen)
	}
}

func TestRequestID_propagatesHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFrom(r.Context())
	}))

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Correlation-Id", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if seen != "abc-123" {
		t.Errorf("correlation ID = %q, want abc-123", seen)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(okHandler())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestRequireSession_rejectsAnonymous(t *testing.T) {
	h := RequireSession(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(model.WithRequestContext(r.Context(), &model.RequestContext{}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireSession_passesAuthenticated(t *testing.T) {
	h := RequireSession(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, withSession(httptest.NewRequest("GET", "/", nil), model.RoleFarmer))

	if w.Code != 200 {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(model.RoleAdmin)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, withSession(httptest.NewRequest("GET", "/", nil), model.RoleFarmer))
	if w.Code != 403 {
		t.Errorf("farmer on admin route: status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, withSession(httptest.NewRequest("GET", "/", nil), model.RoleAdmin))
	if w.Code != 200 {
		t.Errorf("admin on admin route: status = %d, want 200", w.Code)
	}
}

func TestHandlerTimeout_setsDeadline(t *testing.T) {
	var hasDeadline bool
	h := HandlerTimeout(5 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !hasDeadline {
		t.Error("request context has no deadline")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic dXNlcg==", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tc := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(r); got != tc.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
