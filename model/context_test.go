package model

import (
	"context"
	"testing"
)

func TestRequestContext_roundTrip(t *testing.T) {
	rctx := &RequestContext{
		Session:       &Session{ID: "sess-1", Token: "tok", User: User{Username: "tani", Role: RoleFarmer}},
		CorrelationID: "abc-123",
	}
	ctx := WithRequestContext(context.Background(), rctx)

	got := RequestContextFrom(ctx)
	if got != rctx {
		t.Fatalf("RequestContextFrom returned %v, want the stored pointer", got)
	}
	if got.CorrelationID != "abc-123" {
		t.Errorf("CorrelationID = %q", got.CorrelationID)
	}
}

func TestRequestContextFrom_absent(t *testing.T) {
	if got := RequestContextFrom(context.Background()); got != nil {
		t.Errorf("RequestContextFrom on empty context = %v, want nil", got)
	}
}

func TestMustRequestContext_panicsWhenAbsent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRequestContext should panic on empty context")
		}
	}()
	MustRequestContext(context.Background())
}

func TestRequestContext_Authenticated(t *testing.T) {
	tests := []struct {
		name string
		rctx *RequestContext
		want bool
	}{
		{"nil context", nil, false},
		{"no session", &RequestContext{}, false},
		{"session without token", &RequestContext{Session: &Session{ID: "s"}}, false},
		{"session with token", &RequestContext{Session: &Session{ID: "s", Token: "tok"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rctx.Authenticated(); got != tt.want {
				t.Errorf("Authenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestContext_Role(t *testing.T) {
	var nilCtx *RequestContext
	if got := nilCtx.Role(); got != "" {
		t.Errorf("nil Role() = %q, want empty", got)
	}

	rctx := &RequestContext{Session: &Session{Token: "tok", User: User{Role: RoleAdmin}}}
	if got := rctx.Role(); got != RoleAdmin {
		t.Errorf("Role() = %q, want admin", got)
	}
}

func TestSession_Authenticated(t *testing.T) {
	var nilSess *Session
	if nilSess.Authenticated() {
		t.Error("nil session should not be authenticated")
	}
	if (&Session{}).Authenticated() {
		t.Error("empty session should not be authenticated")
	}
	if !(&Session{Token: "tok"}).Authenticated() {
		t.Error("session with token should be authenticated")
	}
}

func TestSession_HasUser(t *testing.T) {
	if (&Session{Token: "tok"}).HasUser() {
		t.Error("session without user record should report HasUser false")
	}
	s := &Session{Token: "tok", User: User{Username: "tani"}}
	if !s.HasUser() {
		t.Error("session with user record should report HasUser true")
	}
}
