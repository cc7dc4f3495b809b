package model

import "context"

// RequestContext carries the authenticated session and tracing identifiers
// for the lifetime of a request. It is immutable after construction and safe
// for concurrent reads.
type RequestContext struct {
	Session       *Session
	CorrelationID string
	TraceID       string
}

// Authenticated reports whether the request carries an authenticated session.
func (rc *RequestContext) Authenticated() bool {
	return rc != nil && rc.Session.Authenticated()
}

// Role returns the session's role, or the empty role when unauthenticated.
func (rc *RequestContext) Role() Role {
	if rc == nil || rc.Session == nil {
		return ""
	}
	return rc.Session.User.Role
}

type contextKey struct{}

// WithRequestContext attaches a RequestContext to the given context.
func WithRequestContext(ctx context.Context, rctx *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rctx)
}

// RequestContextFrom extracts the RequestContext from the context, or
// returns nil if not present.
func RequestContextFrom(ctx context.Context) *RequestContext {
	rctx, _ := ctx.Value(contextKey{}).(*RequestContext)
	return rctx
}

// MustRequestContext extracts the RequestContext, panicking when absent.
// Safe in handlers that run behind the session middleware.
func MustRequestContext(ctx context.Context) *RequestContext {
	rctx := RequestContextFrom(ctx)
	if rctx == nil {
		panic("model: RequestContext not found in context")
	}
	return rctx
}
