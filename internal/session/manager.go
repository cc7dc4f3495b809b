package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/internal/timing"
	"github.com/tanicerdas/seedbot-console/model"
)

// Authenticator is the slice of the backend client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (backend.LoginResult, error)
	Me(ctx context.Context, token string) (model.User, error)
}

// Manager owns console sessions: establishing them against the backend,
// restoring them from a console token, and expiring them on inactivity.
type Manager struct {
	store        Store
	auth         Authenticator
	signer       *TokenSigner
	tokenTTL     time.Duration
	inactivity   time.Duration
	newScheduler func() timing.Scheduler
	logger       *zap.Logger
	metrics      *observability.Metrics

	mu        sync.Mutex
	watchdogs map[string]timing.Scheduler
}

// Options configures a Manager.
type Options struct {
	Store             Store
	Auth              Authenticator
	Signer            *TokenSigner
	TokenTTL          time.Duration
	InactivityTimeout time.Duration
	// NewScheduler builds the per-session watchdog slot. Defaults to the
	// wall-clock scheduler.
	NewScheduler func() timing.Scheduler
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	newSched := opts.NewScheduler
	if newSched == nil {
		newSched = func() timing.Scheduler { return timing.NewSlotScheduler() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:        opts.Store,
		auth:         opts.Auth,
		signer:       opts.Signer,
		tokenTTL:     opts.TokenTTL,
		inactivity:   opts.InactivityTimeout,
		newScheduler: newSched,
		logger:       logger,
		metrics:      opts.Metrics,
		watchdogs:    make(map[string]timing.Scheduler),
	}
}

// LoginResult is a freshly established session plus the console token the
// browser should hold.
type LoginResult struct {
	Session      model.Session
	ConsoleToken string
}

// Login exchanges credentials with the backend and establishes a session.
// The backend token and user record are written together; a failed login
// leaves no partial state behind.
func (m *Manager) Login(ctx context.Context, username, password string) (LoginResult, error) {
	res, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}
	if !res.User.Role.Valid() {
		return LoginResult{}, model.NewAuthError("peran pengguna tidak dikenali")
	}

	id := uuid.NewString()
	rec := Record{Token: res.Token, User: res.User}
	if err := m.store.Put(ctx, id, rec, m.tokenTTL); err != nil {
		m.logger.Error("session store write failed", zap.Error(err))
		return LoginResult{}, model.NewInternalError()
	}

	consoleToken, err := m.signer.Mint(id, res.User)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		m.logger.Error("console token mint failed", zap.Error(err))
		return LoginResult{}, model.NewInternalError()
	}

	m.logger.Info("session established",
		zap.String("session_id", id),
		zap.String("username", res.User.Username),
		zap.String("role", string(res.User.Role)))

	return LoginResult{
		Session:      model.Session{ID: id, Token: res.Token, User: res.User},
		ConsoleToken: consoleToken,
	}, nil
}

// Restore rebuilds a session from a console token. The stored backend token
// is revalidated against the backend; any failure clears the stored record
// and yields the logged-out state rather than an error the caller must
// distinguish.
func (m *Manager) Restore(ctx context.Context, consoleToken string) (model.Session, error) {
	if consoleToken == "" {
		return model.Session{}, nil
	}

	id, err := m.signer.Verify(consoleToken)
	if err != nil {
		return model.Session{}, nil
	}

	rec, found, err := m.store.Get(ctx, id)
	if err != nil {
		m.logger.Error("session store read failed", zap.Error(err))
		return model.Session{}, model.NewInternalError()
	}
	if !found {
		return model.Session{}, nil
	}

	user, err := m.auth.Me(ctx, rec.Token)
	if err != nil {
		// A token is never left persisted without a validated user, so
		// an unreachable backend clears the record the same as a
		// rejected token does.
		m.drop(ctx, id, restoreDropReason(err))
		return model.Session{}, nil
	}

	// Refresh the stored user record in case profile data changed.
	if user != rec.User {
		rec.User = user
		if err := m.store.Put(ctx, id, *rec, m.tokenTTL); err != nil {
			m.logger.Warn("session record refresh failed", zap.String("session_id", id), zap.Error(err))
		}
	}

	return model.Session{ID: id, Token: rec.Token, User: user}, nil
}

// Load fetches the session record without touching the backend. Used by the
// auth middleware on every request.
func (m *Manager) Load(ctx context.Context, consoleToken string) (model.Session, error) {
	id, err := m.signer.Verify(consoleToken)
	if err != nil {
		return model.Session{}, model.NewAuthError("token sesi tidak valid")
	}

	rec, found, err := m.store.Get(ctx, id)
	if err != nil {
		m.logger.Error("session store read failed", zap.Error(err))
		return model.Session{}, model.NewInternalError()
	}
	if !found {
		return model.Session{}, model.NewAuthError("sesi sudah berakhir")
	}

	user := rec.User
	return model.Session{ID: id, Token: rec.Token, User: user}, nil
}

// Logout clears the session record and disarms its watchdog.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	m.Disarm(sessionID)
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logger.Error("session store delete failed", zap.Error(err))
		return model.NewInternalError()
	}
	m.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// IsAuthenticated reports whether a live record exists for the session.
func (m *Manager) IsAuthenticated(ctx context.Context, sessionID string) bool {
	_, found, err := m.store.Get(ctx, sessionID)
	return err == nil && found
}

// --- inactivity watchdog ---

// Arm starts (or restarts) the inactivity countdown for a session. Called
// when navigation lands on a protected page.
func (m *Manager) Arm(sessionID string) {
	m.mu.Lock()
	sched, ok := m.watchdogs[sessionID]
	if !ok {
		sched = m.newScheduler()
		m.watchdogs[sessionID] = sched
	}
	m.mu.Unlock()

	sched.Schedule(m.inactivity, func() { m.expire(sessionID) })
}

// Disarm cancels a session's inactivity countdown. Called when navigation
// leaves the protected pages.
func (m *Manager) Disarm(sessionID string) {
	m.mu.Lock()
	sched, ok := m.watchdogs[sessionID]
	if ok {
		delete(m.watchdogs, sessionID)
	}
	m.mu.Unlock()

	if ok {
		sched.Cancel()
	}
}

// RecordActivity restarts the countdown if it is armed. Unarmed sessions
// are left alone so activity on public pages never arms the watchdog.
func (m *Manager) RecordActivity(sessionID string) {
	m.mu.Lock()
	sched, ok := m.watchdogs[sessionID]
	m.mu.Unlock()

	if ok {
		sched.Schedule(m.inactivity, func() { m.expire(sessionID) })
	}
}

// Armed reports whether the session has a live watchdog. For testing.
func (m *Manager) Armed(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.watchdogs[sessionID]
	return ok
}

func (m *Manager) expire(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.drop(ctx, sessionID, "inactivity timeout")
	if m.metrics != nil {
		m.metrics.RecordSessionExpired()
	}
}

func restoreDropReason(err error) string {
	var envelope *model.ErrorEnvelope
	if errors.As(err, &envelope) && (envelope.Code == model.ErrAuth || envelope.Code == model.ErrForbidden) {
		return "backend rejected stored token"
	}
	return "stored token could not be revalidated"
}

func (m *Manager) drop(ctx context.Context, sessionID, reason string) {
	m.Disarm(sessionID)
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logger.Warn("session cleanup failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	m.logger.Info("session dropped", zap.String("session_id", sessionID), zap.String("reason", reason))
}
