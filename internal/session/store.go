package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanicerdas/seedbot-console/model"
)

// Record is the server-side half of a console session: the backend bearer
// token and the user it belongs to. The two are written atomically; a record
// never holds a user without a token.
type Record struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Store persists session records keyed by console session ID.
// The key format is "sess:{sessionId}".
type Store interface {
	// Get returns the record for the session, if present and unexpired.
	Get(ctx context.Context, id string) (*Record, bool, error)

	// Put writes the whole record with a TTL, replacing any previous value.
	Put(ctx context.Context, id string, rec Record, ttl time.Duration) error

	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id string) error
}

// FormatKey builds the standard session storage key.
func FormatKey(id string) string {
	return "sess:" + id
}

// --- MemoryStore ---

// MemoryStore is an in-memory Store with TTL support. Suitable for testing
// and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
}

type memEntry struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memEntry)}
}

// Get returns the record if present and unexpired.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, bool, error) {
	key := FormatKey(id)

	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	rec := entry.rec
	return &rec, true, nil
}

// Put writes the record with a TTL.
func (s *MemoryStore) Put(_ context.Context, id string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[FormatKey(id)] = &memEntry{
		rec:       rec,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes the record.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, FormatKey(id))
	return nil
}

// Len returns the number of entries (including expired ones). For testing.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// --- RedisStore ---

// RedisStore is a Redis-backed Store with TTL.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a new Redis-backed session store.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the record from Redis, if present.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, bool, error) {
	key := FormatKey(id)

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal session record %q: %w", key, err)
	}
	return &rec, true, nil
}

// Put writes the record to Redis with a TTL.
func (s *RedisStore) Put(ctx context.Context, id string, rec Record, ttl time.Duration) error {
	key := FormatKey(id)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes the record from Redis.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	key := FormatKey(id)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// HealthCheck reports whether Redis answers a ping.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
