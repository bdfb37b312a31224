package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the intake conversation state for one end user. Absence of a
// session means the user is past intake and all their messages are
// relayed.
type State string

// StateAwaitingAccountInfo marks a user between /start and their first
// intake payload.
const StateAwaitingAccountInfo State = "AWAITING_ACCOUNT_INFO"

// SessionStore persists per-user intake conversation state.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (State, bool, error)
	Set(ctx context.Context, userID int64, state State) error
	Clear(ctx context.Context, userID int64) error
}

// RedisSessionStore keeps intake sessions in Redis so they survive
// process restarts. Sessions expire after the configured TTL; an expired
// session simply means the user re-runs /start.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore builds the store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("intake_session:%d", userID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID int64) (State, bool, error) {
	val, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return State(val), true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, userID int64, state State) error {
	return s.client.Set(ctx, sessionKey(userID), string(state), s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}

// MemorySessionStore is an in-process SessionStore used in tests and when
// Redis is unavailable.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]State
}

// NewMemorySessionStore builds the store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]State)}
}

func (s *MemorySessionStore) Get(ctx context.Context, userID int64) (State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[userID]
	return state, ok, nil
}

func (s *MemorySessionStore) Set(ctx context.Context, userID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = state
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
