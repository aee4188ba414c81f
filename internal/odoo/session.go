package odoo

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Backend is what Sessions needs from the remote side.
type Backend interface {
	executor
	Authenticate(ctx context.Context) (int64, error)
	Identity() string
}

// SessionStore caches session ids between requests.
type SessionStore interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, uid int64, ttl time.Duration) error
}

// Sessions establishes ERP sessions. Concurrent Connect calls share one
// authenticate round trip; with a store, ids are reused until the TTL ends.
type Sessions struct {
	backend Backend
	store   SessionStore
	ttl     time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// SessionOption configures Sessions.
type SessionOption func(*Sessions)

// WithSessionStore enables session reuse through store.
func WithSessionStore(store SessionStore, ttl time.Duration) SessionOption {
	return func(s *Sessions) {
		s.store = store
		s.ttl = ttl
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Sessions) {
		s.logger = logger
	}
}

// NewSessions constructs Sessions over backend.
func NewSessions(backend Backend, opts ...SessionOption) *Sessions {
	s := &Sessions{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect returns a catalog bound to a valid session.
func (s *Sessions) Connect(ctx context.Context) (*Catalog, error) {
	key := "erp:session:" + s.backend.Identity()
	if s.store != nil {
		uid, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.Warn("session cache read", slog.Any("error", err))
		} else if ok {
			return NewCatalog(s.backend, uid), nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Shared by every waiter, so one caller going away must not fail the rest.
		ctx := context.WithoutCancel(ctx)
		uid, err := s.backend.Authenticate(ctx)
		if err != nil {
			return int64(0), err
		}
		if s.store != nil {
			if err := s.store.Set(ctx, key, uid, s.ttl); err != nil {
				s.logger.Warn("session cache write", slog.Any("error", err))
			}
		}
		return uid, nil
	})
	if err != nil {
		return nil, err
	}
	return NewCatalog(s.backend, v.(int64)), nil
}

// RedisSessionStore keeps session ids in Redis.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Get returns the cached id for key.
func (s *RedisSessionStore) Get(ctx context.Context, key string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || uid <= 0 {
		return 0, false, nil
	}
	return uid, true, nil
}

// Set stores uid under key for ttl.
func (s *RedisSessionStore) Set(ctx context.Context, key string, uid int64, ttl time.Duration) error {
	return s.client.Set(ctx, key, strconv.FormatInt(uid, 10), ttl).Err()
}
