package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zuscore/internal/domain"
	"zuscore/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore is the multi-instance Store backend: session state is
// serialised as JSON and held in Redis, with a short-lived distributed lock
// guarding the read-modify-write cycle so the single-writer-per-session
// discipline holds across process boundaries, not just within one.
type RedisStore struct {
	client      *redis.Client
	idleTimeout time.Duration
	lockTTL     time.Duration
	retryDelay  time.Duration
	maxRetries  int
	now         func() time.Time
	log         *logger.Logger
}

// NewRedisStore creates a Redis-backed Store against an already-configured
// client.
func NewRedisStore(client *redis.Client, idleTimeout time.Duration, log *logger.Logger) *RedisStore {
	return &RedisStore{
		client:      client,
		idleTimeout: idleTimeout,
		lockTTL:     5 * time.Second,
		retryDelay:  25 * time.Millisecond,
		maxRetries:  80,
		now:         time.Now,
		log:         log,
	}
}

func (s *RedisStore) dataKey(id string) string { return "zuscore:session:" + id }
func (s *RedisStore) lockKey(id string) string { return "zuscore:session-lock:" + id }

// WithSession implements Store using a SET-NX lock around a GET/mutate/SET
// cycle.
func (s *RedisStore) WithSession(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	token := uuid.NewString()
	if err := s.acquireLock(ctx, id, token); err != nil {
		return domain.Session{}, fmt.Errorf("session lock: %w", err)
	}
	defer s.releaseLock(ctx, id, token)

	sess, err := s.load(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}

	fnErr := fn(sess)
	sess.UpdatedAt = s.now()

	if err := s.save(ctx, sess); err != nil {
		return domain.Session{}, err
	}

	s.evict(ctx)

	return *sess, fnErr
}

// Len implements Store by counting live session keys. O(n) scan via SCAN,
// acceptable for the administrative/debug use this serves.
func (s *RedisStore) Len() int {
	ctx := context.Background()
	var count int
	iter := s.client.Scan(ctx, 0, "zuscore:session:*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count
}

func (s *RedisStore) acquireLock(ctx context.Context, id, token string) error {
	for i := 0; i < s.maxRetries; i++ {
		ok, err := s.client.SetNX(ctx, s.lockKey(id), token, s.lockTTL).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return fmt.Errorf("timed out acquiring lock for session %s", id)
}

func (s *RedisStore) releaseLock(ctx context.Context, id, token string) {
	val, err := s.client.Get(ctx, s.lockKey(id)).Result()
	if err != nil {
		return
	}
	if val == token {
		s.client.Del(ctx, s.lockKey(id))
	}
}

func (s *RedisStore) load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.dataKey(id)).Bytes()
	if err == redis.Nil {
		return domain.NewSession(id, s.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisStore) save(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.ID, err)
	}

	ttl := s.idleTimeout
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	if err := s.client.Set(ctx, s.dataKey(sess.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// evict relies entirely on the key TTL set in save; it deletes nothing and
// logs nothing, so SessionEvicted is never emitted for Redis sessions.
func (s *RedisStore) evict(ctx context.Context) {
	if s.log == nil {
		return
	}
	// TTL-based expiry means Redis itself performs the sweep; nothing to
	// delete here. A verbose implementation could SCAN and compare TTLs to
	// emit SessionEvicted, but that would race with Redis's own expiry
	// notifications and isn't needed for correctness.
	_ = ctx
}
