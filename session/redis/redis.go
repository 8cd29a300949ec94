// Package redis_session persists sessions in Redis as JSON values with a
// sliding TTL, so conversation state survives process restarts.
package redis_session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"iitubot/config"
	"iitubot/session"
)

const keyPrefix = "session:"

// Store keeps sessions in Redis, one key per user.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Ensure returns the session for userID, creating an empty one if absent.
// Reading refreshes the key's TTL.
func (s *Store) Ensure(ctx context.Context, userID string) (session.Session, error) {
	key := keyPrefix + userID
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return session.Session{UserID: userID, LastActivity: time.Now()}, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("loading session %s: %w", userID, err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return session.Session{}, fmt.Errorf("decoding session %s: %w", userID, err)
	}
	_ = s.client.Expire(ctx, key, s.ttl).Err()
	return sess, nil
}

// Get returns the session for userID without creating one. Unlike
// Ensure it leaves the key's TTL untouched.
func (s *Store) Get(ctx context.Context, userID string) (session.Session, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, false, nil
	}
	if err != nil {
		return session.Session{}, false, fmt.Errorf("loading session %s: %w", userID, err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return session.Session{}, false, fmt.Errorf("decoding session %s: %w", userID, err)
	}
	return sess, true, nil
}

// Save writes the session back with a fresh TTL.
func (s *Store) Save(ctx context.Context, sess session.Session) error {
	sess.LastActivity = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.UserID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.UserID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving session %s: %w", sess.UserID, err)
	}
	return nil
}

// Len counts live session keys with SCAN.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scanning sessions: %w", err)
	}
	return count, nil
}

// Close releases the Redis connection.
func (s *Store) Close() error { return s.client.Close() }
