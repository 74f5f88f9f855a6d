package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type Session struct {
	ID        string      `json:"id"`
	User      *model.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Remove(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions until ExpiresAt; Redis evicts them afterwards.
type RedisSessionStore struct {
	cache *cache.RedisClient
}

func NewRedisSessionStore(c *cache.RedisClient) *RedisSessionStore {
	return &RedisSessionStore{cache: c}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.cache.Client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if cache.IsNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.cache.Client.Set(ctx, sessionKey(sess.ID), data, ttl).Err()
}

func (s *RedisSessionStore) Remove(ctx context.Context, id string) error {
	return s.cache.Client.Del(ctx, sessionKey(id)).Err()
}
