package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabaylakad/backend/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

// SessionStore backs refresh sessions and the access-token denylist with
// redis SET/GET plus native TTL expiry.
type SessionStore struct {
	rdb *goredis.Client
}

func NewSessionStore(addr, password string, db int) (*SessionStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &SessionStore{rdb: rdb}, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}
