package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgredis "github.com/oryclothing/ory-backend/pkg/redis"
)

// Storage persists one serialized cart per storefront session.
type Storage interface {
	Load(ctx context.Context, sessionID string) (string, bool, error)
	Save(ctx context.Context, sessionID, payload string) error
	Drop(ctx context.Context, sessionID string) error
}

type redisStorage struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// NewRedisStorage stores carts in Redis under the fixed cart namespace.
// Carts expire after the configured idle TTL.
func NewRedisStorage(client *pkgredis.Client, ttl time.Duration) Storage {
	return &redisStorage{client: client, ttl: ttl}
}

func (s *redisStorage) Load(ctx context.Context, sessionID string) (string, bool, error) {
	payload, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return payload, true, nil
}

func (s *redisStorage) Save(ctx context.Context, sessionID, payload string) error {
	return s.client.Set(ctx, s.client.CartKey(sessionID), payload, s.ttl)
}

func (s *redisStorage) Drop(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.client.CartKey(sessionID))
}

type memoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStorage keeps carts in process memory. Test and single-node use.
func NewMemoryStorage() Storage {
	return &memoryStorage{data: make(map[string]string)}
}

func (s *memoryStorage) Load(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.data[sessionID]
	return payload, ok, nil
}

func (s *memoryStorage) Save(_ context.Context, sessionID, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = payload
	return nil
}

func (s *memoryStorage) Drop(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}
