package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records logged-out token IDs until the tokens would have
// expired on their own.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationStore keeps revoked JTIs in process. It is used when no
// Redis is configured, so revocations do not survive a restart.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryRevocationStore starts a goroutine that drops expired entries
// every interval. Call Close to stop it.
func NewMemoryRevocationStore(interval time.Duration) *MemoryRevocationStore {
	s := &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go s.cleanupLoop(interval)
	return s
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	s.mu.Lock()
	s.entries[jti] = expiresAt
	s.mu.Unlock()
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[jti]
	return ok, nil
}

func (s *MemoryRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *MemoryRevocationStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryRevocationStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryRevocationStore) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, jti)
		}
	}
}

const revokedKeyPrefix = "medcamp:revoked:"

// RedisRevocationStore shares revocations between server instances. Keys
// expire together with the token they name.
type RedisRevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	err := s.client.Get(ctx, revokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
