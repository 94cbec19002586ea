package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the shared Redis connection. When it is nil (no Redis configured,
// e.g. in tests or a single-process deployment) the package falls back to the
// in-process store below; the two behave identically from the caller's side.
var Client *redis.Client

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

var (
	memoryMu sync.RWMutex
	memory   = make(map[string]memoryEntry)
)

// InitFromEnv initializes Redis using either:
// - REDIS_URL (hosted Redis)
// - VALKEY_URL (hosted Valkey, TLS via rediss://)
// - REDIS_ADDR or the localhost fallback
func InitFromEnv() error {
	redisURL := os.Getenv("REDIS_URL")
	valkeyURL := os.Getenv("VALKEY_URL")

	switch {
	case redisURL != "":
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		Client = redis.NewClient(opt)

	case valkeyURL != "":
		opt, err := redis.ParseURL(valkeyURL)
		if err != nil {
			return fmt.Errorf("failed to parse VALKEY_URL: %w", err)
		}
		Client = redis.NewClient(opt)

	default:
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		Client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			Username: os.Getenv("REDIS_USERNAME"),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		Client = nil
		return fmt.Errorf("failed to connect to redis/valkey: %w", err)
	}
	return nil
}

// Get returns the cached value for key, or "" when the entry is absent or
// its TTL has lapsed.
func Get(ctx context.Context, key string) (string, error) {
	if Client == nil {
		memoryMu.RLock()
		entry, ok := memory[key]
		memoryMu.RUnlock()
		if !ok || time.Now().After(entry.expiresAt) {
			return "", nil
		}
		return entry.value, nil
	}

	val, err := Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set stores value under key for ttl. Entries are only ever removed by TTL
// expiry or an explicit Delete; nothing in the write path invalidates them.
func Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if Client == nil {
		memoryMu.Lock()
		memory[key] = memoryEntry{value: string(value), expiresAt: time.Now().Add(ttl)}
		memoryMu.Unlock()
		return nil
	}
	return Client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a single cached entry.
func Delete(ctx context.Context, key string) error {
	if Client == nil {
		memoryMu.Lock()
		delete(memory, key)
		memoryMu.Unlock()
		return nil
	}
	return Client.Del(ctx, key).Err()
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func DeleteByPrefix(ctx context.Context, prefix string) error {
	if Client == nil {
		memoryMu.Lock()
		for key := range memory {
			if strings.HasPrefix(key, prefix) {
				delete(memory, key)
			}
		}
		memoryMu.Unlock()
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := Client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := Client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}
