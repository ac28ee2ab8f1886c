package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Backend persists states. Load reports found=false for unknown users.
type Backend interface {
	Load(ctx context.Context, userID int64) (State, bool, error)
	Save(ctx context.Context, userID int64, s State) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryBackend keeps states in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{states: make(map[int64]State)}
}

func (b *MemoryBackend) Load(_ context.Context, userID int64) (State, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.states[userID]
	return s, ok, nil
}

func (b *MemoryBackend) Save(_ context.Context, userID int64, s State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[userID] = s
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, userID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, userID)
	return nil
}

// Len returns the number of stored states.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.states)
}

// RedisConfig configures a RedisBackend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// RedisBackend stores each state as a JSON string with a sliding TTL.
type RedisBackend struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisBackend connects and pings the server.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "edubot:session:"
	}
	return &RedisBackend{rdb: rdb, ttl: cfg.TTL, prefix: prefix}, nil
}

func (b *RedisBackend) key(userID int64) string {
	return b.prefix + strconv.FormatInt(userID, 10)
}

func (b *RedisBackend) Load(ctx context.Context, userID int64) (State, bool, error) {
	raw, err := b.rdb.Get(ctx, b.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get session %d: %w", userID, err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, false, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return s, true, nil
}

func (b *RedisBackend) Save(ctx context.Context, userID int64, s State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := b.rdb.Set(ctx, b.key(userID), raw, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %d: %w", userID, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, userID int64) error {
	if err := b.rdb.Del(ctx, b.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del session %d: %w", userID, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
