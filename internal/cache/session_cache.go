// Package cache keeps snapshots of live interview sessions so any instance can report
// a session's progress.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session snapshot not found")

type SessionCache interface {
	Save(ctx context.Context, snap interview.Snapshot) error
	Load(ctx context.Context, sessionID uint) (*interview.Snapshot, error)
	ListByUser(ctx context.Context, userID uint) ([]interview.Snapshot, error)
	Delete(ctx context.Context, sessionID uint) error
}

type RedisOption func(*RedisSessionCache)

// WithTTL sets how long a snapshot outlives its last update. Zero disables expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisSessionCache) {
		c.ttl = ttl
	}
}

func WithPrefix(prefix string) RedisOption {
	return func(c *RedisSessionCache) {
		c.prefix = prefix
	}
}

// RedisSessionCache stores snapshots as JSON with a per-user index set.
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisSessionCache(client *redis.Client, opts ...RedisOption) *RedisSessionCache {
	c := &RedisSessionCache{
		client: client,
		ttl:    2 * time.Hour,
		prefix: "prepdeck",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisSessionCache) sessionKey(id uint) string {
	return fmt.Sprintf("%s:session:%d", c.prefix, id)
}

func (c *RedisSessionCache) userIndexKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d:sessions", c.prefix, userID)
}

func (c *RedisSessionCache) Save(ctx context.Context, snap interview.Snapshot) error {
	if snap.SessionID == 0 {
		return fmt.Errorf("snapshot has no session id")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.sessionKey(snap.SessionID), data, c.ttl)
	if snap.UserID != 0 {
		indexKey := c.userIndexKey(snap.UserID)
		pipe.SAdd(ctx, indexKey, strconv.FormatUint(uint64(snap.SessionID), 10))
		if c.ttl > 0 {
			pipe.Expire(ctx, indexKey, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) Load(ctx context.Context, sessionID uint) (*interview.Snapshot, error) {
	data, err := c.client.Get(ctx, c.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var snap interview.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// ListByUser returns the user's snapshots, most recently updated first. Index entries
// whose snapshot has expired are pruned.
func (c *RedisSessionCache) ListByUser(ctx context.Context, userID uint) ([]interview.Snapshot, error) {
	indexKey := c.userIndexKey(userID)
	members, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failed: %w", err)
	}

	snaps := make([]interview.Snapshot, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		snap, err := c.Load(ctx, uint(id))
		if errors.Is(err, ErrNotFound) {
			c.client.SRem(ctx, indexKey, m)
			continue
		}
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	sortByUpdated(snaps)
	return snaps, nil
}

func (c *RedisSessionCache) Delete(ctx context.Context, sessionID uint) error {
	snap, err := c.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.sessionKey(sessionID))
	if snap.UserID != 0 {
		pipe.SRem(ctx, c.userIndexKey(snap.UserID), strconv.FormatUint(uint64(sessionID), 10))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// MemorySessionCache is the single-instance fallback used when no Redis is configured.
type MemorySessionCache struct {
	mu    sync.RWMutex
	snaps map[uint]interview.Snapshot
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{snaps: make(map[uint]interview.Snapshot)}
}

func (c *MemorySessionCache) Save(_ context.Context, snap interview.Snapshot) error {
	if snap.SessionID == 0 {
		return fmt.Errorf("snapshot has no session id")
	}
	c.mu.Lock()
	c.snaps[snap.SessionID] = snap
	c.mu.Unlock()
	return nil
}

func (c *MemorySessionCache) Load(_ context.Context, sessionID uint) (*interview.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snaps[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (c *MemorySessionCache) ListByUser(_ context.Context, userID uint) ([]interview.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var snaps []interview.Snapshot
	for _, s := range c.snaps {
		if s.UserID == userID {
			snaps = append(snaps, s)
		}
	}
	sortByUpdated(snaps)
	return snaps, nil
}

func (c *MemorySessionCache) Delete(_ context.Context, sessionID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.snaps[sessionID]; !ok {
		return ErrNotFound
	}
	delete(c.snaps, sessionID)
	return nil
}

func sortByUpdated(snaps []interview.Snapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].UpdatedAt.After(snaps[j].UpdatedAt)
	})
}
