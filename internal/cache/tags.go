package cache

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TagSetKey = "tags:all"
	TagSetTTL = time.Hour
)

// TagCache mirrors the set of registered tag names.
type TagCache interface {
	// Add inserts names into an existing set only.
	Add(ctx context.Context, names ...string) error

	// All returns the cached names; found is false when the set is absent.
	All(ctx context.Context) (names []string, found bool, err error)

	// Warm replaces the set with names.
	Warm(ctx context.Context, names []string) error
}

type RedisTagCache struct {
	client *redis.Client
}

func NewTagCache(client *redis.Client) TagCache {
	return &RedisTagCache{client: client}
}

var saddIfWarm = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
return redis.call("SADD", KEYS[1], unpack(ARGV))
`)

func (c *RedisTagCache) Add(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	args := make([]interface{}, len(names))
	for i, n := range names {
		args[i] = n
	}
	if err := saddIfWarm.Run(ctx, c.client, []string{TagSetKey}, args...).Err(); err != nil && err != redis.Nil {
		log.Printf("[TagCache] Add FAILED: names=%v err=%v", names, err)
		return fmt.Errorf("add tags: %w", err)
	}
	return nil
}

func (c *RedisTagCache) All(ctx context.Context) ([]string, bool, error) {
	n, err := c.client.Exists(ctx, TagSetKey).Result()
	if err != nil {
		return nil, false, fmt.Errorf("check tag set: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}

	names, err := c.client.SMembers(ctx, TagSetKey).Result()
	if err != nil {
		log.Printf("[TagCache] All FAILED: err=%v", err)
		return nil, false, fmt.Errorf("read tag set: %w", err)
	}
	sort.Strings(names)
	return names, true, nil
}

func (c *RedisTagCache) Warm(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	members := make([]interface{}, len(names))
	for i, n := range names {
		members[i] = n
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, TagSetKey)
	pipe.SAdd(ctx, TagSetKey, members...)
	pipe.Expire(ctx, TagSetKey, TagSetTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[TagCache] Warm FAILED: names=%d err=%v", len(names), err)
		return fmt.Errorf("warm tag set: %w", err)
	}

	log.Printf("[TagCache] Warm OK: names=%d", len(names))
	return nil
}
