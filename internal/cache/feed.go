package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for user feed caches
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of articles cached per user
	FeedCacheCap = 500

	// FeedCacheTTL is set when a feed is warmed and never extended, so a
	// missed fan-out heals within this window.
	FeedCacheTTL = time.Hour
)

// ArticleScore is an article id with its creation time in unix milliseconds.
type ArticleScore struct {
	ArticleID string `db:"id"`
	CreatedAt int64  `db:"created_ms"`
}

// FeedCache holds, per user, the newest article ids by followed authors.
// A key either mirrors the store's feed (up to FeedCacheCap entries) or is absent.
type FeedCache interface {
	// AddArticle inserts into an existing feed only; absent feeds stay absent
	// so a later read warms them from the store. Reports whether it was added.
	AddArticle(ctx context.Context, userID, articleID string, createdAt int64) (bool, error)

	RemoveArticle(ctx context.Context, userID, articleID string) error

	// GetPage returns ids newest first by rank.
	GetPage(ctx context.Context, userID string, offset, limit int) ([]string, error)

	// WarmCache replaces a user's feed with the given entries.
	WarmCache(ctx context.Context, userID string, articles []ArticleScore) error

	// Merge adds entries to an existing feed; an absent feed stays absent.
	Merge(ctx context.Context, userID string, articles []ArticleScore) error

	Size(ctx context.Context, userID string) (int64, error)
	Exists(ctx context.Context, userID string) (bool, error)

	// Invalidate drops a user's feed; the next read rebuilds it.
	Invalidate(ctx context.Context, userID string) error
}

// RedisFeedCache implements FeedCache using Redis Sorted Sets.
type RedisFeedCache struct {
	client *redis.Client
}

func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID string) string {
	return FeedCachePrefix + userID
}

// addIfWarm runs ZADD + trim only when the key already exists.
// ARGV is the cap followed by score/member pairs.
var addIfWarm = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
for i = 2, #ARGV, 2 do
  redis.call("ZADD", KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call("ZREMRANGEBYRANK", KEYS[1], 0, -tonumber(ARGV[1]) - 1)
return 1
`)

func (c *RedisFeedCache) AddArticle(ctx context.Context, userID, articleID string, createdAt int64) (bool, error) {
	key := feedKey(userID)
	startTime := time.Now()

	added, err := addIfWarm.Run(ctx, c.client, []string{key},
		FeedCacheCap, createdAt, articleID).Int()
	if err != nil {
		log.Printf("[FeedCache] AddArticle FAILED: user=%s article=%s err=%v", userID, articleID, err)
		return false, fmt.Errorf("add article to feed: %w", err)
	}

	log.Printf("[FeedCache] AddArticle OK: user=%s article=%s added=%t duration=%v",
		userID, articleID, added == 1, time.Since(startTime))
	return added == 1, nil
}

func (c *RedisFeedCache) RemoveArticle(ctx context.Context, userID, articleID string) error {
	removed, err := c.client.ZRem(ctx, feedKey(userID), articleID).Result()
	if err != nil {
		log.Printf("[FeedCache] RemoveArticle FAILED: user=%s article=%s err=%v", userID, articleID, err)
		return fmt.Errorf("remove article from feed: %w", err)
	}

	log.Printf("[FeedCache] RemoveArticle OK: user=%s article=%s removed=%d", userID, articleID, removed)
	return nil
}

func (c *RedisFeedCache) GetPage(ctx context.Context, userID string, offset, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	key := feedKey(userID)
	startTime := time.Now()

	ids, err := c.client.ZRevRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		log.Printf("[FeedCache] GetPage FAILED: user=%s err=%v", userID, err)
		return nil, fmt.Errorf("get feed page: %w", err)
	}

	log.Printf("[FeedCache] GetPage OK: user=%s offset=%d limit=%d returned=%d duration=%v",
		userID, offset, limit, len(ids), time.Since(startTime))
	return ids, nil
}

func (c *RedisFeedCache) WarmCache(ctx context.Context, userID string, articles []ArticleScore) error {
	if len(articles) == 0 {
		log.Printf("[FeedCache] WarmCache: user=%s articles=0 (nothing to warm)", userID)
		return nil
	}

	key := feedKey(userID)
	startTime := time.Now()

	members := make([]redis.Z, len(articles))
	for i, a := range articles {
		members[i] = redis.Z{Score: float64(a.CreatedAt), Member: a.ArticleID}
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: user=%s articles=%d err=%v", userID, len(articles), err)
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: user=%s articles=%d duration=%v",
		userID, len(articles), time.Since(startTime))
	return nil
}

func (c *RedisFeedCache) Merge(ctx context.Context, userID string, articles []ArticleScore) error {
	if len(articles) == 0 {
		return nil
	}

	args := make([]interface{}, 0, 1+2*len(articles))
	args = append(args, FeedCacheCap)
	for _, a := range articles {
		args = append(args, a.CreatedAt, a.ArticleID)
	}

	merged, err := addIfWarm.Run(ctx, c.client, []string{feedKey(userID)}, args...).Int()
	if err != nil {
		log.Printf("[FeedCache] Merge FAILED: user=%s articles=%d err=%v", userID, len(articles), err)
		return fmt.Errorf("merge feed: %w", err)
	}

	log.Printf("[FeedCache] Merge OK: user=%s articles=%d warm=%t", userID, len(articles), merged == 1)
	return nil
}

func (c *RedisFeedCache) Size(ctx context.Context, userID string) (int64, error) {
	size, err := c.client.ZCard(ctx, feedKey(userID)).Result()
	if err != nil {
		log.Printf("[FeedCache] Size FAILED: user=%s err=%v", userID, err)
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		log.Printf("[FeedCache] Exists FAILED: user=%s err=%v", userID, err)
		return false, fmt.Errorf("check cache exists: %w", err)
	}
	return n > 0, nil
}

func (c *RedisFeedCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, feedKey(userID)).Err(); err != nil {
		log.Printf("[FeedCache] Invalidate FAILED: user=%s err=%v", userID, err)
		return fmt.Errorf("invalidate feed: %w", err)
	}
	log.Printf("[FeedCache] Invalidate OK: user=%s", userID)
	return nil
}
