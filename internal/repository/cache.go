package repository

import (
	"context"
	"log"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/util"
)

const (
	postCachePrefix        = "post:"
	postBySlugCachePrefix  = "post:slug:"
	trendingCachePrefix    = "trending:posts:"
	trendingExpiration     = 2 * time.Minute
	postCacheExpiration    = 15 * time.Minute
	projectCachePrefix     = "project:"
	projectListCacheKey    = "project:list:"
	projectCacheExpiration = 30 * time.Minute
	commentByPostPrefix    = "comment:post:"
	commentCacheExpiration = 10 * time.Minute
)

// cache wraps an optional Redis client. Every method is a no-op when Redis
// is unavailable, and failures only log.
type cache struct {
	redis *util.RedisClient
}

func (c cache) get(ctx context.Context, key string, dest interface{}) bool {
	if c.redis == nil {
		return false
	}
	if err := c.redis.GetJSON(ctx, key, dest); err != nil {
		if err != util.ErrCacheMiss {
			log.Printf("Warning: cache read %s: %v", key, err)
		}
		return false
	}
	return true
}

func (c cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, value, ttl); err != nil {
		log.Printf("Warning: cache write %s: %v", key, err)
	}
}

func (c cache) del(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		log.Printf("Warning: cache delete %v: %v", keys, err)
	}
}

func (c cache) delPattern(ctx context.Context, pattern string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.DeletePattern(ctx, pattern); err != nil {
		log.Printf("Warning: cache delete %s: %v", pattern, err)
	}
}

func (c cache) invalidatePost(ctx context.Context, id, slug string) {
	keys := []string{postCachePrefix + id}
	if slug != "" {
		keys = append(keys, postBySlugCachePrefix+slug)
	}
	c.del(ctx, keys...)
}

func (c cache) invalidateComments(ctx context.Context, postID string) {
	c.del(ctx, commentByPostPrefix+postID)
}

// invalidateTrending drops every cached trending page. Any counter move can
// reorder them.
func (c cache) invalidateTrending(ctx context.Context) {
	c.delPattern(ctx, trendingCachePrefix+"*")
}
