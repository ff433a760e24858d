package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	feedVersionKey    = "feed:version"
	feedFirstPageKey  = "feed:v%d:first:%d"
	tokenBlacklistKey = "blacklist:%s"
	// FeedEventsChannel is the pub/sub channel carrying live feed events.
	FeedEventsChannel = "feed:events"
)

// FeedFirstPageKey returns the key of the cached first feed page for the
// current feed version. Bumping the version orphans every cached page.
func FeedFirstPageKey(ctx context.Context, rdb *redis.Client, limit int) (string, error) {
	version, err := rdb.Get(ctx, feedVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf(feedFirstPageKey, version, limit), nil
}

// InvalidateFeed bumps the feed version so cached pages are no longer read.
func InvalidateFeed(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Incr(ctx, feedVersionKey).Err()
}

// TokenBlacklistKey returns the revocation key of a token id.
func TokenBlacklistKey(tokenID string) string {
	return fmt.Sprintf(tokenBlacklistKey, tokenID)
}
