package funds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyAll       = "funds:list:all"
	cacheKeyBranchFmt = "funds:list:branch:%d"
	defaultCacheTTL   = 5 * time.Minute
)

// ListCache is a read-through Redis cache for fund listings. Every
// balance-mutating call invalidates the affected branch's listing plus the
// admin-wide listing; it is never a durable store.
type ListCache struct {
	Rdb *redis.Client
	TTL time.Duration
}

func (c *ListCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return defaultCacheTTL
}

func branchKey(branchID uint) string {
	return fmt.Sprintf(cacheKeyBranchFmt, branchID)
}

func (c *ListCache) get(ctx context.Context, key string) ([]FundView, bool) {
	b, err := c.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var views []FundView
	if err := json.Unmarshal(b, &views); err != nil {
		return nil, false
	}
	return views, true
}

func (c *ListCache) set(ctx context.Context, key string, views []FundView) {
	b, err := json.Marshal(views)
	if err != nil {
		return
	}
	_ = c.Rdb.Set(ctx, key, b, c.ttl()).Err()
}

// InvalidateFunds drops the branch's cached listing and the admin-wide
// listing. Implements ledger.Invalidator.
func (c *ListCache) InvalidateFunds(ctx context.Context, branchID uint) {
	_ = c.Rdb.Del(ctx, branchKey(branchID), cacheKeyAll).Err()
}
