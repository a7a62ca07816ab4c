package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blocklistKeyPrefix = "blocklist:token:"

// TokenBlocklist records revoked JWT ids in Redis until their natural expiry.
// A token whose jti is present here is rejected even if its signature is valid.
type TokenBlocklist struct {
	rdb *redis.Client
}

func NewTokenBlocklist(rdb *redis.Client) *TokenBlocklist {
	return &TokenBlocklist{rdb: rdb}
}

func (b *TokenBlocklist) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to revoke.
		return nil
	}
	if err := b.rdb.Set(ctx, blocklistKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("TokenBlocklist.Add: %w", err)
	}
	return nil
}

func (b *TokenBlocklist) Contains(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blocklistKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("TokenBlocklist.Contains: %w", err)
	}
	return n > 0, nil
}
