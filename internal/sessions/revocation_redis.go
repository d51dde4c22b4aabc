package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// package-level Redis client used for the token revocation list (optional)
var revocationClient *redis.Client

// SetRevocationClient configures the Redis client used for revocation checks.
// Safe to call with nil to disable revocation.
func SetRevocationClient(c *redis.Client) {
	revocationClient = c
}

// RevokeToken records a signed session token id as revoked until ttl elapses.
// If no Redis client is configured, this is a no-op and returns nil.
func RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if revocationClient == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return revocationClient.Set(ctx, "revoked:session:"+tokenID, "1", ttl).Err()
}

// IsTokenRevoked reports whether tokenID is on the revocation list.
// If no Redis client is configured, returns (false, nil).
func IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if revocationClient == nil || tokenID == "" {
		return false, nil
	}
	exists, err := revocationClient.Exists(ctx, "revoked:session:"+tokenID).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
