package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const submitAction = "submit_grievance"

// rateLimitMessage builds the 429 body shown to a throttled submitter. The
// remaining wait comes from the key TTL; when it is unavailable the full
// window is reported instead.
func rateLimitMessage(limit, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = limit
	}
	return fmt.Sprintf("you can only file one grievance every %.0f seconds. Please wait %.0f seconds", limit.Seconds(), ttl.Seconds())
}

func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
	return rdb.TTL(ctx, key).Result()
}
