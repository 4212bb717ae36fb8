package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMessage(t *testing.T) {
	assert.Equal(t,
		"you can only file one grievance every 30 seconds. Please wait 12 seconds",
		rateLimitMessage(30*time.Second, 12*time.Second))

	// When the key TTL could not be read, report the full window.
	assert.Equal(t,
		"you can only file one grievance every 30 seconds. Please wait 30 seconds",
		rateLimitMessage(30*time.Second, 0))
}

func TestRateLimitWithoutRedis(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	// No redis means no throttling: every check passes and the TTL is zero.
	for i := 0; i < 3; i++ {
		allowed, err := CheckAndSetRateLimit(ctx, nil, userID, submitAction, 30*time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	ttl, err := GetRateLimitTTL(ctx, nil, userID, submitAction)
	require.NoError(t, err)
	assert.Zero(t, ttl)
}
