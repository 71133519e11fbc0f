package security

import (
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketExhausts(t *testing.T) {
	mr := miniredis.RunT(t)
	bucket := &TokenBucket{
		Redis:      redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Prefix:     "test",
		Capacity:   2,
		RefillRate: 0.001,
	}

	r := httptest.NewRequest("GET", "/", nil)
	for i := 0; i < 2; i++ {
		allowed, err := bucket.Allow(r, "AC001")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := bucket.Allow(r, "AC001")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestTokenBucketKeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	bucket := &TokenBucket{
		Redis:      redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Capacity:   1,
		RefillRate: 0.001,
	}

	r := httptest.NewRequest("GET", "/", nil)
	allowed, err := bucket.Allow(r, "AC001")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = bucket.Allow(r, "AC002")
	require.NoError(t, err)
	assert.True(t, allowed, "other accounts have their own bucket")
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	var bucket *TokenBucket
	r := httptest.NewRequest("GET", "/", nil)
	allowed, err := bucket.Allow(r, "AC001")
	require.NoError(t, err)
	assert.True(t, allowed)
}
