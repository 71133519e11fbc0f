package security

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBucket rate-limits statement generation per client using a redis-side
// token bucket. A nil client or non-positive capacity disables limiting, so
// single-process deployments need no redis at all.
type TokenBucket struct {
	Redis      *redis.Client
	Prefix     string
	Capacity   int
	RefillRate float64 // tokens per second
}

var bucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(state[1])
local last = tonumber(state[2])

if tokens == nil then tokens = capacity end
if last == nil then last = now end

local elapsed = now - last
if elapsed < 0 then elapsed = 0 end

tokens = tokens + elapsed * refill
if tokens > capacity then tokens = capacity end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call('HSET', key, 'tokens', tokens, 'last', now)
redis.call('EXPIRE', key, ttl)

return allowed
`)

// Allow consumes one token for key, reporting whether the request may
// proceed.
func (b *TokenBucket) Allow(r *http.Request, key string) (bool, error) {
	if b == nil || b.Redis == nil || b.Capacity <= 0 || b.RefillRate <= 0 {
		return true, nil
	}
	if b.Prefix != "" {
		key = b.Prefix + ":" + key
	}

	now := float64(time.Now().UnixNano()) / 1e9
	ttl := int64(float64(b.Capacity)/b.RefillRate) + 1

	allowed, err := bucketScript.Run(r.Context(), b.Redis, []string{key}, b.Capacity, b.RefillRate, now, ttl).Int64()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// RateLimit guards a handler with the bucket, keying on keyFn.
func RateLimit(b *TokenBucket, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := b.Allow(r, keyFn(r))
			if err != nil {
				WriteJSONError(w, r, http.StatusServiceUnavailable, "rate_limiter_unavailable")
				return
			}
			if !allowed {
				WriteJSONError(w, r, http.StatusTooManyRequests, "rate_limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
